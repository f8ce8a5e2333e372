package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeHTML reduces user supplied text to plain text. Tags are dropped
// (script and style bodies included) and the entities bluemonday emits are
// decoded again, so the result is stored verbatim and escaped by whoever
// renders it.
func SanitizeHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// NormalizeTagNames splits comma separated values, trims and lower-cases
// every name and drops empties and duplicates, keeping first-seen order.
func NormalizeTagNames(raw []string) []string {
	parts := lo.FlatMap(raw, func(item string, _ int) []string {
		return strings.Split(item, ",")
	})
	names := lo.Map(parts, func(item string, _ int) string {
		return strings.ToLower(strings.TrimSpace(item))
	})
	return lo.Uniq(lo.Compact(names))
}

// ClampPage applies the default and maximum page size to skip/limit query values
func ClampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return skip, limit
}
