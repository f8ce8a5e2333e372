package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_CRUD(t *testing.T) {
	env := setupEnv(t)
	svc := NewTagService(env.tags)

	tag, err := svc.CreateTag("  Travel ")
	require.NoError(t, err)
	assert.Equal(t, "travel", tag.Name)

	_, err = svc.CreateTag("TRAVEL")
	assert.ErrorIs(t, err, ErrTagAlreadyExists)

	_, err = svc.CreateTag("ab")
	assert.ErrorIs(t, err, ErrInvalidTagName)

	_, err = svc.CreateTag("abcdefghijklmnopqrstuvwxyz")
	assert.ErrorIs(t, err, ErrInvalidTagName)

	other, err := svc.CreateTag("food")
	require.NoError(t, err)

	_, err = svc.UpdateTag(other.ID, "travel")
	assert.ErrorIs(t, err, ErrTagAlreadyExists)

	renamed, err := svc.UpdateTag(other.ID, "Cuisine")
	require.NoError(t, err)
	assert.Equal(t, "cuisine", renamed.Name)

	_, err = svc.UpdateTag(999, "whatever")
	assert.ErrorIs(t, err, ErrTagNotFound)

	tags, err := svc.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "cuisine", tags[0].Name)

	require.NoError(t, svc.DeleteTag(tag.ID))
	assert.ErrorIs(t, svc.DeleteTag(tag.ID), ErrTagNotFound)
	_, err = svc.GetTag(tag.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestNormalizeTagList(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    []string
		wantErr error
	}{
		{name: "nil", raw: nil, want: []string{}},
		{name: "split and dedupe", raw: []string{"Cats, dogs", "cats"}, want: []string{"cats", "dogs"}},
		{name: "five is fine", raw: []string{"aaa,bbb,ccc,ddd,eee"}, want: []string{"aaa", "bbb", "ccc", "ddd", "eee"}},
		{name: "six is too many", raw: []string{"aaa,bbb,ccc,ddd,eee,fff"}, wantErr: ErrTooManyTags},
		{name: "too short", raw: []string{"hi"}, wantErr: ErrInvalidTagName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeTagList(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
