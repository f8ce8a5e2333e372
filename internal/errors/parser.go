package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error ready to be sent to the client
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns a database or driver error into a code and a safe message.
// context names the operation ("create photo", "update tag") and picks the wording.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Internal server error",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: getNotFoundMessage(context),
		}
	}

	// postgres 23505 / sqlite "UNIQUE constraint failed"
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// postgres 23503 / sqlite "FOREIGN KEY constraint failed"
	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower, context)
	}

	// postgres 23502 / sqlite "NOT NULL constraint failed"
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	// postgres 23514 / sqlite "CHECK constraint failed"
	if strings.Contains(errStrLower, "check constraint") {
		return parseCheckConstraintError(errStrLower)
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Account already exists"}
	case strings.Contains(errLower, "username"):
		return ErrorInfo{Code: AuthUsernameExists, Message: "Username is already taken"}
	case strings.Contains(errLower, "tags.name") || strings.Contains(errLower, "idx_tags_name"):
		return ErrorInfo{Code: TagAlreadyExists, Message: "Tag already exists"}
	case strings.Contains(errLower, "ratings"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Photo already rated"}
	case strings.Contains(errLower, "qr_codes"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "QR code already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func parseForeignKeyError(errLower string, context string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Resource is still referenced and cannot be deleted",
		}
	}
	if strings.Contains(errLower, "photo_id") || strings.Contains(strings.ToLower(context), "photo") {
		return ErrorInfo{Code: PhotoNotFound, Message: "Photo not found"}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "owner_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "User not found"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced resource not found"}
}

func parseCheckConstraintError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "rating") {
		return ErrorInfo{Code: RatingInvalidValue, Message: "Rating must be between 1 and 5"}
	}
	return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
}

var notFoundByContext = []struct {
	keyword string
	code    string
	message string
}{
	{"transformation", TransformationNotFound, "Transformation not found"},
	{"qr", QrCodeNotFound, "QR code not found"},
	{"photo", PhotoNotFound, "Photo not found"},
	{"comment", CommentNotFound, "Comment not found"},
	{"rating", RatingNotFound, "Rating not found"},
	{"tag", TagNotFound, "Tag not found"},
	{"user", ResourceNotFound, "User not found"},
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	for _, nf := range notFoundByContext {
		if strings.Contains(contextLower, nf.keyword) {
			return nf.code
		}
	}
	return ResourceNotFound
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	for _, nf := range notFoundByContext {
		if strings.Contains(contextLower, nf.keyword) {
			return nf.message
		}
	}
	return "Requested resource not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create") || strings.Contains(contextLower, "upload"):
		return "Failed to create the resource, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the resource, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete the resource, please try again later"
	}
	return "Internal server error, please try again later"
}

// StatusForCode maps an error code to the HTTP status it is normally sent with
func StatusForCode(code string) (int, bool) {
	switch code {
	case ResourceNotFound, PhotoNotFound, TransformationNotFound, QrCodeNotFound,
		TagNotFound, CommentNotFound, RatingNotFound:
		return http.StatusNotFound, true
	case ResourceAlreadyExists, ResourceConflict, AuthEmailAlreadyExists,
		AuthUsernameExists, TagAlreadyExists:
		return http.StatusConflict, true
	case ValidationRequired, ValidationInvalidInput, RatingInvalidValue:
		return http.StatusBadRequest, true
	}
	return 0, false
}

// ParseAndRespond parses err and writes the error body. Codes with a well
// known status (404, 409, 400) override statusCode.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	if status, ok := StatusForCode(errorInfo.Code); ok {
		statusCode = status
	}
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
