package errors

// Error codes returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== AUTH_ ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthInvalidEmail       = "AUTH_INVALID_EMAIL"
	AuthInvalidPassword    = "AUTH_INVALID_PASSWORD"
	AuthUserBlocked        = "AUTH_USER_BLOCKED"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthTokenScope         = "AUTH_TOKEN_SCOPE"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthPasswordMismatch   = "AUTH_PASSWORD_MISMATCH"
	AuthResetTokenUsed     = "AUTH_RESET_TOKEN_USED"

	// ==================== AUTHZ_ ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"
	AuthzSelfAction   = "AUTHZ_SELF_ACTION" // admin acting on own account

	// ==================== VALIDATION_ ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationInvalidRole  = "VALIDATION_INVALID_ROLE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== RESOURCE_ ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== PHOTO_ ====================
	PhotoNotFound          = "PHOTO_NOT_FOUND"
	PhotoTooManyTags       = "PHOTO_TOO_MANY_TAGS"
	TransformationNotFound = "TRANSFORMATION_NOT_FOUND"
	TransformationEmpty    = "TRANSFORMATION_EMPTY"
	QrCodeNotFound         = "QRCODE_NOT_FOUND"

	// ==================== TAG_ ====================
	TagNotFound      = "TAG_NOT_FOUND"
	TagAlreadyExists = "TAG_ALREADY_EXISTS"
	TagInvalidName   = "TAG_INVALID_NAME"

	// ==================== COMMENT_ ====================
	CommentNotFound    = "COMMENT_NOT_FOUND"
	CommentEmpty       = "COMMENT_EMPTY"
	CommentRateLimited = "COMMENT_RATE_LIMITED"

	// ==================== RATING_ ====================
	RatingNotFound     = "RATING_NOT_FOUND"
	RatingInvalidValue = "RATING_INVALID_VALUE"

	// ==================== RATE_ ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== UPLOAD_ ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== INTERNAL_ ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
