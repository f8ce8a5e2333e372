package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/app/service"
	apperrors "github.com/ikkim/photoshare-backend/internal/errors"
	"github.com/ikkim/photoshare-backend/internal/middleware"
	"github.com/ikkim/photoshare-backend/internal/storage"
	"github.com/ikkim/photoshare-backend/pkg/util"
)

// serviceError pairs a service sentinel with the reply it produces
type serviceError struct {
	err    error
	status int
	code   string
}

var serviceErrors = []serviceError{
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists},
	{service.ErrUsernameAlreadyExists, http.StatusConflict, apperrors.AuthUsernameExists},
	{service.ErrInvalidEmail, http.StatusUnauthorized, apperrors.AuthInvalidEmail},
	{service.ErrInvalidPassword, http.StatusUnauthorized, apperrors.AuthInvalidPassword},
	{service.ErrUserBlocked, http.StatusUnauthorized, apperrors.AuthUserBlocked},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, apperrors.AuthTokenInvalid},
	{service.ErrInvalidResetToken, http.StatusUnauthorized, apperrors.AuthTokenInvalid},
	{service.ErrResetTokenUsed, http.StatusBadRequest, apperrors.AuthResetTokenUsed},
	{service.ErrPasswordMismatch, http.StatusBadRequest, apperrors.AuthPasswordMismatch},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.ResourceNotFound},
	{service.ErrSelfAction, http.StatusForbidden, apperrors.AuthzSelfAction},
	{service.ErrInvalidRole, http.StatusBadRequest, apperrors.ValidationInvalidRole},
	{service.ErrForbidden, http.StatusForbidden, apperrors.AuthzForbidden},
	{service.ErrInvalidImage, http.StatusBadRequest, apperrors.UploadInvalidFileType},
	{service.ErrTitleRequired, http.StatusBadRequest, apperrors.ValidationRequired},
	{service.ErrPhotoNotFound, http.StatusNotFound, apperrors.PhotoNotFound},
	{service.ErrTooManyTags, http.StatusBadRequest, apperrors.PhotoTooManyTags},
	{service.ErrInvalidTagName, http.StatusBadRequest, apperrors.TagInvalidName},
	{service.ErrTagNotFound, http.StatusNotFound, apperrors.TagNotFound},
	{service.ErrTagAlreadyExists, http.StatusConflict, apperrors.TagAlreadyExists},
	{service.ErrTransformationNotFound, http.StatusNotFound, apperrors.TransformationNotFound},
	{service.ErrTransformationEmpty, http.StatusBadRequest, apperrors.TransformationEmpty},
	{service.ErrInvalidTransformation, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrQrCodeNotFound, http.StatusNotFound, apperrors.QrCodeNotFound},
	{service.ErrCommentNotFound, http.StatusNotFound, apperrors.CommentNotFound},
	{service.ErrCommentEmpty, http.StatusBadRequest, apperrors.CommentEmpty},
	{service.ErrCommentTooLong, http.StatusBadRequest, apperrors.ValidationInvalidRange},
	{service.ErrCommentRateLimited, http.StatusTooManyRequests, apperrors.CommentRateLimited},
	{service.ErrRatingNotFound, http.StatusNotFound, apperrors.RatingNotFound},
	{service.ErrInvalidRating, http.StatusBadRequest, apperrors.RatingInvalidValue},
}

// respondError writes the reply for a service error. Unknown errors are
// logged and parsed by apperrors.ParseAndRespond.
func respondError(c *gin.Context, err error, context string) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			apperrors.RespondWithError(c, se.status, se.code, sentence(err.Error()))
			return
		}
	}

	middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
		"operation": context,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	c.Abort()
}

// sentence upper-cases the first letter of a Go error string
func sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// parseID reads a positive integer path parameter, replying 400 when it is not one
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// pagination reads skip and limit query values with the default page size
func pagination(c *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(util.DefaultPageLimit)))
	return util.ClampPage(skip, limit)
}

// actorFrom builds the acting user from the authenticated context
func actorFrom(c *gin.Context) (service.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return service.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return service.Actor{ID: userID, Role: role}, true
}

const (
	// room for multipart headers and the text fields sent with the file
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
)

// parseUploadForm caps the request body at maxBytes plus overhead and parses
// the multipart form, so an oversized upload is cut off while it streams in.
// It is safe to call more than once per request.
func parseUploadForm(c *gin.Context, maxBytes int64) bool {
	if c.Request.MultipartForm != nil {
		return true
	}
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondTooLarge(c, maxBytes)
			return false
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid multipart form")
		return false
	}
	return true
}

func respondTooLarge(c *gin.Context, maxBytes int64) {
	apperrors.BadRequest(c, apperrors.UploadFileTooLarge,
		fmt.Sprintf("File exceeds the maximum size of %d bytes", maxBytes))
}

// readUpload reads a multipart file field. A missing field returns nil
// without replying; the caller decides whether the file is required.
func readUpload(c *gin.Context, field string, maxBytes int64) ([]byte, bool) {
	if !parseUploadForm(c, maxBytes) {
		return nil, false
	}

	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid multipart form")
		return nil, false
	}

	if maxBytes > 0 {
		if err := storage.ValidateFileSize(header.Size, maxBytes); err != nil {
			respondTooLarge(c, maxBytes)
			return nil, false
		}
	}

	file, err := header.Open()
	if err != nil {
		apperrors.BadRequest(c, apperrors.UploadFailed, "Failed to read uploaded file")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apperrors.BadRequest(c, apperrors.UploadFailed, "Failed to read uploaded file")
		return nil, false
	}
	return data, true
}
