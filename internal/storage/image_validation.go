package storage

import (
	"fmt"
	"net/http"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImageType sniffs the content type from the first bytes and accepts images only
func DetectImageType(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	if err := ValidateContentType(contentType); err != nil {
		return "", err
	}
	return contentType, nil
}

// ValidateFileSize validates the file size
func ValidateFileSize(size int64, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}

// ValidateContentType validates the content type
func ValidateContentType(contentType string) error {
	if _, ok := allowedImageTypes[contentType]; ok {
		return nil
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

func extensionFor(contentType string) string {
	return allowedImageTypes[contentType]
}
