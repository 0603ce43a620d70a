package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxLogoSize is 5MB in bytes
	MaxLogoSize = 5 * 1024 * 1024
	// AllowedLogoFormat is PNG
	AllowedLogoFormat = ".png"
)

// LogoUploadError represents a logo upload validation error
type LogoUploadError struct {
	Code    string
	Message string
}

func (e *LogoUploadError) Error() string {
	return e.Message
}

// ValidateLogoFile validates the uploaded logo format and size
func ValidateLogoFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxLogoSize {
		return &LogoUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxLogoSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != AllowedLogoFormat {
		return &LogoUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", AllowedLogoFormat),
		}
	}

	return nil
}
