package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogoFile(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		size         int64
		expectedCode string
	}{
		{"valid png", "logo.png", 1024, ""},
		{"valid uppercase extension", "LOGO.PNG", 1024, ""},
		{"too large", "logo.png", MaxLogoSize + 1, "FILE_TOO_LARGE"},
		{"wrong format", "logo.jpg", 1024, "INVALID_FILE_FORMAT"},
		{"no extension", "logo", 1024, "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &multipart.FileHeader{Filename: tt.filename, Size: tt.size}
			err := ValidateLogoFile(header)

			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}

			var uploadErr *LogoUploadError
			assert.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}
