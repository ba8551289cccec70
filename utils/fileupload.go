package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxCoverFileSize is 10MB in bytes
	MaxCoverFileSize = 10 * 1024 * 1024
)

// allowed cover formats and the content type each maps to
var coverContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateCoverFile validates an uploaded book cover's format and size
func ValidateCoverFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxCoverFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxCoverFileSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := coverContentTypes[ext]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only png, jpg, jpeg and webp files are allowed",
		}
	}

	return nil
}

// CoverContentType returns the content type for a cover filename. The filename
// must already have passed ValidateCoverFile.
func CoverContentType(filename string) string {
	if contentType, ok := coverContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return contentType
	}
	return "application/octet-stream"
}
