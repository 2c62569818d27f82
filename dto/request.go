package dto

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// ExtractBillRequest is the JSON body of POST /extract-bill-data
type ExtractBillRequest struct {
	Document string `json:"document"`
}

// Validate performs basic validation on the request
func (r *ExtractBillRequest) Validate() error {
	r.Document = strings.TrimSpace(r.Document)
	if r.Document == "" {
		return ErrMissingDocument
	}
	if !strings.HasPrefix(r.Document, "http://") && !strings.HasPrefix(r.Document, "https://") {
		return fmt.Errorf("document must be an http(s) URL")
	}
	return nil
}

// BillUploadRequest represents a multipart bill upload
type BillUploadRequest struct {
	File *multipart.FileHeader
}

var supportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp", ".bmp"}

// Validate validates the uploaded file
func (r *BillUploadRequest) Validate() error {
	if r.File == nil {
		return fmt.Errorf("file is required")
	}

	filename := strings.ToLower(r.File.Filename)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(filename, ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: supported types are PDF, PNG, JPG, TIFF, WEBP, BMP", ErrUnsupportedFile)
}
