package dto

import "errors"

var (
	ErrMissingDocument = errors.New("missing 'document' field")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrRasterization   = errors.New("failed to rasterize document")
	ErrOCRFailed       = errors.New("OCR failed")
	ErrDownload        = errors.New("download failed")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	IsSuccess bool   `json:"is_success"`
	Error     string `json:"error"`
}

type TokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ExtractBillResponse is the success envelope returned by the bill endpoints
type ExtractBillResponse struct {
	IsSuccess  bool            `json:"is_success"`
	TokenUsage TokenUsage      `json:"token_usage"`
	Data       *DocumentResult `json:"data"`
}
