package service

import (
	"context"
	"image"

	"github.com/Aashish23092/bill-extraction/dto"
)

// StructuredExtractor turns a page image into a structured payload
// (JSON with a "line_items" field) or fails.
type StructuredExtractor interface {
	Infer(ctx context.Context, img image.Image, taskPrompt string) (string, error)
}

// OCRExtractor returns the text lines of a page image in reading order.
type OCRExtractor interface {
	ExtractLines(ctx context.Context, img image.Image) ([]string, error)
}

// Rasterizer splits a document into ordered pages.
type Rasterizer interface {
	Pages(ctx context.Context, filePath string) ([]dto.PageImage, error)
}
