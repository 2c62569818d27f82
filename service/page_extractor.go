package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Aashish23092/bill-extraction/dto"
	"github.com/Aashish23092/bill-extraction/utils"
)

// PageExtractor produces the line items of a single page. Structured
// extractors are tried first; if none yields a usable payload the page is
// OCR'd and parsed line by line.
type PageExtractor struct {
	structured       []StructuredExtractor
	ocr              OCRExtractor
	taskPrompt       string
	inferenceTimeout time.Duration
}

func NewPageExtractor(structured []StructuredExtractor, ocr OCRExtractor, taskPrompt string, inferenceTimeout time.Duration) *PageExtractor {
	return &PageExtractor{
		structured:       structured,
		ocr:              ocr,
		taskPrompt:       taskPrompt,
		inferenceTimeout: inferenceTimeout,
	}
}

// Extract returns the page's items. Structured failures are never errors;
// an OCR failure is returned wrapped in dto.ErrOCRFailed.
func (e *PageExtractor) Extract(ctx context.Context, page dto.PageImage) (dto.PageResult, error) {
	logger := log.WithField("page", page.Number)

	if page.Image != nil {
		if items, ok := e.tryStructured(ctx, page, logger); ok {
			logger.WithField("items", len(items)).Info("Structured extraction succeeded")
			return dto.PageResult{PageNumber: page.Number, Items: items, Source: dto.SourceStructured}, nil
		}
	}

	switch {
	case page.Image != nil:
		return e.fromOCR(ctx, page, logger)
	case len(page.TextLayer) > 0:
		return e.parsedPage(page, page.TextLayer, dto.SourceTextLayer, logger), nil
	default:
		logger.Info("Page has neither raster nor text, keeping it empty")
		return dto.PageResult{PageNumber: page.Number, Items: []dto.LineItem{}, Source: dto.SourceEmpty}, nil
	}
}

// fromOCR parses the OCR'd raster. On a digital PDF the largest embedded image
// may only be a logo, so the text layer wins whenever OCR yields no items or
// fails while the text layer still parses.
func (e *PageExtractor) fromOCR(ctx context.Context, page dto.PageImage, logger *log.Entry) (dto.PageResult, error) {
	lines, err := e.ocr.ExtractLines(ctx, page.Image)
	if err != nil {
		if ctx.Err() == nil && len(page.TextLayer) > 0 {
			if result := e.parsedPage(page, page.TextLayer, dto.SourceTextLayer, logger); len(result.Items) > 0 {
				logger.Warnf("OCR failed, using PDF text layer: %v", err)
				return result, nil
			}
		}
		return dto.PageResult{}, fmt.Errorf("%w on page %d: %v", dto.ErrOCRFailed, page.Number, err)
	}

	result := e.parsedPage(page, lines, dto.SourceOCR, logger)
	if len(result.Items) == 0 && len(page.TextLayer) > 0 {
		if layered := e.parsedPage(page, page.TextLayer, dto.SourceTextLayer, logger); len(layered.Items) > 0 {
			return layered, nil
		}
	}
	return result, nil
}

func (e *PageExtractor) parsedPage(page dto.PageImage, lines []string, source dto.ExtractionSource, logger *log.Entry) dto.PageResult {
	items := utils.ParseLineItemsFromText(lines)
	logger.WithFields(log.Fields{
		"source": source,
		"lines":  len(lines),
		"items":  len(items),
	}).Info("Fallback line parsing completed")

	return dto.PageResult{PageNumber: page.Number, Items: items, Source: source}
}

func (e *PageExtractor) tryStructured(ctx context.Context, page dto.PageImage, logger *log.Entry) ([]dto.LineItem, bool) {
	for i, extractor := range e.structured {
		raw, err := e.infer(ctx, extractor, page)
		if err != nil {
			logger.WithField("extractor", i).Debugf("Structured extractor failed: %v", err)
			continue
		}

		items, err := utils.ParseStructuredLineItems(raw)
		if err != nil {
			logger.WithField("extractor", i).Debugf("Structured output rejected: %v", err)
			continue
		}
		return items, true
	}
	return nil, false
}

func (e *PageExtractor) infer(ctx context.Context, extractor StructuredExtractor, page dto.PageImage) (raw string, err error) {
	if e.inferenceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.inferenceTimeout)
		defer cancel()
	}

	// a misbehaving model adapter must not take the page down
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("structured extractor panicked: %v", r)
		}
	}()

	return extractor.Infer(ctx, page.Image, e.taskPrompt)
}
