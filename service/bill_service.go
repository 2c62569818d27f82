package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Aashish23092/bill-extraction/config"
	"github.com/Aashish23092/bill-extraction/dto"
)

type BillService struct {
	rasterizer       Rasterizer
	pageExtractor    *PageExtractor
	workers          int
	ocrFailurePolicy string
}

func NewBillService(rasterizer Rasterizer, pageExtractor *PageExtractor, workers int, ocrFailurePolicy string) *BillService {
	if workers < 1 {
		workers = 1
	}
	if ocrFailurePolicy == "" {
		ocrFailurePolicy = config.OCRFailureAbort
	}
	return &BillService{
		rasterizer:       rasterizer,
		pageExtractor:    pageExtractor,
		workers:          workers,
		ocrFailurePolicy: ocrFailurePolicy,
	}
}

// ProcessDocument extracts every page of the bill at filePath and reconciles
// the items into a single amount.
//
// Pages are numbered 1..N in document order and may be extracted
// concurrently, but items are always flattened in page order so the
// first-occurrence rule of reconciliation is reproducible. On error the
// returned result still holds the pages that completed.
func (s *BillService) ProcessDocument(ctx context.Context, filePath string) (*dto.DocumentResult, error) {
	pages, err := s.rasterizer.Pages(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", dto.ErrRasterization)
	}

	log.Printf("Processing bill with %d pages (workers=%d)", len(pages), s.workers)

	results := make([]dto.PageResult, len(pages))
	completed := make([]bool, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, page := range pages {
		i, page := i, page
		page.Number = i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.extractPage(gctx, page)
			if err != nil {
				return err
			}
			results[i] = result
			completed[i] = true
			return nil
		})
	}
	err = g.Wait()

	doc := assembleDocument(results, completed)
	if err != nil {
		return doc, err
	}

	log.WithFields(log.Fields{
		"pages":             len(doc.Pages),
		"total_item_count":  doc.TotalItemCount,
		"reconciled_amount": doc.ReconciledAmount,
	}).Info("Bill extraction completed")
	return doc, nil
}

func (s *BillService) extractPage(ctx context.Context, page dto.PageImage) (dto.PageResult, error) {
	result, err := s.pageExtractor.Extract(ctx, page)
	if err == nil {
		if result.Items == nil {
			result.Items = []dto.LineItem{}
		}
		return result, nil
	}

	if ctx.Err() != nil || s.ocrFailurePolicy != config.OCRFailureEmptyPage {
		return dto.PageResult{}, err
	}

	log.WithField("page", page.Number).Warnf("Page OCR failed, keeping empty page: %v", err)
	return dto.PageResult{
		PageNumber: page.Number,
		Items:      []dto.LineItem{},
		Source:     dto.SourceOCRFailed,
	}, nil
}

func assembleDocument(results []dto.PageResult, completed []bool) *dto.DocumentResult {
	doc := &dto.DocumentResult{Pages: make([]dto.PageResult, 0, len(results))}

	var all []dto.LineItem
	for i, result := range results {
		if !completed[i] {
			continue
		}
		doc.Pages = append(doc.Pages, result)
		all = append(all, result.Items...)
	}

	doc.TotalItemCount = len(all)
	doc.ReconciledAmount = ReconcileItems(all)
	return doc
}
