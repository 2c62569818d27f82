package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Aashish23092/bill-extraction/dto"
)

type pdfProcessor struct{}

// NewPDFProcessor returns the Rasterizer used for uploaded bills: PDFs are
// split into one raster per page, anything else is decoded as a single image.
func NewPDFProcessor() Rasterizer {
	api.DisableConfigDir()
	return &pdfProcessor{}
}

func (p *pdfProcessor) Pages(ctx context.Context, filePath string) ([]dto.PageImage, error) {
	isPDF, err := IsPDF(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrRasterization, err)
	}
	if isPDF {
		return p.pdfPages(ctx, filePath)
	}

	img, err := decodeImageFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrUnsupportedFile, err)
	}
	return []dto.PageImage{{Number: 1, Image: img}}, nil
}

func (p *pdfProcessor) pdfPages(ctx context.Context, filePath string) ([]dto.PageImage, error) {
	pageCount, err := api.PageCountFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrRasterization, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", dto.ErrRasterization)
	}

	textLayer := extractTextLayer(filePath)
	conf := model.NewDefaultConfiguration()

	pages := make([]dto.PageImage, 0, pageCount)
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := extractPageImage(filePath, pageNr, conf)
		if err != nil {
			log.WithField("page", pageNr).Warnf("Failed to extract page raster: %v", err)
		}
		pages = append(pages, dto.PageImage{
			Number:    pageNr,
			Image:     img,
			TextLayer: textLayer[pageNr],
		})
	}

	log.Printf("Rasterized PDF into %d pages", len(pages))
	return pages, nil
}

// extractPageImage returns the largest embedded image on the page, which
// for a scanned bill is the page scan itself. It returns nil when the page
// carries no raster.
func extractPageImage(filePath string, pageNr int, conf *model.Configuration) (image.Image, error) {
	tempDir, err := os.MkdirTemp("", "bill_page_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := api.ExtractImagesFile(filePath, tempDir, []string{strconv.Itoa(pageNr)}, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var best image.Image
	var bestArea int
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		img, err := decodeImageFile(filepath.Join(tempDir, file.Name()))
		if err != nil {
			continue
		}
		if area := img.Bounds().Dx() * img.Bounds().Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}
	return best, nil
}

// extractTextLayer reads the text rows of a digital PDF keyed by page number.
// A scanned PDF simply yields no rows.
func extractTextLayer(filePath string) (rows map[int][]string) {
	rows = make(map[int][]string)

	// ledongthuc/pdf panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("PDF text layer extraction aborted: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		log.Warnf("PDF text layer unavailable: %v", err)
		return rows
	}
	defer f.Close()

	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		textRows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range textRows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.Join(strings.Fields(strings.Join(words, " ")), " "); line != "" {
				rows[pageIndex] = append(rows[pageIndex], line)
			}
		}
	}
	return rows
}

// IsPDF detects PDFs by extension or by the %PDF magic bytes.
func IsPDF(filePath string) (bool, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		return true, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, 5)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return bytes.Equal(header[:n], []byte("%PDF-")), nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
