// Package ocr wraps the Tesseract engine (via gosseract) behind a
// context-aware, line-oriented API.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	log "github.com/sirupsen/logrus"

	"github.com/Aashish23092/bill-extraction/utils"
	"github.com/Aashish23092/bill-extraction/utils/imageprep"
)

type TesseractClient struct {
	dataPath string
	language string
	timeout  time.Duration
}

func NewTesseractClient(dataPath, language string, timeout time.Duration) *TesseractClient {
	if language == "" {
		language = "eng"
	}
	return &TesseractClient{
		dataPath: dataPath,
		language: language,
		timeout:  timeout,
	}
}

type ocrResult struct {
	text string
	err  error
}

// ExtractLines runs OCR on a page image and returns its non-empty text lines in reading order.
// Tesseract itself cannot be interrupted, so on context expiry the call
// returns immediately and the engine finishes in the background.
func (tc *TesseractClient) ExtractLines(ctx context.Context, img image.Image) ([]string, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to OCR")
	}
	if tc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tc.timeout)
		defer cancel()
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, imageprep.Preprocess(img), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	done := make(chan ocrResult, 1)
	go func() {
		text, err := tc.extractText(buf.Bytes())
		done <- ocrResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("tesseract: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		lines := utils.SplitTextLines(res.text)
		log.WithField("lines", len(lines)).Debug("Tesseract extracted text")
		return lines, nil
	}
}

func (tc *TesseractClient) extractText(imageData []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage(tc.language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	// uniform block of text suits tabular bills
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}
