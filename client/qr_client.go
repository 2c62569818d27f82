package client

import (
	"context"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	log "github.com/sirupsen/logrus"
)

// QRClient reads structured payloads embedded as QR codes on bills
// (e-invoice QR codes carrying the line items as JSON).
type QRClient struct{}

func NewQRClient() *QRClient {
	return &QRClient{}
}

// Infer decodes the first QR code on the page and returns its text.
// The task prompt is ignored.
func (q *QRClient) Infer(ctx context.Context, img image.Image, _ string) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image for QR decoding")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}

	text := result.GetText()
	log.Debugf("QR code decoded, length: %d bytes", len(text))
	return text, nil
}
