// Package imageprep cleans page scans up before they reach Tesseract.
package imageprep

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const minOCRHeight = 1200

// Preprocess prepares a scan for Tesseract: grayscale, upscale small
// captures, a light blur against speckle noise, then Otsu binarization.
func Preprocess(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)

	if gray.Bounds().Dy() < minOCRHeight {
		gray = imaging.Resize(gray, 0, minOCRHeight, imaging.Lanczos)
	}

	gray = imaging.Blur(gray, 0.6)
	return Binarize(gray, OtsuThreshold(gray))
}

// OtsuThreshold picks the gray level that maximizes the between-class
// variance of dark and light pixels. img must already be grayscale.
// A uniform image yields 0.
func OtsuThreshold(img *image.NRGBA) uint8 {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[img.Pix[img.PixOffset(x, y)]]++
		}
	}

	total := b.Dx() * b.Dy()
	var sum float64
	for level, count := range hist {
		sum += float64(level * count)
	}

	var (
		sumDark   float64
		dark      int
		best      float64
		threshold int
	)
	for level := 0; level < 256; level++ {
		dark += hist[level]
		if dark == 0 {
			continue
		}
		light := total - dark
		if light == 0 {
			break
		}

		sumDark += float64(level * hist[level])
		meanDark := sumDark / float64(dark)
		meanLight := (sum - sumDark) / float64(light)
		between := float64(dark) * float64(light) * (meanDark - meanLight) * (meanDark - meanLight)
		if between > best {
			best, threshold = between, level
		}
	}
	return uint8(threshold)
}

// Binarize maps gray levels above threshold to white and the rest to black.
func Binarize(img *image.NRGBA, threshold uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if c.R > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{A: 255}
	})
}
