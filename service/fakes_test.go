package service

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/Aashish23092/bill-extraction/dto"
)

// pageImage returns an image whose width identifies the page in fakes.
func pageImage(n int) image.Image {
	return image.NewGray(image.Rect(0, 0, n, n))
}

type fakeStructured struct {
	outputs map[int]string
	err     error
	block   bool
	panics  bool

	mu    sync.Mutex
	calls int
}

func (f *fakeStructured) Infer(ctx context.Context, img image.Image, taskPrompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.panics {
		panic("model crashed")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.outputs[img.Bounds().Dx()], nil
}

type fakeOCR struct {
	lines  map[int][]string
	errs   map[int]error
	delays map[int]time.Duration

	mu    sync.Mutex
	order []int
}

func (f *fakeOCR) ExtractLines(ctx context.Context, img image.Image) ([]string, error) {
	key := img.Bounds().Dx()
	if d := f.delays[key]; d > 0 {
		time.Sleep(d)
	}

	f.mu.Lock()
	f.order = append(f.order, key)
	f.mu.Unlock()

	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.lines[key], nil
}

type fakeRasterizer struct {
	pages []dto.PageImage
	err   error
}

func (f *fakeRasterizer) Pages(ctx context.Context, filePath string) ([]dto.PageImage, error) {
	return f.pages, f.err
}

func imagePages(n int) []dto.PageImage {
	pages := make([]dto.PageImage, n)
	for i := range pages {
		pages[i] = dto.PageImage{Image: pageImage(i + 1)}
	}
	return pages
}
