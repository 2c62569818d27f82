package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Aashish23092/bill-extraction/dto"
)

// Downloader fetches remote bill documents into the temp directory.
type Downloader struct {
	httpClient *http.Client
	tempDir    string
	maxBytes   int64
}

func NewDownloader(timeout time.Duration, maxBytes int64) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: timeout},
		tempDir:    os.TempDir(),
		maxBytes:   maxBytes,
	}
}

// Download saves the document at rawURL and returns the local path.
// The caller owns the file and must remove it.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL: %v", dto.ErrDownload, err)
	}

	filename := path.Base(u.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "document"
	}
	filePath := filepath.Join(d.tempDir, uuid.NewString()+"-"+filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", dto.ErrDownload, err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", dto.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: status %d", dto.ErrDownload, resp.StatusCode)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("saving file failed: %w", err)
	}

	body := io.Reader(resp.Body)
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	written, err := io.Copy(out, body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("saving file failed: %w", err)
	}

	if written == 0 {
		os.Remove(filePath)
		return "", fmt.Errorf("%w: downloaded file is empty", dto.ErrDownload)
	}
	if d.maxBytes > 0 && written > d.maxBytes {
		os.Remove(filePath)
		return "", fmt.Errorf("%w: file exceeds %d bytes", dto.ErrDownload, d.maxBytes)
	}

	log.WithFields(log.Fields{"url": rawURL, "bytes": written}).Info("Downloaded document")
	return filePath, nil
}
