package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/bill-extraction/dto"
)

func newTestDownloader(t *testing.T, maxBytes int64) *Downloader {
	d := NewDownloader(5*time.Second, maxBytes)
	d.tempDir = t.TempDir()
	return d
}

func TestDownloaderSavesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	d := newTestDownloader(t, 1024)
	path, err := d.Download(context.Background(), server.URL+"/bills/invoice.pdf")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "-invoice.pdf"))
	assert.Equal(t, d.tempDir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestDownloaderDefaultFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	path, err := newTestDownloader(t, 0).Download(context.Background(), server.URL+"/")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "-document"))
}

func TestDownloaderFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
		"empty body": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
		"too large": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", 64)))
		},
	}

	for name, handler := range cases {
		server := httptest.NewServer(handler)
		d := newTestDownloader(t, 16)

		_, err := d.Download(context.Background(), server.URL+"/bill.png")

		assert.ErrorIs(t, err, dto.ErrDownload, name)
		entries, _ := os.ReadDir(d.tempDir)
		assert.Empty(t, entries, name)
		server.Close()
	}
}

func TestDownloaderUnreachableHost(t *testing.T) {
	_, err := newTestDownloader(t, 0).Download(context.Background(), "http://127.0.0.1:1/bill.png")

	assert.ErrorIs(t, err, dto.ErrDownload)
}
