package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DonutClient calls a Donut (VisionEncoderDecoder) inference server that
// decodes a page image into a structured sequence.
type DonutClient struct {
	endpoint   string
	httpClient *http.Client
	maxLength  int
	numBeams   int
}

type donutRequest struct {
	Image      string `json:"image"`
	TaskPrompt string `json:"task_prompt"`
	MaxLength  int    `json:"max_length"`
	NumBeams   int    `json:"num_beams"`
}

type donutResponse struct {
	Output   string `json:"output"`
	Sequence string `json:"sequence"`
	Error    string `json:"error"`
}

// NewDonutClient creates a client for the inference server at endpoint
func NewDonutClient(endpoint string, timeout time.Duration) *DonutClient {
	return &DonutClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		maxLength:  1024,
		numBeams:   3,
	}
}

// Infer sends one page to the model and returns the decoded sequence as-is.
func (d *DonutClient) Infer(ctx context.Context, img image.Image, taskPrompt string) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image for Donut inference")
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	payload := donutRequest{
		Image:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		TaskPrompt: taskPrompt,
		MaxLength:  d.maxLength,
		NumBeams:   d.numBeams,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to build Donut request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Donut API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Donut API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result donutResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Donut response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("Donut inference failed: %s", result.Error)
	}

	output := result.Output
	if output == "" {
		output = result.Sequence
	}
	if strings.TrimSpace(output) == "" {
		return "", fmt.Errorf("Donut returned empty output")
	}

	log.WithFields(log.Fields{
		"req_id":     reqID,
		"chars":      len(output),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("Donut inference completed")

	return output, nil
}
