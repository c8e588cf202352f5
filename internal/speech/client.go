// Package speech renders consent scripts to audio through a text-to-speech
// service.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNotConfigured = errors.New("speech service is not configured")

type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

type httpSynthesizer struct {
	url        string
	httpClient *http.Client
}

// NewClient posts synthesis requests to url. An empty url disables synthesis.
func NewClient(url string) Synthesizer {
	return &httpSynthesizer{
		url: url,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (c *httpSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}

	jsonBody, err := json.Marshal(synthesizeRequest{Text: text, Language: language})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("TTS API error: %s - %s", resp.Status, string(body))
	}
	return io.ReadAll(resp.Body)
}
