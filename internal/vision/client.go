// Package vision talks to the external catheter site image classifier.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"cathshield/internal/risk"
)

var (
	ErrNotConfigured    = errors.New("vision service is not configured")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// AllowedContentTypes lists the image formats the classifier accepts.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type Classifier interface {
	Classify(ctx context.Context, image []byte, filename string) (*risk.Findings, error)
}

type httpClassifier struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a classifier posting images to url. An empty url yields a
// classifier that always fails with ErrNotConfigured.
func NewClient(url, apiKey string) Classifier {
	return &httpClassifier{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type classifyResponse struct {
	Features          risk.Findings `json:"features"`
	OverallConfidence float64       `json:"overall_confidence"`
}

func (c *httpClassifier) Classify(ctx context.Context, image []byte, filename string) (*risk.Findings, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	if !AllowedContentTypes[http.DetectContentType(image)] {
		return nil, ErrUnsupportedImage
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vision API error: %s - %s", resp.Status, string(respBody))
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}

	findings := result.Features
	if findings.OverallConfidence == 0 {
		findings.OverallConfidence = result.OverallConfidence
	}
	return &findings, nil
}
