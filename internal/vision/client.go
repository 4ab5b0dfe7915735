// Package vision talks to the hosted image-labeling service that
// runs the pretrained detection model over a resume's embedded
// images (photos, logos, charts).
package vision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"resume-parser/pkg/httpclient"
)

// Label is one detection reported by the model.
type Label struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Page       int     `json:"page"`
}

type Client struct {
	endpoint   string
	httpClient *httpclient.Client
}

// NewClient returns a client for the given inference endpoint. An
// empty endpoint yields an unconfigured client; callers check
// Configured and skip the labeling step.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: httpclient.NewClient(timeout),
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// LabelDocument posts the raw document to the inference service and
// returns the detected labels for its embedded images.
func (c *Client) LabelDocument(filename string, document io.Reader) ([]Label, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("vision service not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, fmt.Errorf("failed to buffer document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.endpoint, writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("vision service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service error: %d", resp.StatusCode)
	}

	var result struct {
		Labels []Label `json:"labels"`
		Error  string  `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("vision service error: %s", result.Error)
	}

	return result.Labels, nil
}
