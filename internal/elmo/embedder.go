// Package elmo extracts contextual document embeddings through an external
// embedding service.
//
// The heavy model stays outside the pipeline: this package only batches
// documents, talks to the service, mean-pools token vectors and caches the
// results.
package elmo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"arxivprep/internal/config"
)

// Client errors.
var (
	ErrUnexpectedStatusCode  = errors.New("unexpected status code")
	ErrResponseCountMismatch = errors.New("service returned wrong number of documents")
)

// Embedder produces per-token contextual embeddings for a batch of documents.
// The result has one [token][dim] matrix per input text, in input order.
type Embedder interface {
	EmbedBatch(texts []string) ([][][]float32, error)
	Dimension() int
}

// embedRequest is the JSON body sent to the embedding service.
type embedRequest struct {
	Texts []string `json:"texts"`
}

// embedResponse is the JSON body returned by the embedding service:
// embeddings[doc][token][component].
type embedResponse struct {
	Embeddings [][][]float32 `json:"embeddings"`
}

// Client calls an HTTP embedding service with config-driven retries.
type Client struct {
	endpoint    string
	dimension   int
	client      *http.Client
	retryPolicy *config.RetryPolicy
}

// NewClient creates a client for the service at endpoint producing vectors
// of the given dimension.
func NewClient(endpoint string, dimension int, retryPolicy *config.RetryPolicy) *Client {
	if retryPolicy == nil {
		retryPolicy = &config.RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        120,
		}
	}

	return &Client{
		endpoint:    endpoint,
		dimension:   dimension,
		client:      &http.Client{Timeout: retryPolicy.GetTimeout()},
		retryPolicy: retryPolicy,
	}
}

// Dimension returns the embedding dimensionality.
func (c *Client) Dimension() int {
	return c.dimension
}

// EmbedBatch posts texts to the service and returns per-token embeddings.
func (c *Client) EmbedBatch(texts []string) ([][][]float32, error) {
	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= c.retryPolicy.MaxAttempts; attempt++ {
		embeddings, statusCode, err := c.embedOnce(body, len(texts))
		if err == nil {
			return embeddings, nil
		}

		lastErr = fmt.Errorf("embed request failed (attempt %d/%d): %w",
			attempt, c.retryPolicy.MaxAttempts, err)

		if statusCode != 0 && !isRetryableStatus(statusCode) {
			break
		}

		if attempt < c.retryPolicy.MaxAttempts {
			delay := c.retryPolicy.GetRetryDelay(attempt)
			if delay > 0 {
				time.Sleep(delay)
			}
		}
	}

	return nil, lastErr
}

func (c *Client) embedOnce(body []byte, want int) ([][][]float32, int, error) {
	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed embedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(parsed.Embeddings) != want {
		return nil, resp.StatusCode, fmt.Errorf("%w: got %d, want %d",
			ErrResponseCountMismatch, len(parsed.Embeddings), want)
	}

	return parsed.Embeddings, resp.StatusCode, nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
