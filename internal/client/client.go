// Package client calls a remote qualify service. Requests rotate through the
// primary URL and its fallbacks until one answers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Qualify/internal/intake"
	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

// Status is the service status document.
type Status struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Endpoints []string  `json:"endpoints"`
	Timestamp time.Time `json:"timestamp"`
}

// Calculation is the authoritative result plus its server-side metadata.
type Calculation struct {
	scoring.ScoreResult
	Notices      []intake.Notice `json:"notices"`
	ID           string          `json:"-"`
	CalculatedAt time.Time       `json:"calculatedAt"`
}

type Preview struct {
	Result       scoring.ScoreResult `json:"result"`
	Notices      []intake.Notice     `json:"notices"`
	CalculatedAt time.Time           `json:"calculatedAt"`
}

type HTMLExport struct {
	HTML        string    `json:"html"`
	Filename    string    `json:"filename"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Client interface {
	Status(ctx context.Context) (*Status, error)
	Calculate(ctx context.Context, body map[string]any) (*Calculation, error)
	Preview(ctx context.Context, body map[string]any) (*Preview, error)
	ExportHTML(ctx context.Context, body map[string]any) (*HTMLExport, error)
}

// APIError is a 4xx answer. It is never retried.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
	Field      string `json:"field,omitempty"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("qualify api: %d %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("qualify api: %d %s", e.StatusCode, e.Message)
}

// ValidationError converts a 422 answer back into the engine's error type.
func (e *APIError) ValidationError() (*scoring.ValidationError, bool) {
	if e.StatusCode != http.StatusUnprocessableEntity || e.Code == "" {
		return nil, false
	}
	return &scoring.ValidationError{Code: e.Code, Field: e.Field}, true
}

// ErrAllEndpointsFailed wraps the last failure once every attempt is spent.
var ErrAllEndpointsFailed = errors.New("all endpoints failed")

type serverError struct {
	status int
	body   string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.status, e.body)
}

type HTTPClient struct {
	urls       []string
	maxRetries int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a client. maxRetries is the total number of attempts
// across all URLs; values below one mean a single attempt.
func NewHTTPClient(baseURL string, fallbacks []string, timeout time.Duration, maxRetries int, logger *slog.Logger) *HTTPClient {
	urls := []string{strings.TrimRight(baseURL, "/")}
	for _, u := range fallbacks {
		if u = strings.TrimRight(u, "/"); u != "" {
			urls = append(urls, u)
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTPClient{
		urls:       urls,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		base := c.urls[attempt%len(c.urls)]

		data, header, err := c.attempt(ctx, method, base+path, payload)
		if err == nil {
			return data, header, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, nil, err
		}
		lastErr = err
		c.logger.Warn("qualify request failed", "url", base+path, "attempt", attempt+1, "error", err)
	}
	return nil, nil, fmt.Errorf("%w: %w", ErrAllEndpointsFailed, lastErr)
}

func (c *HTTPClient) attempt(ctx context.Context, method, url string, payload []byte) ([]byte, http.Header, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, nil, &serverError{status: resp.StatusCode, body: string(data)}
	case resp.StatusCode >= 400:
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return nil, nil, apiErr
	}
	return data, resp.Header, nil
}

func (c *HTTPClient) Status(ctx context.Context) (*Status, error) {
	data, _, err := c.doReq(ctx, http.MethodGet, "/test", nil)
	if err != nil {
		return nil, err
	}
	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &s, nil
}

func (c *HTTPClient) Calculate(ctx context.Context, body map[string]any) (*Calculation, error) {
	data, header, err := c.doReq(ctx, http.MethodPost, "/calculate", body)
	if err != nil {
		return nil, err
	}
	var calc Calculation
	if err := json.Unmarshal(data, &calc); err != nil {
		return nil, fmt.Errorf("decode calculation: %w", err)
	}
	calc.ID = header.Get("X-Calculation-ID")
	return &calc, nil
}

func (c *HTTPClient) Preview(ctx context.Context, body map[string]any) (*Preview, error) {
	data, _, err := c.doReq(ctx, http.MethodPost, "/preview", body)
	if err != nil {
		return nil, err
	}
	var p Preview
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	return &p, nil
}

func (c *HTTPClient) ExportHTML(ctx context.Context, body map[string]any) (*HTMLExport, error) {
	data, _, err := c.doReq(ctx, http.MethodPost, "/export-html", body)
	if err != nil {
		return nil, err
	}
	var out HTMLExport
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode html export: %w", err)
	}
	return &out, nil
}
