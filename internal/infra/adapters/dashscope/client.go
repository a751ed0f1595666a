// Package dashscope is a minimal client for the Aliyun DashScope (Model
// Studio) HTTP APIs used by the interview pipeline: the asynchronous
// paraformer transcription service and CosyVoice speech synthesis.
package dashscope

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

// DefaultBaseURL is the default HTTP endpoint.
const DefaultBaseURL = "https://dashscope.aliyuncs.com"

// Client carries authentication and transport shared by the DashScope
// services. Construct one and hand it to NewTranscriber / NewSynthesizer.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the HTTP endpoint (tests point this at a local
// server).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a DashScope client. The apiKey is required.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("dashscope: api key is empty")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a structured error body returned by DashScope.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("dashscope: %s - %s (request_id=%s, http_status=%d)",
			e.Code, e.Message, e.RequestID, e.HTTPStatus)
	}
	return fmt.Sprintf("dashscope: %s - %s (http_status=%d)", e.Code, e.Message, e.HTTPStatus)
}

// postJSON issues an authenticated POST with a JSON body. When async is
// set the X-DashScope-Async header is added, which switches the service
// into submit/poll mode.
func (c *Client) postJSON(ctx context.Context, path string, payload any, async bool) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if async {
		req.Header.Set("X-DashScope-Async", "enable")
	}
	return c.httpClient.Do(req)
}

// getJSON issues an authenticated GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeAPIError drains a non-OK response into an *APIError.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{HTTPStatus: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}
	if apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
