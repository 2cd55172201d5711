// Package backend is the REST client for the loan-origination API. It owns
// request construction, bearer auth, and translation of HTTP failures into
// the single error shape the save pipeline reports to users.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clearpathlending/intake/pkg/logger"
)

// TokenSource supplies the current bearer token, if any. The token lifecycle
// itself (refresh, verification) is outside this package.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// APIError is a server-rejected request: a response was received with a
// non-2xx status. Message carries the body's error/message field verbatim
// when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// UserMessage converts any error from this package into the single
// user-facing string surfaced on a failed submit.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "Network error: unable to reach the server. Your entries were kept; please try again."
}

// Client talks to the loan-origination API.
type Client struct {
	client *http.Client
	base   *url.URL
	tokens TokenSource
	log    *logger.Logger
}

// NewClient constructs a client for the given base URL (for example
// "https://api.example.com/api/v1").
func NewClient(client *http.Client, baseURL string, tokens TokenSource, log *logger.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("api base url required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("backend")
	}
	return &Client{client: client, base: parsed, tokens: tokens, log: log}, nil
}

// CreateBorrowerAndApplication issues the combined create call. It is
// unconditional: there is nothing to diff against yet.
func (c *Client) CreateBorrowerAndApplication(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	var out CreateResponse
	if err := c.do(ctx, http.MethodPost, "/urla/pre-application/verify-and-create", req, &out); err != nil {
		return CreateResponse{}, err
	}
	return out, nil
}

// GetApplication fetches the current server record.
func (c *Client) GetApplication(ctx context.Context, id string) (Application, error) {
	var out Application
	if err := c.do(ctx, http.MethodGet, "/urla/applications/"+url.PathEscape(id), nil, &out); err != nil {
		return Application{}, err
	}
	return out, nil
}

// SaveApplication applies a sparse patch to the application.
func (c *Client) SaveApplication(ctx context.Context, id string, patch SavePatch) (Application, error) {
	var out Application
	if err := c.do(ctx, http.MethodPost, "/urla/applications/"+url.PathEscape(id)+"/save", patch, &out); err != nil {
		return Application{}, err
	}
	return out, nil
}

// GetProgress pulls the advisory completion summary.
func (c *Client) GetProgress(ctx context.Context, id string) (Progress, error) {
	var out Progress
	if err := c.do(ctx, http.MethodGet, "/urla/applications/"+url.PathEscape(id)+"/progress", nil, &out); err != nil {
		return Progress{}, err
	}
	return out, nil
}

// UpdateProgressSection marks one named section complete or incomplete.
func (c *Client) UpdateProgressSection(ctx context.Context, id, section string, complete bool) error {
	body := struct {
		Section  string `json:"section"`
		Complete bool   `json:"complete"`
	}{Section: section, Complete: complete}
	return c.do(ctx, http.MethodPatch, "/urla/applications/"+url.PathEscape(id)+"/progress/section", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	endpoint := *c.base
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError extracts the server's error/message field when the body has
// one; otherwise the status code alone becomes the message.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		} else if payload.Message != "" {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
