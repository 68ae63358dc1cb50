// Package api is the HTTP transport for the remote transaction resource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	defaultTimeout  = 10 * time.Second
	transactionPath = "/api/transaction"
	maxErrorBody    = 4 << 10
)

// Client talks to the transaction REST resource. It never retries; every
// failure is reported to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout still
// bounds every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for baseURL. A non-positive timeout falls back
// to the default; a timeout is reported as ErrTransport.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := c.do(ctx, http.MethodGet, transactionPath, nil, func(body io.Reader) error {
		var err error
		out, err = DecodeList(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single transaction. A missing id surfaces as a 404 StatusError.
func (c *Client) Get(ctx context.Context, id int64) (core.Transaction, error) {
	var out core.Transaction
	err := c.do(ctx, http.MethodGet, itemPath(id), nil, func(body io.Reader) error {
		var err error
		out, err = DecodeOne(body)
		return err
	})
	return out, err
}

// Create posts a new transaction. The server's response body is not used;
// the record becomes visible through the next List.
func (c *Client) Create(ctx context.Context, d core.Draft) error {
	return c.do(ctx, http.MethodPost, transactionPath, NewDraftRequest(d, 0), nil)
}

func (c *Client) Update(ctx context.Context, id int64, d core.Draft) error {
	return c.do(ctx, http.MethodPut, itemPath(id), NewDraftRequest(d, id), nil)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id int64) string {
	return transactionPath + "/" + strconv.FormatInt(id, 10)
}

// do performs one request. decode, when non-nil, reads a 2xx body.
func (c *Client) do(ctx context.Context, method, path string, payload any, decode func(io.Reader) error) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "API request failed",
			log.FieldComponent, log.ComponentAPI,
			log.FieldMethod, method,
			log.FieldPath, path,
			log.FieldError, err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "API request completed",
		log.FieldComponent, log.ComponentAPI,
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	if decode == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decode(resp.Body); err != nil {
		return err
	}
	return nil
}
