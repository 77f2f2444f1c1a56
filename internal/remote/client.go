// Package remote implements the repositories on top of the storefront REST
// backend. Calls carry the caller's bearer token and are never retried.
package remote

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

	"phonestore/internal/guard"
	"phonestore/internal/repository"

	"github.com/rs/zerolog"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 8 << 20

// Client performs JSON calls against the storefront backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	logger  zerolog.Logger
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Token is used when the request context carries no caller token.
	Token   string
	Timeout time.Duration
}

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %s", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		token:   cfg.Token,
		logger:  logger.With().Str("component", "remote").Logger(),
	}, nil
}

// NewStore wires the remote implementation of every repository. The journal
// is left nil; callers supply one.
func NewStore(c *Client) *repository.Store {
	return &repository.Store{
		Profiles:       &profileRepository{c: c},
		Phones:         &phoneRepository{c: c},
		Carts:          &cartRepository{c: c},
		CartLines:      &cartLineRepository{c: c},
		Invoices:       &invoiceRepository{c: c},
		PurchaseOrders: &purchaseOrderRepository{c: c},
		Suppliers:      &supplierRepository{c: c},
		Kardex:         &kardexRepository{c: c},
	}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) bearer(ctx context.Context) string {
	if tok := guard.TokenFromContext(ctx); tok != "" {
		return tok
	}
	return c.token
}

// do sends a request and decodes the response into out. Enveloped responses
// are unwrapped; non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("backend call failed")
		return &Error{Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: "failed to read response body", cause: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, raw)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := decodeEnvelope(raw, out); err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			c.logger.Warn().Str("method", method).Str("path", path).Str("message", rej.message).Msg("backend rejected call")
			return &Error{Status: resp.StatusCode, Message: rej.message, cause: err}
		}
		return &Error{Status: resp.StatusCode, Message: "unexpected response shape", cause: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	return q
}
