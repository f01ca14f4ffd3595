// Package supabase talks to the PostgREST interface of a Supabase project.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/pocket-migrate/internal/entities"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "pocket-migrate/1.0"

	// maxBodyInError bounds how much of a rejection body ends up in error messages.
	maxBodyInError = 500
)

// Client inserts rows into one table through the Supabase REST API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient creates a client for baseURL/rest/v1/<table>. A zero timeout uses the default.
func NewClient(baseURL, apiKey, table string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(baseURL, "/") + "/rest/v1/" + url.PathEscape(table),
		apiKey:     apiKey,
	}
}

// Endpoint returns the table URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Probe issues a lightweight count query. Any outcome other than 200 wraps ErrUnavailable.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?select=count&limit=1", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, &TransportError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %w", ErrUnavailable, rejection(resp))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Insert creates links in a single request. 200 and 201 are success; any other
// status is returned as *RejectedError, a failed exchange as *TransportError.
func (c *Client) Insert(ctx context.Context, links []entities.Link) error {
	body, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return rejection(resp)
	}

	// Drain so the connection can be reused for the next request.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
}

func rejection(resp *http.Response) *RejectedError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyInError))
	return &RejectedError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
