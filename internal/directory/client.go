// Package directory is the client for the supervisors service, the external
// system of record for supervisor identities.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"opsportal.org/internal/obs"
)

const defaultBaseURL = "http://localhost:8096"

var (
	// ErrNotFound is the normal negative result: the service answered and the
	// supervisor does not exist.
	ErrNotFound = errors.New("directory: supervisor not found")

	// ErrUnavailable collapses every transport-level failure (timeout,
	// connection refused, non-2xx other than 404) into one condition.
	// Callers never retry here; retry is their decision.
	ErrUnavailable = errors.New("directory: service unavailable")
)

// Supervisor is the directory's public record of a supervisor identity.
type Supervisor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Client performs authenticated lookups against the supervisors service.
type Client struct {
	http       *http.Client
	baseURL    string
	authHeader string
}

// NewClient builds a directory client. An empty baseURL falls back to the
// local default. The credential, when present, is normalized to a
// "Bearer <token>" header unless it already carries a Bearer or Basic scheme.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var authHeader string
	if token = strings.TrimSpace(token); token != "" {
		if strings.HasPrefix(token, "Bearer ") || strings.HasPrefix(token, "Basic ") {
			authHeader = token
		} else {
			authHeader = "Bearer " + token
		}
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		authHeader: authHeader,
	}
}

// BaseURL reports the resolved directory endpoint, mostly for logs.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchByID looks up one supervisor. A 404 answer maps to ErrNotFound; every
// other failure maps to ErrUnavailable without retry.
func (c *Client) FetchByID(ctx context.Context, id string) (Supervisor, error) {
	var sup Supervisor
	endpoint := c.baseURL + "/supervisors/" + url.PathEscape(id)
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return Supervisor{}, c.unavailable("fetch supervisor", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Supervisor{}, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Supervisor{}, c.unavailable("fetch supervisor", fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(&sup); err != nil {
		if errors.Is(err, io.EOF) {
			// A successful answer with no body means no match.
			return Supervisor{}, ErrNotFound
		}
		return Supervisor{}, c.unavailable("decode supervisor", err)
	}
	return sup, nil
}

// FetchAll lists every supervisor the directory knows about. An empty body is
// an empty list, not an error.
func (c *Client) FetchAll(ctx context.Context) ([]Supervisor, error) {
	resp, err := c.do(ctx, c.baseURL+"/supervisors")
	if err != nil {
		return nil, c.unavailable("list supervisors", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.unavailable("list supervisors", fmt.Errorf("status %d", resp.StatusCode))
	}

	var supervisors []Supervisor
	if err := json.NewDecoder(resp.Body).Decode(&supervisors); err != nil {
		if errors.Is(err, io.EOF) {
			return []Supervisor{}, nil
		}
		return nil, c.unavailable("decode supervisors", err)
	}
	if supervisors == nil {
		supervisors = []Supervisor{}
	}
	return supervisors, nil
}

func (c *Client) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	return c.http.Do(req)
}

func (c *Client) unavailable(op string, err error) error {
	obs.LogEvent("error", "supervisors directory call failed", map[string]any{
		"op":       op,
		"base_url": c.baseURL,
		"err":      err.Error(),
	})
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
