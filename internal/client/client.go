// Package client implements the HTTP client for a running ptyspawn
// server: session listing and remote kill against the /sessions
// endpoints.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"pkt.systems/ptyspawn/internal/server"
)

// Client talks to a ptyspawn server endpoint.
type Client struct {
	Endpoint string
	Token    string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// ListSessions returns the sessions the server currently tracks.
func (c *Client) ListSessions(ctx context.Context) ([]server.Info, error) {
	var out []server.Info
	if err := c.do(ctx, http.MethodGet, "/sessions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// KillSession terminates a session by id.
func (c *Client) KillSession(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is required")
	}
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	base, err := normalizeHTTPURL(c.Endpoint)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func normalizeHTTPURL(endpoint string) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", fmt.Errorf("endpoint is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("endpoint must include scheme")
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return strings.TrimRight(endpoint, "/"), nil
	case "ws":
		parsed.Scheme = "http"
	case "wss":
		parsed.Scheme = "https"
	default:
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}
