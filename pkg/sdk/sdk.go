// ABOUTME: HTTP client for the tern backend's RPC and event-stream endpoints
// ABOUTME: Functional options configure base URL, timeout, and directory scoping

package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a tern backend. Methods POST JSON bodies to
// {base}/rpc/{method} and decode JSON responses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	directory  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds individual RPC calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithDirectory scopes all calls to a working directory. The backend
// routes scoped sessions to the matching checkout.
func WithDirectory(dir string) Option {
	return func(c *Client) {
		c.directory = dir
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		baseURL: baseURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Directory returns the directory this client is scoped to, if any.
func (c *Client) Directory() string { return c.directory }

// Scoped returns a copy of the client scoped to dir. The HTTP client
// is shared.
func (c *Client) Scoped(dir string) *Client {
	scoped := *c
	scoped.directory = dir
	return &scoped
}

// PromptPart is one element of a prompt payload.
type PromptPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Path     string `json:"path,omitempty"`
	Range    string `json:"range,omitempty"`
	Agent    string `json:"agent,omitempty"`
	Mime     string `json:"mime,omitempty"`
	Filename string `json:"filename,omitempty"`
	Data     string `json:"data,omitempty"`
}

// PromptRequest is the session.prompt payload.
type PromptRequest struct {
	SessionID string       `json:"session_id"`
	Model     string       `json:"model"`
	Agent     string       `json:"agent"`
	Parts     []PromptPart `json:"parts"`
}

// Prompt dispatches a user prompt to the session.
func (c *Client) Prompt(ctx context.Context, req PromptRequest) error {
	return c.call(ctx, "session.prompt", req, nil)
}

// CommandRequest is the session.command payload.
type CommandRequest struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
	Arguments string `json:"arguments,omitempty"`
}

// Command dispatches a slash command to the session.
func (c *Client) Command(ctx context.Context, req CommandRequest) error {
	return c.call(ctx, "session.command", req, nil)
}

// ShellRequest is the session.shell payload.
type ShellRequest struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
}

// Shell runs a shell command inside the session's workspace.
func (c *Client) Shell(ctx context.Context, req ShellRequest) error {
	return c.call(ctx, "session.shell", req, nil)
}

// Abort interrupts the session's in-flight work.
func (c *Client) Abort(ctx context.Context, sessionID string) error {
	return c.call(ctx, "session.abort", map[string]string{"session_id": sessionID}, nil)
}

// Worktree describes a backend-managed git worktree.
type Worktree struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Branch string `json:"branch"`
}

// CreateWorktree asks the backend to create a worktree for name. The
// returned path may not be populated on disk yet; callers poll for
// readiness.
func (c *Client) CreateWorktree(ctx context.Context, name string) (Worktree, error) {
	var wt Worktree
	err := c.call(ctx, "worktree.create", map[string]string{"name": name}, &wt)
	return wt, err
}

// call POSTs a JSON body to /rpc/{method} and decodes the response into
// out when non-nil. Non-2xx responses become *APIError.
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	u, err := url.JoinPath(c.baseURL, "rpc", method)
	if err != nil {
		return fmt.Errorf("building %s url: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.directory != "" {
		req.Header.Set("X-Tern-Directory", c.directory)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	return nil
}
