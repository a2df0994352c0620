// Package api is the HTTP transport for the hosted backend. It implements
// the ports declared by the catalog, connection, executor, router, and
// triggers packages. Requests are sent exactly once; retry policy belongs to
// the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/yosida95/uritemplate/v3"
)

// DefaultBaseURL is the hosted backend endpoint.
const DefaultBaseURL = "https://backend.composio.dev"

const apiKeyHeader = "x-api-key"

// Path templates for every backend route the client touches.
var (
	tplTools            = uritemplate.MustNew("/api/v3/tools{?tool_slugs,toolkits,search,scopes,limit}")
	tplTool             = uritemplate.MustNew("/api/v3/tools/{slug}{?toolkit_version}")
	tplToolkits         = uritemplate.MustNew("/api/v3/toolkits")
	tplToolkit          = uritemplate.MustNew("/api/v3/toolkits/{slug}")
	tplToolkitVersions  = uritemplate.MustNew("/api/v3/toolkits/{slug}/versions")
	tplExecute          = uritemplate.MustNew("/api/v3/tools/execute/{slug}")
	tplProxy            = uritemplate.MustNew("/api/v3/tools/execute/proxy")
	tplAccounts         = uritemplate.MustNew("/api/v3/connected_accounts{?user_ids,auth_config_ids,toolkit_slugs,statuses}")
	tplAccount          = uritemplate.MustNew("/api/v3/connected_accounts/{id}")
	tplAuthConfigs      = uritemplate.MustNew("/api/v3/auth_configs{?toolkit_slug}")
	tplSessions         = uritemplate.MustNew("/api/v3/tool_router/sessions")
	tplSession          = uritemplate.MustNew("/api/v3/tool_router/sessions/{id}")
	tplSessionToolkits  = uritemplate.MustNew("/api/v3/tool_router/sessions/{id}/toolkits")
	tplTriggerTypes     = uritemplate.MustNew("/api/v3/triggers_types{?toolkit_slugs}")
	tplTriggerType      = uritemplate.MustNew("/api/v3/triggers_types/{slug}")
	tplTriggerInstances = uritemplate.MustNew("/api/v3/trigger_instances{?user_ids,trigger_slugs,toolkit_slugs,show_disabled}")
	tplTriggerInstance  = uritemplate.MustNew("/api/v3/trigger_instances/{id}")
	tplTriggerStatus    = uritemplate.MustNew("/api/v3/trigger_instances/{id}/status")
	tplFileDownload     = uritemplate.MustNew("/api/v3/files/{id}/download")
)

// Error is a non-2xx backend response.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("backend error %d (%s): %s [request %s]", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("backend error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to the hosted backend over JSON HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a backend client. An empty baseURL falls back to
// DefaultBaseURL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// expand renders a path template. vars values must be uritemplate values
// (String or List).
func expand(tpl *uritemplate.Template, vars uritemplate.Values) (string, error) {
	path, err := tpl.Expand(vars)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", tpl.Raw(), err)
	}
	return path, nil
}

func listValue(items []string) uritemplate.Value {
	return uritemplate.List(items...)
}

// do sends one request and decodes the JSON response into out (skipped when
// out is nil). Non-2xx responses decode into *Error. There is no retry: a
// failed call surfaces immediately so the caller decides what to do.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	if _, err := url.Parse(endpoint); err != nil {
		return fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}
