package api

import (
	"context"

	"github.com/yosida95/uritemplate/v3"

	"github.com/composiohq/composio-go/pkg/router"
)

type createSessionRequest struct {
	UserID                    string               `json:"user_id"`
	Toolkits                  []router.ToolkitSpec `json:"toolkits,omitempty"`
	EnabledToolkits           []string             `json:"enabled_toolkits,omitempty"`
	DisabledToolkits          []string             `json:"disabled_toolkits,omitempty"`
	ManuallyManageConnections bool                 `json:"manually_manage_connections,omitempty"`
}

type sessionResponse struct {
	ID      string            `json:"id"`
	UserID  string            `json:"user_id"`
	URL     string            `json:"mcp_url"`
	Token   string            `json:"token"`
	Headers map[string]string `json:"headers"`
}

func (s sessionResponse) toState() *router.SessionState {
	return &router.SessionState{
		ID:      s.ID,
		UserID:  s.UserID,
		URL:     s.URL,
		Token:   s.Token,
		Headers: s.Headers,
	}
}

// CreateSession implements router.Backend.
func (c *Client) CreateSession(ctx context.Context, req router.SessionRequest) (*router.SessionState, error) {
	path, err := expand(tplSessions, nil)
	if err != nil {
		return nil, err
	}
	body := createSessionRequest{
		UserID:                    req.UserID,
		Toolkits:                  req.Config.Toolkits,
		EnabledToolkits:           req.Config.EnabledToolkits,
		DisabledToolkits:          req.Config.DisabledToolkits,
		ManuallyManageConnections: req.Config.ManuallyManageConnections,
	}
	var resp sessionResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return resp.toState(), nil
}

// GetSession implements router.Backend.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*router.SessionState, error) {
	path, err := expand(tplSession, uritemplate.Values{"id": uritemplate.String(sessionID)})
	if err != nil {
		return nil, err
	}
	var resp sessionResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.toState(), nil
}

type sessionToolkitsResponse struct {
	Items []router.ToolkitStatus `json:"items"`
}

// ListSessionToolkits implements router.Backend.
func (c *Client) ListSessionToolkits(ctx context.Context, sessionID string) ([]router.ToolkitStatus, error) {
	path, err := expand(tplSessionToolkits, uritemplate.Values{"id": uritemplate.String(sessionID)})
	if err != nil {
		return nil, err
	}
	var resp sessionToolkitsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
