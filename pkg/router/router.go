// Package router manages Tool Router sessions. A session provisions a
// hosted MCP endpoint scoped to one user; agents connect to the session URL
// and discover tools dynamically instead of receiving a fixed list up front.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/composiohq/composio-go/pkg/connection"
	"github.com/composiohq/composio-go/pkg/tool"
)

// ToolkitSpec pins a toolkit into a session, optionally with a specific
// auth config to authorize against.
type ToolkitSpec struct {
	Slug         string `json:"slug"`
	AuthConfigID string `json:"authConfigId,omitempty"`
}

// SessionConfig shapes which toolkits a session exposes. Toolkits,
// EnabledToolkits, and DisabledToolkits are mutually exclusive ways of
// scoping the session; at most one may be set.
type SessionConfig struct {
	// Toolkits pins the session to exactly these toolkits.
	Toolkits []ToolkitSpec

	// EnabledToolkits restricts the session to the named toolkit slugs.
	EnabledToolkits []string

	// DisabledToolkits exposes everything except the named toolkit slugs.
	DisabledToolkits []string

	// ManuallyManageConnections disables in-session connection prompts.
	// The caller is then responsible for authorizing toolkits through
	// Session.Authorize or the connection manager. The default, false,
	// leaves connection management to the session itself.
	ManuallyManageConnections bool
}

// Validate enforces toolkit scoping exclusivity.
func (c SessionConfig) Validate() error {
	set := 0
	if len(c.Toolkits) > 0 {
		set++
	}
	if len(c.EnabledToolkits) > 0 {
		set++
	}
	if len(c.DisabledToolkits) > 0 {
		set++
	}
	if set > 1 {
		return &tool.InvalidSessionConfigError{
			Message: "toolkits, enabledToolkits, and disabledToolkits are mutually exclusive",
		}
	}
	return nil
}

// SessionRequest is the wire request to provision a session.
type SessionRequest struct {
	UserID string
	Config SessionConfig
}

// SessionState is the backend's view of a provisioned session. URL and
// Headers together are the capability credential for the hosted MCP
// endpoint and must be treated as secrets.
type SessionState struct {
	ID      string
	UserID  string
	URL     string
	Token   string
	Headers map[string]string
}

// ToolkitStatus reports one toolkit's connection state within a session.
type ToolkitStatus struct {
	Slug               string `json:"slug"`
	Connected          bool   `json:"connected"`
	AuthConfigID       string `json:"authConfigId,omitempty"`
	ConnectedAccountID string `json:"connectedAccountId,omitempty"`
}

// Backend is the Tool Router port.
type Backend interface {
	CreateSession(ctx context.Context, req SessionRequest) (*SessionState, error)
	GetSession(ctx context.Context, sessionID string) (*SessionState, error)
	ListSessionToolkits(ctx context.Context, sessionID string) ([]ToolkitStatus, error)
}

// Manager creates and rehydrates Tool Router sessions.
type Manager struct {
	backend     Backend
	connections *connection.Manager
	logger      *slog.Logger
}

// NewManager creates a Manager. connections may be nil when session-side
// authorization is not needed.
func NewManager(backend Backend, connections *connection.Manager, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, connections: connections, logger: logger}
}

// Create provisions a session for userID. The returned session's URL and
// headers are capability credentials; they are never logged here.
func (m *Manager) Create(ctx context.Context, userID string, cfg SessionConfig) (*Session, error) {
	if userID == "" {
		return nil, &tool.InvalidSessionConfigError{Message: "user id is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	state, err := m.backend.CreateSession(ctx, SessionRequest{UserID: userID, Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("creating tool router session: %w", err)
	}
	m.logger.Info("tool router session created",
		"session_id", state.ID,
		"user_id", userID,
	)
	return newSession(state, m), nil
}

// Get rehydrates an existing session by id.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	state, err := m.backend.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetching tool router session %s: %w", sessionID, err)
	}
	return newSession(state, m), nil
}
