package router

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/composiohq/composio-go/pkg/connection"
)

// Session is a live Tool Router session. The zero value is not usable;
// sessions come from Manager.Create or Manager.Get.
type Session struct {
	state   *SessionState
	manager *Manager
}

func newSession(state *SessionState, manager *Manager) *Session {
	return &Session{state: state, manager: manager}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.state.ID }

// UserID returns the user the session is scoped to.
func (s *Session) UserID() string { return s.state.UserID }

// MCPURL returns the hosted MCP endpoint URL. The URL embeds the session
// capability; treat it like a credential.
func (s *Session) MCPURL() string { return s.state.URL }

// Headers returns the headers an MCP client must send to the session
// endpoint, including the bearer token when one was issued.
func (s *Session) Headers() map[string]string {
	out := make(map[string]string, len(s.state.Headers)+1)
	for k, v := range s.state.Headers {
		out[k] = v
	}
	if s.state.Token != "" {
		out["Authorization"] = "Bearer " + s.state.Token
	}
	return out
}

// ExpiresAt reports when the session token expires. The token is decoded
// without signature verification, only to read the expiry claim; the
// backend remains the authority on token validity.
func (s *Session) ExpiresAt() (time.Time, bool) {
	if s.state.Token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.state.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the session token's expiry has passed. A session
// with no readable expiry is reported as not expired.
func (s *Session) Expired() bool {
	exp, ok := s.ExpiresAt()
	return ok && time.Now().After(exp)
}

// Toolkits reports the connection status of each toolkit in the session.
func (s *Session) Toolkits(ctx context.Context) ([]ToolkitStatus, error) {
	return s.manager.backend.ListSessionToolkits(ctx, s.state.ID)
}

// Authorize starts a connection flow for one of the session's toolkits on
// behalf of the session user. Used with ManuallyManageConnections to drive
// authorization outside the agent conversation.
func (s *Session) Authorize(ctx context.Context, toolkitSlug string, opts *connection.InitiateOptions) (*connection.Request, error) {
	if s.manager.connections == nil {
		return nil, fmt.Errorf("no connection manager configured for session authorization")
	}
	statuses, err := s.Toolkits(ctx)
	if err != nil {
		return nil, err
	}
	var authConfigID string
	for _, st := range statuses {
		if st.Slug == toolkitSlug {
			authConfigID = st.AuthConfigID
			break
		}
	}
	if authConfigID == "" {
		return nil, fmt.Errorf("toolkit %s is not part of session %s", toolkitSlug, s.state.ID)
	}

	return s.manager.connections.Initiate(ctx, s.state.UserID, authConfigID, opts)
}
