// Package connection manages the connected-account lifecycle: initiating a
// connection, waiting for the OAuth-style handshake to settle, and querying
// established accounts.
package connection

import "time"

// Status is a connected account's lifecycle state. Transitions run
// INITIATED → PENDING → {ACTIVE | FAILED | EXPIRED}; ACTIVE, FAILED, and
// EXPIRED are terminal.
type Status string

const (
	StatusInitiated Status = "INITIATED"
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusFailed    Status = "FAILED"
	StatusExpired   Status = "EXPIRED"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusActive || s == StatusFailed || s == StatusExpired
}

// Auth schemes an auth config may use.
const (
	AuthSchemeOAuth2      = "OAUTH2"
	AuthSchemeAPIKey      = "API_KEY"
	AuthSchemeBearerToken = "BEARER_TOKEN"
	AuthSchemeBasic       = "BASIC"
)

// Auth config ownership types.
const (
	AuthConfigManaged = "COMPOSIO_MANAGED"
	AuthConfigCustom  = "CUSTOM"
)

// ConnectedAccount binds a user to a toolkit through a stored credential.
// UserID is an opaque external identifier, not necessarily a UUID.
type ConnectedAccount struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	AuthConfigID string         `json:"auth_config_id"`
	ToolkitSlug  string         `json:"toolkit_slug,omitempty"`
	Status       Status         `json:"status"`
	Data         map[string]any `json:"data,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AuthConfig is a reusable authorization template connected accounts are
// created from. Credentials may be empty for managed auth.
type AuthConfig struct {
	ID          string         `json:"id"`
	ToolkitSlug string         `json:"toolkit_slug"`
	Name        string         `json:"name,omitempty"`
	Type        string         `json:"type"`
	AuthScheme  string         `json:"auth_scheme"`
	Credentials map[string]any `json:"credentials,omitempty"`
}

// InitiateOptions tune connection creation.
type InitiateOptions struct {
	// Config supplies the credential directly for immediate schemes
	// (API key, bearer, basic). The account may then transition straight
	// to ACTIVE without a redirect.
	Config map[string]any

	// CallbackURL overrides the post-handshake redirect target.
	CallbackURL string

	// AllowMultiple permits a second connection to the same auth config
	// for the same user. The default reuses the existing ACTIVE account.
	// Opting in is logged at warning level.
	AllowMultiple bool
}

// ListFilters narrow a connected-account listing. Dimensions combine with
// AND semantics; values within one dimension combine with OR.
type ListFilters struct {
	UserIDs       []string
	AuthConfigIDs []string
	ToolkitSlugs  []string
	Statuses      []Status
}

// CreateResult is the backend's answer to a connection initiation.
// RedirectURL is present only for schemes requiring user interaction.
type CreateResult struct {
	ID          string
	RedirectURL string
	Status      Status
}
