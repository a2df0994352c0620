package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/composiohq/composio-go/pkg/tool"
)

const (
	// DefaultWaitTimeout bounds WaitForConnection when the caller does not
	// supply a timeout.
	DefaultWaitTimeout = 60 * time.Second

	// DefaultPollInterval paces status polls during a wait.
	DefaultPollInterval = time.Second
)

// Backend is the auth port the manager drives. The backend owns account
// storage and the actual OAuth handshake.
type Backend interface {
	CreateConnectedAccount(ctx context.Context, userID, authConfigID string, opts InitiateOptions) (CreateResult, error)
	GetConnectedAccount(ctx context.Context, id string) (*ConnectedAccount, error)
	ListConnectedAccounts(ctx context.Context, filters ListFilters) ([]ConnectedAccount, error)
	ListAuthConfigs(ctx context.Context, toolkitSlug string) ([]AuthConfig, error)
}

// Manager creates, polls, and finalizes connected accounts.
type Manager struct {
	backend      Backend
	logger       *slog.Logger
	pollInterval time.Duration
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithPollInterval overrides the status poll pacing.
func WithPollInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) { m.pollInterval = interval }
}

// NewManager creates a Manager over the given auth backend.
func NewManager(backend Backend, opts ...ManagerOption) *Manager {
	m := &Manager{
		backend:      backend,
		logger:       slog.Default(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Request is the transient handle returned by Initiate. It is not persisted;
// it exists only for the duration of the handshake. Concurrent waits settle
// on the same terminal account.
type Request struct {
	// ID is the connected account's identifier.
	ID string

	// RedirectURL is where the user completes the handshake. Empty for
	// schemes that settle without user interaction.
	RedirectURL string

	manager *Manager

	mu      sync.Mutex
	settled *ConnectedAccount
}

// WaitForConnection blocks until the account reaches a terminal status or
// the timeout elapses. A zero timeout means DefaultWaitTimeout. Once a
// terminal account is observed it is cached: later waits return it without
// re-polling.
func (r *Request) WaitForConnection(ctx context.Context, timeout time.Duration) (*ConnectedAccount, error) {
	r.mu.Lock()
	if r.settled != nil {
		acct := r.settled
		r.mu.Unlock()
		return acct, nil
	}
	r.mu.Unlock()

	acct, err := r.manager.WaitForConnection(ctx, r.ID, timeout)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settled == nil {
		r.settled = acct
	}
	return r.settled, nil
}

// Initiate creates a connected account for userID from the given auth
// config. By default an existing ACTIVE account for the same user and auth
// config is reused instead of creating a second one; AllowMultiple opts out.
func (m *Manager) Initiate(ctx context.Context, userID, authConfigID string, opts *InitiateOptions) (*Request, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if authConfigID == "" {
		return nil, fmt.Errorf("auth config id is required")
	}

	options := InitiateOptions{}
	if opts != nil {
		options = *opts
	}

	if options.AllowMultiple {
		m.logger.Warn("initiating connection with allow_multiple enabled",
			"user_id", userID,
			"auth_config_id", authConfigID,
		)
	} else {
		existing, err := m.backend.ListConnectedAccounts(ctx, ListFilters{
			UserIDs:       []string{userID},
			AuthConfigIDs: []string{authConfigID},
			Statuses:      []Status{StatusActive},
		})
		if err != nil {
			return nil, fmt.Errorf("checking existing connections: %w", err)
		}
		if len(existing) > 0 {
			acct := existing[0]
			m.logger.Debug("reusing existing active connected account",
				"connected_account_id", acct.ID,
				"user_id", userID,
			)
			return &Request{ID: acct.ID, manager: m, settled: &acct}, nil
		}
	}

	created, err := m.backend.CreateConnectedAccount(ctx, userID, authConfigID, options)
	if err != nil {
		return nil, fmt.Errorf("creating connected account: %w", err)
	}

	req := &Request{
		ID:          created.ID,
		RedirectURL: created.RedirectURL,
		manager:     m,
	}
	if created.Status == StatusActive {
		// Immediate schemes settle without a handshake.
		acct, err := m.backend.GetConnectedAccount(ctx, created.ID)
		if err == nil && acct.Status.Terminal() {
			req.settled = acct
		}
	}
	return req, nil
}

// WaitForConnection polls the account until it reaches a terminal status or
// the timeout elapses. A zero timeout means DefaultWaitTimeout. Timing out
// raises a ConnectionTimeoutError without cancelling the remote attempt; the
// account may still become ACTIVE later, observable via Get.
func (m *Manager) WaitForConnection(ctx context.Context, connectionID string, timeout time.Duration) (*ConnectedAccount, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}

	acct, err := PollUntil(ctx, m.pollInterval, timeout,
		func(ctx context.Context) (*ConnectedAccount, error) {
			return m.backend.GetConnectedAccount(ctx, connectionID)
		},
		func(acct *ConnectedAccount) bool {
			return acct != nil && acct.Status.Terminal()
		},
	)
	if err != nil {
		if err == ErrPollTimeout {
			return nil, &tool.ConnectionTimeoutError{
				ConnectionID: connectionID,
				Message:      fmt.Sprintf("connection %s did not settle within %s", connectionID, timeout),
				Cause:        err,
			}
		}
		return nil, fmt.Errorf("polling connection %s: %w", connectionID, err)
	}
	return acct, nil
}

// Get fetches a connected account by id.
func (m *Manager) Get(ctx context.Context, id string) (*ConnectedAccount, error) {
	return m.backend.GetConnectedAccount(ctx, id)
}

// List queries connected accounts. Filter dimensions combine with AND
// semantics.
func (m *Manager) List(ctx context.Context, filters ListFilters) ([]ConnectedAccount, error) {
	return m.backend.ListConnectedAccounts(ctx, filters)
}

// AuthConfigs lists the auth configs available for a toolkit.
func (m *Manager) AuthConfigs(ctx context.Context, toolkitSlug string) ([]AuthConfig, error) {
	return m.backend.ListAuthConfigs(ctx, toolkitSlug)
}

// Authorize initiates a connection for userID against toolkitSlug without
// the caller naming an auth config. The toolkit must have exactly one auth
// config; with zero or several the caller has to pick and use Initiate.
func (m *Manager) Authorize(ctx context.Context, userID, toolkitSlug string, opts *InitiateOptions) (*Request, error) {
	if toolkitSlug == "" {
		return nil, fmt.Errorf("toolkit slug is required")
	}
	configs, err := m.backend.ListAuthConfigs(ctx, toolkitSlug)
	if err != nil {
		return nil, fmt.Errorf("listing auth configs for %s: %w", toolkitSlug, err)
	}
	switch len(configs) {
	case 0:
		return nil, fmt.Errorf("toolkit %s has no auth configs", toolkitSlug)
	case 1:
		return m.Initiate(ctx, userID, configs[0].ID, opts)
	default:
		return nil, fmt.Errorf("toolkit %s has %d auth configs, pass one to Initiate", toolkitSlug, len(configs))
	}
}

// ActiveAccount returns the user's ACTIVE connected account for a toolkit,
// or nil when none exists.
func (m *Manager) ActiveAccount(ctx context.Context, userID, toolkitSlug string) (*ConnectedAccount, error) {
	accounts, err := m.backend.ListConnectedAccounts(ctx, ListFilters{
		UserIDs:      []string{userID},
		ToolkitSlugs: []string{toolkitSlug},
		Statuses:     []Status{StatusActive},
	})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}
