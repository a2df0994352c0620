package triggers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Subscription is a live event subscription. Disable stops delivery without
// removing the subscription; Close removes it permanently.
type Subscription struct {
	id      string
	filter  Filter
	handler Handler

	mu      sync.Mutex
	enabled bool
	manager *Manager
}

// ID returns the subscription's identifier.
func (s *Subscription) ID() string { return s.id }

// Enabled reports whether the subscription currently receives events.
func (s *Subscription) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Disable pauses delivery. Events dispatched while disabled are not
// replayed on re-enable.
func (s *Subscription) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

// Enable resumes delivery.
func (s *Subscription) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
}

// Close removes the subscription from its manager.
func (s *Subscription) Close() {
	s.Disable()
	if s.manager != nil {
		s.manager.remove(s.id)
	}
}

// Manager fans incoming events out to subscriptions and drives trigger
// instance management through the backend port.
type Manager struct {
	backend Backend
	logger  *slog.Logger

	mu   sync.RWMutex
	subs []*Subscription
}

// NewManager creates a Manager. backend may be nil when only local event
// dispatch is needed.
func NewManager(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, logger: logger}
}

// Subscribe registers a handler for events matching filter. Subscriptions
// receive events in the order they were registered.
func (m *Manager) Subscribe(filter Filter, handler Handler) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		filter:  filter,
		handler: handler,
		enabled: true,
		manager: m,
	}
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
	return sub
}

// Dispatch delivers event to every enabled matching subscription,
// sequentially and in registration order.
func (m *Manager) Dispatch(ctx context.Context, event Event) {
	m.mu.RLock()
	subs := make([]*Subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.RUnlock()

	for _, sub := range subs {
		if !sub.Enabled() || !sub.filter.Matches(event) {
			continue
		}
		sub.handler(ctx, event)
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subs {
		if sub.id == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return
		}
	}
}

// Types lists trigger types, optionally filtered by toolkit.
func (m *Manager) Types(ctx context.Context, toolkits ...string) ([]Type, error) {
	return m.backend.ListTriggerTypes(ctx, toolkits)
}

// GetType fetches a single trigger type by slug.
func (m *Manager) GetType(ctx context.Context, slug string) (*Type, error) {
	return m.backend.GetTriggerType(ctx, slug)
}

// Create provisions a trigger instance for a user.
func (m *Manager) Create(ctx context.Context, req CreateInstanceRequest) (*Instance, error) {
	if req.TriggerSlug == "" {
		return nil, fmt.Errorf("trigger slug is required")
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	inst, err := m.backend.CreateTriggerInstance(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating trigger instance: %w", err)
	}
	m.logger.Info("trigger instance created",
		"trigger", req.TriggerSlug,
		"user_id", req.UserID,
		"instance_id", inst.ID,
	)
	return inst, nil
}

// EnableInstance resumes event production for a provisioned instance.
func (m *Manager) EnableInstance(ctx context.Context, instanceID string) error {
	return m.backend.SetTriggerInstanceStatus(ctx, instanceID, true)
}

// DisableInstance stops event production without deleting the instance.
func (m *Manager) DisableInstance(ctx context.Context, instanceID string) error {
	return m.backend.SetTriggerInstanceStatus(ctx, instanceID, false)
}

// DeleteInstance removes a provisioned instance.
func (m *Manager) DeleteInstance(ctx context.Context, instanceID string) error {
	return m.backend.DeleteTriggerInstance(ctx, instanceID)
}

// Instances lists provisioned trigger instances.
func (m *Manager) Instances(ctx context.Context, filters InstanceFilters) ([]Instance, error) {
	return m.backend.ListTriggerInstances(ctx, filters)
}
