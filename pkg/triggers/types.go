// Package triggers delivers trigger events to in-process subscribers and
// manages trigger instances on the backend. Events arrive over the webhook
// receiver and fan out to subscriptions in registration order.
package triggers

import (
	"context"
	"time"
)

// Event is a single trigger delivery.
type Event struct {
	// ID is the unique delivery id assigned by the backend.
	ID string `json:"id"`

	// TriggerSlug identifies the trigger type, e.g. GITHUB_STAR_ADDED_EVENT.
	TriggerSlug string `json:"triggerSlug"`

	// ToolkitSlug is the toolkit the trigger belongs to.
	ToolkitSlug string `json:"toolkitSlug"`

	// UserID is the user whose connected account produced the event.
	UserID string `json:"userId"`

	// TriggerNanoID identifies the trigger instance that fired.
	TriggerNanoID string `json:"triggerNanoId"`

	// AuthConfigID is the auth config of the originating connection.
	AuthConfigID string `json:"authConfigId"`

	// Payload is the provider-specific event body.
	Payload map[string]any `json:"payload"`

	// Timestamp is when the backend observed the event.
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives matched events. Handlers run sequentially on the
// dispatching goroutine; a slow handler delays later subscribers.
type Handler func(ctx context.Context, event Event)

// Filter selects which events a subscription receives. Dimensions combine
// with AND; values within one dimension combine with OR. A zero Filter
// matches every event.
type Filter struct {
	Toolkits           []string
	TriggerSlugs       []string
	UserIDs            []string
	TriggerInstanceIDs []string
	AuthConfigIDs      []string
}

// Matches reports whether the event passes every populated dimension.
func (f Filter) Matches(e Event) bool {
	return matchDim(f.Toolkits, e.ToolkitSlug) &&
		matchDim(f.TriggerSlugs, e.TriggerSlug) &&
		matchDim(f.UserIDs, e.UserID) &&
		matchDim(f.TriggerInstanceIDs, e.TriggerNanoID) &&
		matchDim(f.AuthConfigIDs, e.AuthConfigID)
}

func matchDim(allowed []string, got string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, v := range allowed {
		if v == got {
			return true
		}
	}
	return false
}

// Type describes a trigger type available in the catalog.
type Type struct {
	Slug        string         `json:"slug"`
	ToolkitSlug string         `json:"toolkitSlug"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
	Payload     map[string]any `json:"payload"`
}

// Instance is a provisioned trigger bound to a user's connected account.
type Instance struct {
	ID                 string         `json:"id"`
	TriggerSlug        string         `json:"triggerSlug"`
	ToolkitSlug        string         `json:"toolkitSlug"`
	UserID             string         `json:"userId"`
	ConnectedAccountID string         `json:"connectedAccountId"`
	Config             map[string]any `json:"config"`
	Enabled            bool           `json:"enabled"`
}

// CreateInstanceRequest provisions a trigger instance for a user.
type CreateInstanceRequest struct {
	TriggerSlug        string         `json:"triggerSlug"`
	UserID             string         `json:"userId"`
	ConnectedAccountID string         `json:"connectedAccountId,omitempty"`
	Config             map[string]any `json:"config,omitempty"`
}

// InstanceFilters narrows ListInstances. Empty fields match everything.
type InstanceFilters struct {
	UserIDs      []string
	TriggerSlugs []string
	Toolkits     []string
	ShowDisabled bool
}

// Backend is the trigger management port.
type Backend interface {
	ListTriggerTypes(ctx context.Context, toolkits []string) ([]Type, error)
	GetTriggerType(ctx context.Context, slug string) (*Type, error)
	CreateTriggerInstance(ctx context.Context, req CreateInstanceRequest) (*Instance, error)
	SetTriggerInstanceStatus(ctx context.Context, instanceID string, enabled bool) error
	DeleteTriggerInstance(ctx context.Context, instanceID string) error
	ListTriggerInstances(ctx context.Context, filters InstanceFilters) ([]Instance, error)
}
