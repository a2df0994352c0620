package api

import (
	"context"
	"net/http"

	"github.com/yosida95/uritemplate/v3"

	"github.com/composiohq/composio-go/pkg/triggers"
)

type triggerTypeListResponse struct {
	Items []triggers.Type `json:"items"`
}

// ListTriggerTypes implements triggers.Backend.
func (c *Client) ListTriggerTypes(ctx context.Context, toolkits []string) ([]triggers.Type, error) {
	vars := uritemplate.Values{}
	if len(toolkits) > 0 {
		vars["toolkit_slugs"] = listValue(toolkits)
	}
	path, err := expand(tplTriggerTypes, vars)
	if err != nil {
		return nil, err
	}
	var resp triggerTypeListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetTriggerType implements triggers.Backend.
func (c *Client) GetTriggerType(ctx context.Context, slug string) (*triggers.Type, error) {
	path, err := expand(tplTriggerType, uritemplate.Values{"slug": uritemplate.String(slug)})
	if err != nil {
		return nil, err
	}
	var t triggers.Type
	if err := c.get(ctx, path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

type createInstanceRequest struct {
	TriggerSlug        string         `json:"trigger_slug"`
	UserID             string         `json:"user_id"`
	ConnectedAccountID string         `json:"connected_account_id,omitempty"`
	Config             map[string]any `json:"trigger_config,omitempty"`
}

// CreateTriggerInstance implements triggers.Backend.
func (c *Client) CreateTriggerInstance(ctx context.Context, req triggers.CreateInstanceRequest) (*triggers.Instance, error) {
	path, err := expand(tplTriggerInstances, nil)
	if err != nil {
		return nil, err
	}
	body := createInstanceRequest{
		TriggerSlug:        req.TriggerSlug,
		UserID:             req.UserID,
		ConnectedAccountID: req.ConnectedAccountID,
		Config:             req.Config,
	}
	var inst triggers.Instance
	if err := c.post(ctx, path, body, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

type instanceStatusRequest struct {
	Enabled bool `json:"enabled"`
}

// SetTriggerInstanceStatus implements triggers.Backend.
func (c *Client) SetTriggerInstanceStatus(ctx context.Context, instanceID string, enabled bool) error {
	path, err := expand(tplTriggerStatus, uritemplate.Values{"id": uritemplate.String(instanceID)})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, instanceStatusRequest{Enabled: enabled}, nil)
}

// DeleteTriggerInstance implements triggers.Backend.
func (c *Client) DeleteTriggerInstance(ctx context.Context, instanceID string) error {
	path, err := expand(tplTriggerInstance, uritemplate.Values{"id": uritemplate.String(instanceID)})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type instanceListResponse struct {
	Items []triggers.Instance `json:"items"`
}

// ListTriggerInstances implements triggers.Backend.
func (c *Client) ListTriggerInstances(ctx context.Context, filters triggers.InstanceFilters) ([]triggers.Instance, error) {
	vars := uritemplate.Values{}
	if len(filters.UserIDs) > 0 {
		vars["user_ids"] = listValue(filters.UserIDs)
	}
	if len(filters.TriggerSlugs) > 0 {
		vars["trigger_slugs"] = listValue(filters.TriggerSlugs)
	}
	if len(filters.Toolkits) > 0 {
		vars["toolkit_slugs"] = listValue(filters.Toolkits)
	}
	if filters.ShowDisabled {
		vars["show_disabled"] = uritemplate.String("true")
	}
	path, err := expand(tplTriggerInstances, vars)
	if err != nil {
		return nil, err
	}
	var resp instanceListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
