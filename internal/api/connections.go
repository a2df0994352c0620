package api

import (
	"context"

	"github.com/yosida95/uritemplate/v3"

	"github.com/composiohq/composio-go/pkg/connection"
)

type createAccountRequest struct {
	UserID        string         `json:"user_id"`
	AuthConfigID  string         `json:"auth_config_id"`
	Config        map[string]any `json:"config,omitempty"`
	CallbackURL   string         `json:"callback_url,omitempty"`
	AllowMultiple bool           `json:"allow_multiple,omitempty"`
}

type createAccountResponse struct {
	ID          string            `json:"id"`
	RedirectURL string            `json:"redirect_url"`
	Status      connection.Status `json:"status"`
}

// CreateConnectedAccount implements connection.Backend.
func (c *Client) CreateConnectedAccount(ctx context.Context, userID, authConfigID string, opts connection.InitiateOptions) (connection.CreateResult, error) {
	path, err := expand(tplAccounts, nil)
	if err != nil {
		return connection.CreateResult{}, err
	}
	req := createAccountRequest{
		UserID:        userID,
		AuthConfigID:  authConfigID,
		Config:        opts.Config,
		CallbackURL:   opts.CallbackURL,
		AllowMultiple: opts.AllowMultiple,
	}
	var resp createAccountResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return connection.CreateResult{}, err
	}
	return connection.CreateResult{
		ID:          resp.ID,
		RedirectURL: resp.RedirectURL,
		Status:      resp.Status,
	}, nil
}

// GetConnectedAccount implements connection.Backend.
func (c *Client) GetConnectedAccount(ctx context.Context, id string) (*connection.ConnectedAccount, error) {
	path, err := expand(tplAccount, uritemplate.Values{"id": uritemplate.String(id)})
	if err != nil {
		return nil, err
	}
	var acct connection.ConnectedAccount
	if err := c.get(ctx, path, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

type accountListResponse struct {
	Items []connection.ConnectedAccount `json:"items"`
}

// ListConnectedAccounts implements connection.Backend.
func (c *Client) ListConnectedAccounts(ctx context.Context, filters connection.ListFilters) ([]connection.ConnectedAccount, error) {
	vars := uritemplate.Values{}
	if len(filters.UserIDs) > 0 {
		vars["user_ids"] = listValue(filters.UserIDs)
	}
	if len(filters.AuthConfigIDs) > 0 {
		vars["auth_config_ids"] = listValue(filters.AuthConfigIDs)
	}
	if len(filters.ToolkitSlugs) > 0 {
		vars["toolkit_slugs"] = listValue(filters.ToolkitSlugs)
	}
	if len(filters.Statuses) > 0 {
		statuses := make([]string, len(filters.Statuses))
		for i, s := range filters.Statuses {
			statuses[i] = string(s)
		}
		vars["statuses"] = listValue(statuses)
	}
	path, err := expand(tplAccounts, vars)
	if err != nil {
		return nil, err
	}
	var resp accountListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

type authConfigListResponse struct {
	Items []connection.AuthConfig `json:"items"`
}

// ListAuthConfigs implements connection.Backend.
func (c *Client) ListAuthConfigs(ctx context.Context, toolkitSlug string) ([]connection.AuthConfig, error) {
	vars := uritemplate.Values{}
	if toolkitSlug != "" {
		vars["toolkit_slug"] = uritemplate.String(toolkitSlug)
	}
	path, err := expand(tplAuthConfigs, vars)
	if err != nil {
		return nil, err
	}
	var resp authConfigListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
