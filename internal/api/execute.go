package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/yosida95/uritemplate/v3"

	"github.com/composiohq/composio-go/pkg/tool"
)

type executeRequest struct {
	UserID             string         `json:"user_id,omitempty"`
	Arguments          map[string]any `json:"arguments"`
	ConnectedAccountID string         `json:"connected_account_id,omitempty"`
	Version            string         `json:"version,omitempty"`
}

// ExecuteTool implements the execution port. The backend performs the
// provider call and returns the uniform result envelope.
func (c *Client) ExecuteTool(ctx context.Context, slug string, req tool.ExecuteRequest) (tool.ExecuteResponse, error) {
	path, err := expand(tplExecute, uritemplate.Values{"slug": uritemplate.String(slug)})
	if err != nil {
		return tool.ExecuteResponse{}, err
	}
	body := executeRequest{
		UserID:             req.UserID,
		Arguments:          req.Arguments,
		ConnectedAccountID: req.ConnectedAccountID,
		Version:            req.Version,
	}
	var resp tool.ExecuteResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return tool.ExecuteResponse{}, err
	}
	return resp, nil
}

// ExecuteProxy performs an authenticated raw HTTP call through the backend
// proxy, attaching the connected account's credential server-side.
func (c *Client) ExecuteProxy(ctx context.Context, req tool.ProxyRequest) (tool.ExecuteResponse, error) {
	path, err := expand(tplProxy, nil)
	if err != nil {
		return tool.ExecuteResponse{}, err
	}
	var resp tool.ExecuteResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return tool.ExecuteResponse{}, err
	}
	return resp, nil
}

// DownloadFile streams a backend-hosted file. The caller owns closing the
// returned reader.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	path, err := expand(tplFileDownload, uritemplate.Values{"id": uritemplate.String(fileID)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading file %s: %w", fileID, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return resp.Body, nil
}
