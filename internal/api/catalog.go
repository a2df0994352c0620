package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yosida95/uritemplate/v3"

	"github.com/composiohq/composio-go/pkg/catalog"
	"github.com/composiohq/composio-go/pkg/tool"
)

type toolListResponse struct {
	Items []toolItem `json:"items"`
}

type toolItem struct {
	Slug         string         `json:"slug"`
	ToolkitSlug  string         `json:"toolkit_slug"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"input_parameters"`
	OutputSchema map[string]any `json:"output_parameters"`
	Version      string         `json:"version"`
	Scopes       []string       `json:"scopes"`
}

func (t toolItem) toTool() tool.Tool {
	return tool.Tool{
		Slug:         t.Slug,
		ToolkitSlug:  t.ToolkitSlug,
		Name:         t.Name,
		Description:  t.Description,
		InputSchema:  t.InputSchema,
		OutputSchema: t.OutputSchema,
		Version:      t.Version,
		Scopes:       t.Scopes,
	}
}

// ListTools implements catalog.Backend.
func (c *Client) ListTools(ctx context.Context, params catalog.Params) ([]tool.Tool, error) {
	vars := uritemplate.Values{}
	if len(params.Slugs) > 0 {
		vars["tool_slugs"] = listValue(params.Slugs)
	}
	if len(params.Toolkits) > 0 {
		vars["toolkits"] = listValue(versionedToolkits(params.Toolkits, params.Versions))
	}
	if params.Search != "" {
		search := params.Search
		if params.SearchToolkit != "" {
			vars["toolkits"] = listValue([]string{params.SearchToolkit})
		}
		vars["search"] = uritemplate.String(search)
	}
	if len(params.Scopes) > 0 {
		vars["scopes"] = listValue(params.Scopes)
	}
	if params.Limit > 0 {
		vars["limit"] = uritemplate.String(strconv.Itoa(params.Limit))
	}

	path, err := expand(tplTools, vars)
	if err != nil {
		return nil, err
	}
	var resp toolListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	out := make([]tool.Tool, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, item.toTool())
	}
	return out, nil
}

// versionedToolkits renders each toolkit as "slug" or "slug@version" so one
// query can pin versions per toolkit.
func versionedToolkits(toolkits []string, versions map[string]string) []string {
	out := make([]string, 0, len(toolkits))
	for _, tk := range toolkits {
		if v, ok := versions[tk]; ok && v != "" {
			out = append(out, fmt.Sprintf("%s@%s", tk, v))
			continue
		}
		out = append(out, tk)
	}
	return out
}

// GetTool implements catalog.Backend.
func (c *Client) GetTool(ctx context.Context, slug, toolkitVersion string) (*tool.Tool, error) {
	vars := uritemplate.Values{"slug": uritemplate.String(slug)}
	if toolkitVersion != "" {
		vars["toolkit_version"] = uritemplate.String(toolkitVersion)
	}
	path, err := expand(tplTool, vars)
	if err != nil {
		return nil, err
	}
	var item toolItem
	if err := c.get(ctx, path, &item); err != nil {
		return nil, err
	}
	t := item.toTool()
	return &t, nil
}

type toolkitListResponse struct {
	Items []tool.Toolkit `json:"items"`
}

// ListToolkits implements catalog.Backend.
func (c *Client) ListToolkits(ctx context.Context) ([]tool.Toolkit, error) {
	path, err := expand(tplToolkits, nil)
	if err != nil {
		return nil, err
	}
	var resp toolkitListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetToolkit implements catalog.Backend.
func (c *Client) GetToolkit(ctx context.Context, slug string) (*tool.Toolkit, error) {
	path, err := expand(tplToolkit, uritemplate.Values{"slug": uritemplate.String(slug)})
	if err != nil {
		return nil, err
	}
	var tk tool.Toolkit
	if err := c.get(ctx, path, &tk); err != nil {
		return nil, err
	}
	return &tk, nil
}

type toolkitVersionsResponse struct {
	Items []tool.ToolkitVersion `json:"items"`
}

// ListToolkitVersions implements catalog.Backend.
func (c *Client) ListToolkitVersions(ctx context.Context, toolkitSlug string) ([]tool.ToolkitVersion, error) {
	path, err := expand(tplToolkitVersions, uritemplate.Values{"slug": uritemplate.String(toolkitSlug)})
	if err != nil {
		return nil, err
	}
	var resp toolkitVersionsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
