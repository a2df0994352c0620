package tool

import "context"

// ProxyParameterIn names where a proxy request parameter is placed.
const (
	ProxyParameterQuery  = "query"
	ProxyParameterHeader = "header"
)

// ProxyParameter is a single query or header parameter on a proxied call.
type ProxyParameter struct {
	Name  string `json:"name"`
	In    string `json:"in"`
	Value string `json:"value"`
}

// ProxyRequest describes an authenticated HTTP call a custom tool performs
// through the backend's raw proxy, using the same connected-account context
// as the surrounding execution.
type ProxyRequest struct {
	Endpoint           string           `json:"endpoint"`
	Method             string           `json:"method"`
	Parameters         []ProxyParameter `json:"parameters,omitempty"`
	Body               map[string]any   `json:"body,omitempty"`
	ConnectedAccountID string           `json:"connected_account_id,omitempty"`
}

// ProxyExecutor performs an authenticated HTTP call on behalf of a custom
// tool. Implementations attach the resolved connected account's credential.
type ProxyExecutor func(ctx context.Context, req ProxyRequest) (ExecuteResponse, error)

// CustomToolInput is what a custom tool's closure receives on invocation.
type CustomToolInput struct {
	// Arguments are the caller's arguments, already validated against the
	// custom tool's input schema.
	Arguments map[string]any

	// UserID is the user the execution runs for.
	UserID string

	// ConnectedAccountID is the resolved connected account, when the
	// custom tool's toolkit has one for the user.
	ConnectedAccountID string

	// Credential is the connected account's credential payload, when
	// resolved. Shape depends on the auth scheme.
	Credential map[string]any

	// ExecuteRequest performs an authenticated HTTP call through the same
	// credential context. Nil when no backend transport is configured.
	ExecuteRequest ProxyExecutor
}

// CustomToolFunc is the local execution closure of a custom tool. The closure
// is held exclusively by the registry for the lifetime of the process and is
// never serialized.
type CustomToolFunc func(ctx context.Context, in CustomToolInput) (ExecuteResponse, error)

// CustomTool couples a user-defined slug and input schema with a local
// execution closure. Custom tools are spliced into catalog resolution and
// take precedence over remote tools with the same slug.
type CustomTool struct {
	Slug        string
	ToolkitSlug string
	Name        string
	Description string
	InputSchema map[string]any
	Execute     CustomToolFunc
}

// Definition renders the custom tool as a catalog Tool.
func (c CustomTool) Definition() Tool {
	return Tool{
		Slug:        c.Slug,
		ToolkitSlug: c.ToolkitSlug,
		Name:        c.Name,
		Description: c.Description,
		InputSchema: c.InputSchema,
		Custom:      true,
	}
}
