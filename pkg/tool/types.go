// Package tool provides shared types for tool resolution and execution. This
// package has zero internal dependencies to avoid import cycles between the
// catalog resolver, the execution engine, and the provider adapters that all
// exchange these types.
package tool

import "time"

// Tool is a single invocable action resolved from the backend catalog or from
// a locally registered custom tool. A Tool is immutable once resolved for an
// execution; re-resolution replaces it, nothing mutates it in place.
type Tool struct {
	// Slug uniquely identifies the tool, uppercase by convention
	// (e.g. "GITHUB_LIST_STARGAZERS").
	Slug string `json:"slug"`

	// ToolkitSlug names the toolkit the tool belongs to (e.g. "github").
	ToolkitSlug string `json:"toolkit_slug"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Description explains what the tool does, suitable for LLM consumption.
	Description string `json:"description"`

	// InputSchema is the JSON Schema describing the tool's arguments.
	InputSchema map[string]any `json:"input_schema"`

	// OutputSchema is the JSON Schema describing the tool's result data.
	OutputSchema map[string]any `json:"output_schema,omitempty"`

	// Version is the toolkit-scoped version the tool was resolved at.
	Version string `json:"version,omitempty"`

	// Scopes lists the authorization scopes the tool requires.
	Scopes []string `json:"scopes,omitempty"`

	// Custom is true when the tool is backed by a locally registered
	// closure rather than the remote catalog.
	Custom bool `json:"custom,omitempty"`
}

// ToolkitVersion describes one published version of a toolkit.
type ToolkitVersion struct {
	Version   string    `json:"version"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Toolkit is catalog metadata for a named collection of tools.
type Toolkit struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	AuthSchemes []string `json:"auth_schemes,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// ExecuteResponse is the uniform result envelope for every tool execution,
// remote or custom. Successful reports whether the underlying action
// succeeded; Error carries the failure message when it did not.
type ExecuteResponse struct {
	Data       map[string]any `json:"data"`
	Error      string         `json:"error,omitempty"`
	Successful bool           `json:"successful"`
}

// ExecuteRequest carries the caller-supplied inputs for a single execution.
type ExecuteRequest struct {
	// UserID identifies the user the tool acts on behalf of.
	UserID string

	// Arguments are validated against the tool's input schema before
	// anything is dispatched.
	Arguments map[string]any

	// ConnectedAccountID pins the execution to a specific connected
	// account. When empty, the engine resolves the user's account for the
	// tool's toolkit.
	ConnectedAccountID string

	// Version overrides the resolved toolkit version for this execution.
	Version string

	// DangerouslySkipVersionCheck bypasses version resolution entirely.
	// Opting in is logged at warning level.
	DangerouslySkipVersionCheck bool
}
