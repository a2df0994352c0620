// Package client is the top-level entry point. A Composio instance wires
// the catalog resolver, execution engine, connection manager, trigger
// manager, and tool router over one backend transport.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/composiohq/composio-go/internal/api"
	"github.com/composiohq/composio-go/pkg/catalog"
	"github.com/composiohq/composio-go/pkg/connection"
	"github.com/composiohq/composio-go/pkg/executor"
	"github.com/composiohq/composio-go/pkg/modifiers"
	"github.com/composiohq/composio-go/pkg/provider"
	"github.com/composiohq/composio-go/pkg/registry"
	"github.com/composiohq/composio-go/pkg/router"
	"github.com/composiohq/composio-go/pkg/tool"
	"github.com/composiohq/composio-go/pkg/triggers"
	"github.com/composiohq/composio-go/pkg/version"
)

// Environment variables the client reads when options are not supplied.
const (
	EnvAPIKey  = "COMPOSIO_API_KEY"
	EnvBaseURL = "COMPOSIO_BASE_URL"
)

// Options configures a Composio instance.
type Options struct {
	// APIKey authenticates against the backend. Falls back to
	// COMPOSIO_API_KEY.
	APIKey string

	// BaseURL overrides the backend endpoint. Falls back to
	// COMPOSIO_BASE_URL, then the hosted default.
	BaseURL string

	// Logger is the structured logger shared by every component.
	Logger *slog.Logger

	// HTTPClient overrides the transport's underlying client.
	HTTPClient *http.Client

	// ToolkitVersions pins toolkit versions ahead of the environment.
	ToolkitVersions map[string]string
}

// Option is a functional option for configuring the client.
type Option func(*Options)

// WithAPIKey sets the backend API key.
func WithAPIKey(key string) Option {
	return func(o *Options) { o.APIKey = key }
}

// WithBaseURL overrides the backend endpoint.
func WithBaseURL(url string) Option {
	return func(o *Options) { o.BaseURL = url }
}

// WithLogger sets the shared logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithHTTPClient overrides the transport's HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(o *Options) { o.HTTPClient = h }
}

// WithToolkitVersions pins toolkit versions for resolution and execution.
func WithToolkitVersions(pins map[string]string) Option {
	return func(o *Options) { o.ToolkitVersions = pins }
}

// Composio bundles every manager over one backend transport.
type Composio struct {
	api         *api.Client
	logger      *slog.Logger
	registry    *registry.Registry
	versions    *version.Resolver
	pipeline    *modifiers.Pipeline
	catalog     *catalog.Resolver
	connections *connection.Manager
	engine      *executor.Engine
	triggers    *triggers.Manager
	router      *router.Manager
}

// New creates a fully wired client.
func New(opts ...Option) (*Composio, error) {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.APIKey == "" {
		options.APIKey = os.Getenv(EnvAPIKey)
	}
	if options.APIKey == "" {
		return nil, fmt.Errorf("api key is required: set %s or use WithAPIKey", EnvAPIKey)
	}
	if options.BaseURL == "" {
		options.BaseURL = os.Getenv(EnvBaseURL)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	apiOpts := []api.Option{api.WithLogger(options.Logger)}
	if options.HTTPClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(options.HTTPClient))
	}
	transport := api.New(options.BaseURL, options.APIKey, apiOpts...)

	c := &Composio{
		api:      transport,
		logger:   options.Logger,
		registry: registry.NewRegistry(options.Logger),
		versions: version.NewResolver(version.WithPins(options.ToolkitVersions)),
		pipeline: modifiers.NewPipeline(),
	}
	c.catalog = catalog.NewResolver(transport, c.registry, c.versions, c.pipeline, options.Logger)
	c.connections = connection.NewManager(transport, connection.WithLogger(options.Logger))
	c.engine = executor.NewEngine(transport, c.catalog, c.registry, c.versions, c.connections, c.pipeline,
		executor.WithEngineLogger(options.Logger))
	c.triggers = triggers.NewManager(transport, options.Logger)
	c.router = router.NewManager(transport, c.connections, options.Logger)
	return c, nil
}

// Tools resolves tool definitions for a query. userID may be empty for
// definition-only introspection.
func (c *Composio) Tools(ctx context.Context, userID string, q tool.Query) ([]tool.Tool, error) {
	return c.catalog.Resolve(ctx, userID, q)
}

// GetTool resolves one tool by slug at an optional toolkit version.
func (c *Composio) GetTool(ctx context.Context, slug, toolkitVersion string) (tool.Tool, error) {
	return c.catalog.ResolveSlug(ctx, slug, toolkitVersion)
}

// Toolkits lists catalog toolkits.
func (c *Composio) Toolkits(ctx context.Context) ([]tool.Toolkit, error) {
	return c.catalog.Toolkits(ctx)
}

// GetToolkit fetches one toolkit's metadata.
func (c *Composio) GetToolkit(ctx context.Context, slug string) (*tool.Toolkit, error) {
	return c.catalog.GetToolkit(ctx, slug)
}

// ToolkitVersions lists a toolkit's published versions.
func (c *Composio) ToolkitVersions(ctx context.Context, toolkitSlug string) ([]tool.ToolkitVersion, error) {
	return c.catalog.ToolkitVersions(ctx, toolkitSlug)
}

// Execute runs one tool by slug.
func (c *Composio) Execute(ctx context.Context, slug string, req tool.ExecuteRequest) (tool.ExecuteResponse, error) {
	return c.engine.Execute(ctx, slug, req)
}

// Proxy performs a raw authenticated call through the backend.
func (c *Composio) Proxy(ctx context.Context, req tool.ProxyRequest) (tool.ExecuteResponse, error) {
	return c.engine.Proxy(ctx, req)
}

// RegisterTool adds a custom tool to the local registry. Registered tools
// take precedence over catalog tools with the same slug.
func (c *Composio) RegisterTool(ct tool.CustomTool) error {
	return c.registry.Register(ct)
}

// RegisterToolFunc adds a custom tool whose input schema is derived from
// the Args type parameter via reflection.
func RegisterToolFunc[Args any](c *Composio, ct tool.CustomTool, fn func(ctx context.Context, args Args, in tool.CustomToolInput) (tool.ExecuteResponse, error)) error {
	return registry.RegisterFunc(c.registry, ct, fn)
}

// UseSchemaModifier appends a schema hook applied to every resolved tool.
func (c *Composio) UseSchemaModifier(m modifiers.SchemaModifier) {
	c.pipeline.UseSchema(m)
}

// UseBeforeExecute appends a hook applied to arguments before dispatch.
func (c *Composio) UseBeforeExecute(m modifiers.BeforeExecute) {
	c.pipeline.UseBefore(m)
}

// UseAfterExecute appends a hook applied to every execution result.
func (c *Composio) UseAfterExecute(m modifiers.AfterExecute) {
	c.pipeline.UseAfter(m)
}

// Connections returns the connected-account manager.
func (c *Composio) Connections() *connection.Manager { return c.connections }

// Authorize starts a connection for userID against a toolkit with a single
// auth config. Shorthand for Connections().Authorize.
func (c *Composio) Authorize(ctx context.Context, userID, toolkitSlug string) (*connection.Request, error) {
	return c.connections.Authorize(ctx, userID, toolkitSlug, nil)
}

// Triggers returns the trigger manager.
func (c *Composio) Triggers() *triggers.Manager { return c.triggers }

// ToolRouter returns the tool router session manager.
func (c *Composio) ToolRouter() *router.Manager { return c.router }

// Registry returns the custom tool registry.
func (c *Composio) Registry() *registry.Registry { return c.registry }

// ExecuteFunc exposes the engine as the dispatch function provider adapters
// consume.
func (c *Composio) ExecuteFunc() provider.ExecuteFunc {
	return c.engine.Execute
}

// WebhookHandler returns an http.Handler that verifies signed trigger
// deliveries and dispatches them to this client's subscriptions.
func (c *Composio) WebhookHandler(secret string) http.Handler {
	return triggers.NewWebhookHandler(secret, c.triggers, triggers.WithWebhookLogger(c.logger))
}
