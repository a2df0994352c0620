// Package executor runs tools. It resolves the definition, validates
// arguments, applies modifier hooks, and dispatches either to the backend or
// to a locally registered custom tool. Every execution, success or failure,
// yields the uniform ExecuteResponse envelope. The engine never retries.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/composiohq/composio-go/pkg/catalog"
	"github.com/composiohq/composio-go/pkg/connection"
	"github.com/composiohq/composio-go/pkg/modifiers"
	"github.com/composiohq/composio-go/pkg/registry"
	"github.com/composiohq/composio-go/pkg/schema"
	"github.com/composiohq/composio-go/pkg/tool"
	"github.com/composiohq/composio-go/pkg/version"
)

// Backend is the execution port. DownloadFile feeds result-side file
// materialization.
type Backend interface {
	ExecuteTool(ctx context.Context, slug string, req tool.ExecuteRequest) (tool.ExecuteResponse, error)
	ExecuteProxy(ctx context.Context, req tool.ProxyRequest) (tool.ExecuteResponse, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Engine executes tools against the backend and the custom tool registry.
type Engine struct {
	backend     Backend
	catalog     *catalog.Resolver
	registry    *registry.Registry
	versions    *version.Resolver
	connections *connection.Manager
	pipeline    *modifiers.Pipeline
	files       *FileConverter
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithFileConverter overrides file argument and result handling.
func WithFileConverter(fc *FileConverter) EngineOption {
	return func(e *Engine) { e.files = fc }
}

// NewEngine wires an execution engine. registry, versions, connections, and
// pipeline may be nil; the corresponding stage degrades to a no-op.
func NewEngine(backend Backend, cat *catalog.Resolver, reg *registry.Registry, versions *version.Resolver, conns *connection.Manager, pipeline *modifiers.Pipeline, opts ...EngineOption) *Engine {
	e := &Engine{
		backend:     backend,
		catalog:     cat,
		registry:    reg,
		versions:    versions,
		connections: conns,
		pipeline:    pipeline,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.files == nil {
		e.files = NewFileConverter(backend, nil, "")
	}
	return e
}

// Execute runs one tool by slug. The request is dispatched at most once;
// failed executions surface as an envelope with Successful set to false, and
// engine-level faults (resolution, validation, transport) return an error.
func (e *Engine) Execute(ctx context.Context, slug string, req tool.ExecuteRequest) (tool.ExecuteResponse, error) {
	requestID := uuid.NewString()
	log := e.logger.With("request_id", requestID, "tool", slug, "user_id", req.UserID)

	def, resolvedVersion, err := e.resolve(ctx, slug, req, log)
	if err != nil {
		return tool.ExecuteResponse{}, err
	}

	if err := schema.ValidateArguments(def.InputSchema, req.Arguments); err != nil {
		return tool.ExecuteResponse{}, &tool.ArgumentValidationError{
			ToolSlug: slug,
			Message:  "arguments do not satisfy the tool's input schema",
			Cause:    err,
		}
	}

	tc := modifiers.ToolContext{Slug: def.Slug, ToolkitSlug: def.ToolkitSlug}
	args := req.Arguments
	if e.pipeline != nil {
		args, err = e.pipeline.ApplyBefore(ctx, tc, args)
		if err != nil {
			return tool.ExecuteResponse{}, fmt.Errorf("before-execute modifier for %s: %w", slug, err)
		}
	}

	args, err = e.files.encodeArguments(ctx, def.InputSchema, args)
	if err != nil {
		return tool.ExecuteResponse{}, &tool.ArgumentValidationError{
			ToolSlug: slug,
			Message:  "preparing file arguments",
			Cause:    err,
		}
	}
	req.Arguments = args

	var resp tool.ExecuteResponse
	if def.Custom {
		resp, err = e.executeCustom(ctx, def, req, log)
	} else {
		req.Version = resolvedVersion
		resp, err = e.backend.ExecuteTool(ctx, slug, req)
	}
	if err != nil {
		return tool.ExecuteResponse{}, &tool.ExecutionError{
			ToolSlug: slug,
			Message:  "tool execution failed",
			Cause:    err,
		}
	}

	resp.Data, err = e.files.materializeResults(ctx, resp.Data)
	if err != nil {
		log.Warn("failed to materialize result files", "error", err)
	}

	if e.pipeline != nil {
		resp, err = e.pipeline.ApplyAfter(ctx, tc, resp)
		if err != nil {
			return tool.ExecuteResponse{}, fmt.Errorf("after-execute modifier for %s: %w", slug, err)
		}
	}

	log.Info("tool executed", "successful", resp.Successful)
	return resp, nil
}

// resolve fetches the definition and pins the toolkit version for this
// execution.
func (e *Engine) resolve(ctx context.Context, slug string, req tool.ExecuteRequest, log *slog.Logger) (tool.Tool, string, error) {
	def, err := e.catalog.ResolveSlug(ctx, slug, req.Version)
	if err != nil {
		return tool.Tool{}, "", err
	}
	if def.Custom {
		return def, "", nil
	}

	if req.DangerouslySkipVersionCheck {
		log.Warn("version check skipped for execution", "tool", slug)
		return def, req.Version, nil
	}
	if e.versions == nil {
		return def, req.Version, nil
	}
	resolved, err := e.versions.Resolve(def.ToolkitSlug, req.Version)
	if err != nil {
		return tool.Tool{}, "", err
	}
	return def, resolved, nil
}

// executeCustom dispatches to the registered closure with the user's
// connected-account context injected.
func (e *Engine) executeCustom(ctx context.Context, def tool.Tool, req tool.ExecuteRequest, log *slog.Logger) (tool.ExecuteResponse, error) {
	ct, ok := e.registry.Get(def.Slug)
	if !ok {
		return tool.ExecuteResponse{}, fmt.Errorf("custom tool %s is no longer registered", def.Slug)
	}

	in := tool.CustomToolInput{
		Arguments:          req.Arguments,
		UserID:             req.UserID,
		ConnectedAccountID: req.ConnectedAccountID,
	}

	if in.ConnectedAccountID == "" && e.connections != nil && ct.ToolkitSlug != "" {
		acct, err := e.connections.ActiveAccount(ctx, req.UserID, ct.ToolkitSlug)
		if err != nil {
			log.Warn("connected account lookup failed for custom tool", "error", err)
		} else if acct != nil {
			in.ConnectedAccountID = acct.ID
			in.Credential = acct.Data
		}
	}

	accountID := in.ConnectedAccountID
	in.ExecuteRequest = func(ctx context.Context, p tool.ProxyRequest) (tool.ExecuteResponse, error) {
		if p.ConnectedAccountID == "" {
			p.ConnectedAccountID = accountID
		}
		return e.backend.ExecuteProxy(ctx, p)
	}

	return ct.Execute(ctx, in)
}

// Proxy performs a raw authenticated call through the backend without a
// tool definition.
func (e *Engine) Proxy(ctx context.Context, req tool.ProxyRequest) (tool.ExecuteResponse, error) {
	return e.backend.ExecuteProxy(ctx, req)
}
