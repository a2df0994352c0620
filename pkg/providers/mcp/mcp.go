// Package mcp exposes resolved tools over the Model Context Protocol. The
// adapter registers each tool on an MCP server for local agents, and can
// also connect a client to a hosted Tool Router session.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/composiohq/composio-go/pkg/provider"
	"github.com/composiohq/composio-go/pkg/router"
	"github.com/composiohq/composio-go/pkg/tool"
)

// Server serves tools over MCP for a single user. Tool slugs become MCP
// tool names unchanged.
type Server struct {
	server  *mcpsdk.Server
	execute provider.ExecuteFunc
	userID  string
	logger  *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates an MCP server that executes tools on behalf of userID.
func NewServer(name, version, userID string, execute provider.ExecuteFunc, opts ...ServerOption) *Server {
	s := &Server{
		server:  mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: version}, nil),
		execute: execute,
		userID:  userID,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements provider.Provider.
func (s *Server) Name() string { return "mcp" }

// RegisterTools adds each definition to the MCP server. Calling a tool runs
// it through the execution engine; failed executions surface to the MCP
// client as error results.
func (s *Server) RegisterTools(defs []tool.Tool) error {
	for _, def := range defs {
		if def.Slug == "" {
			return fmt.Errorf("tool definition missing slug")
		}
		slug := def.Slug
		s.server.AddTool(&mcpsdk.Tool{
			Name:        slug,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return s.callTool(ctx, slug, req)
		})
	}
	return nil
}

func (s *Server) callTool(ctx context.Context, slug string, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := provider.DecodeArguments(req.Params.Arguments)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	res, err := s.execute(ctx, slug, tool.ExecuteRequest{
		UserID:    s.userID,
		Arguments: args,
	})
	if err != nil {
		s.logger.Warn("mcp tool call failed", "tool", slug, "error", err)
		return errorResult(err.Error()), nil
	}

	content, err := provider.RenderResult(res)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: content}},
		IsError: !res.Successful,
	}, nil
}

func errorResult(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// Handler returns a streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.server
	}, nil)
}

// Run serves the MCP server over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// Underlying exposes the wrapped MCP server for callers that register
// prompts or resources directly.
func (s *Server) Underlying() *mcpsdk.Server { return s.server }

// sessionHeaders injects Tool Router session credentials into every request
// of the streamable client transport.
type sessionHeaders struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *sessionHeaders) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// ConnectSession connects an MCP client to a Tool Router session's hosted
// endpoint and returns the live client session. The caller owns closing it.
func ConnectSession(ctx context.Context, sess *router.Session, impl *mcpsdk.Implementation) (*mcpsdk.ClientSession, error) {
	if impl == nil {
		impl = &mcpsdk.Implementation{Name: "composio-go", Version: "dev"}
	}
	client := mcpsdk.NewClient(impl, nil)
	transport := &mcpsdk.StreamableClientTransport{
		Endpoint: sess.MCPURL(),
		HTTPClient: &http.Client{
			Transport: &sessionHeaders{headers: sess.Headers()},
		},
	}
	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to tool router session %s: %w", sess.ID(), err)
	}
	return cs, nil
}

// CallSessionTool invokes one tool on a connected Tool Router session and
// decodes the uniform execution envelope from the result content.
func CallSessionTool(ctx context.Context, cs *mcpsdk.ClientSession, name string, args map[string]any) (tool.ExecuteResponse, error) {
	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return tool.ExecuteResponse{}, err
	}
	for _, content := range res.Content {
		text, ok := content.(*mcpsdk.TextContent)
		if !ok {
			continue
		}
		var envelope tool.ExecuteResponse
		if err := json.Unmarshal([]byte(text.Text), &envelope); err == nil {
			return envelope, nil
		}
		return tool.ExecuteResponse{
			Data:       map[string]any{"raw": text.Text},
			Successful: !res.IsError,
		}, nil
	}
	return tool.ExecuteResponse{Successful: !res.IsError}, nil
}
