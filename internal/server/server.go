// Package server assembles the MCP bridge: a standalone MCP server exposing
// backend tools to any MCP client, scoped to one user.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/composiohq/composio-go/pkg/client"
	"github.com/composiohq/composio-go/pkg/health"
	mcpprovider "github.com/composiohq/composio-go/pkg/providers/mcp"
	"github.com/composiohq/composio-go/pkg/router"
	"github.com/composiohq/composio-go/pkg/tool"
)

// Version is set at build time.
var Version = "dev"

// Server is a configured MCP bridge ready to serve.
type Server struct {
	cfg    *Config
	client *client.Composio
	mcp    *mcpprovider.Server
	probe  *health.Probe
	logger *slog.Logger
}

// New wires a bridge from config. Tool resolution happens in Start so a
// bridge can be constructed before the backend is reachable.
func New(cfg *Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []client.Option{client.WithLogger(logger)}
	if cfg.API.Key != "" {
		opts = append(opts, client.WithAPIKey(cfg.API.Key))
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, client.WithBaseURL(cfg.API.BaseURL))
	}
	if len(cfg.ToolkitVersions) > 0 {
		opts = append(opts, client.WithToolkitVersions(cfg.ToolkitVersions))
	}
	c, err := client.New(opts...)
	if err != nil {
		return nil, err
	}

	name := cfg.Server.Name
	version := cfg.Server.Version
	if version == "" {
		version = Version
	}
	return &Server{
		cfg:    cfg,
		client: c,
		mcp:    mcpprovider.NewServer(name, version, cfg.UserID, c.ExecuteFunc(), mcpprovider.WithLogger(logger)),
		probe:  health.NewProbe(),
		logger: logger,
	}, nil
}

// resolveTools fetches the configured tool set from the catalog.
func (s *Server) resolveTools(ctx context.Context) ([]tool.Tool, error) {
	q := tool.Query{Slugs: s.cfg.Tools, Toolkits: s.cfg.Toolkits}
	defs, err := s.client.Tools(ctx, s.cfg.UserID, q)
	if err != nil {
		return nil, fmt.Errorf("resolving bridge tools: %w", err)
	}
	if len(defs) == 0 {
		s.logger.Warn("bridge resolved no tools", "tools", s.cfg.Tools, "toolkits", s.cfg.Toolkits)
	}
	return defs, nil
}

// Start resolves the configured tools, registers them, and serves until ctx
// is cancelled. In router mode it instead proxies a Tool Router session.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.Router.Enabled {
		return s.serveRouter(ctx)
	}
	defs, err := s.resolveTools(ctx)
	if err != nil {
		return err
	}
	if err := s.mcp.RegisterTools(defs); err != nil {
		return err
	}
	s.probe.SetReady(len(defs))
	s.logger.Info("mcp bridge starting",
		"transport", s.cfg.Server.Transport,
		"user_id", s.cfg.UserID,
		"tools", len(defs),
	)

	switch s.cfg.Server.Transport {
	case "stdio":
		return s.mcp.Run(ctx)
	case "http":
		return s.serveHTTP(ctx, s.mcp.Handler())
	default:
		return fmt.Errorf("unknown transport %q", s.cfg.Server.Transport)
	}
}

// serveRouter creates a Tool Router session for the configured user and
// proxies MCP traffic to it, adding the session's auth headers on the way
// out. The capability URL stays inside the bridge.
func (s *Server) serveRouter(ctx context.Context) error {
	specs := make([]router.ToolkitSpec, 0, len(s.cfg.Router.Toolkits))
	for _, slug := range s.cfg.Router.Toolkits {
		specs = append(specs, router.ToolkitSpec{Slug: slug})
	}
	sess, err := s.client.ToolRouter().Create(ctx, s.cfg.UserID, router.SessionConfig{Toolkits: specs})
	if err != nil {
		return fmt.Errorf("creating router session: %w", err)
	}
	proxy, err := sessionProxy(sess)
	if err != nil {
		return err
	}
	s.probe.SetReady(0)
	s.logger.Info("mcp bridge proxying router session",
		"session_id", sess.ID(),
		"user_id", s.cfg.UserID,
	)
	return s.serveHTTP(ctx, proxy)
}

func sessionProxy(sess *router.Session) (http.Handler, error) {
	target, err := url.Parse(sess.MCPURL())
	if err != nil {
		return nil, fmt.Errorf("parsing session url: %w", err)
	}
	headers := sess.Headers()
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = target.Scheme
			pr.Out.URL.Host = target.Host
			pr.Out.URL.Path = target.Path
			pr.Out.URL.RawQuery = target.RawQuery
			pr.Out.Host = target.Host
			for k, v := range headers {
				pr.Out.Header.Set(k, v)
			}
		},
	}, nil
}

func (s *Server) serveHTTP(ctx context.Context, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/healthz", s.probe.LivenessHandler())
	mux.Handle("/readyz", s.probe.ReadinessHandler())
	mux.Handle("/", handler)

	srv := &http.Server{
		Addr:    s.cfg.Server.Address,
		Handler: mux,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		s.probe.SetDraining()
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Handler exposes the bridge's MCP handler for embedding in an existing
// HTTP server.
func (s *Server) Handler() http.Handler {
	return s.mcp.Handler()
}

// Client returns the underlying client, for callers that register custom
// tools or modifiers before Start.
func (s *Server) Client() *client.Composio {
	return s.client
}

// RegisterResolvedTools resolves and registers the configured tools without
// serving. Used by embedders driving their own transport.
func (s *Server) RegisterResolvedTools(ctx context.Context) error {
	defs, err := s.resolveTools(ctx)
	if err != nil {
		return err
	}
	if err := s.mcp.RegisterTools(defs); err != nil {
		return err
	}
	s.probe.SetReady(len(defs))
	return nil
}

// Probe returns the bridge's readiness probe, for embedders mounting the
// health endpoints on their own mux.
func (s *Server) Probe() *health.Probe {
	return s.probe
}
