// Package main provides the entry point for the composio-mcp bridge, an MCP
// server that exposes backend tools to any MCP client on behalf of one user.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/composiohq/composio-go/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type bridgeOptions struct {
	configPath  string
	transport   string
	address     string
	userID      string
	toolkits    string
	tools       string
	showVersion bool
}

func parseFlags() bridgeOptions {
	opts := bridgeOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&opts.transport, "transport", "", "Transport type: stdio, http")
	flag.StringVar(&opts.address, "address", "", "Listen address for the http transport")
	flag.StringVar(&opts.userID, "user", "", "User id tool calls execute for")
	flag.StringVar(&opts.toolkits, "toolkits", "", "Comma-separated toolkit slugs to expose")
	flag.StringVar(&opts.tools, "tools", "", "Comma-separated tool slugs to expose")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func loadConfig(opts bridgeOptions) (*server.Config, error) {
	var cfg *server.Config
	var err error
	if opts.configPath != "" {
		cfg, err = server.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = server.DefaultConfig()
	}

	if opts.transport != "" {
		cfg.Server.Transport = opts.transport
	}
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if opts.userID != "" {
		cfg.UserID = opts.userID
	}
	// A tool source given on the command line replaces the file's source.
	if opts.toolkits != "" {
		cfg.Toolkits = splitList(opts.toolkits)
		cfg.Tools = nil
	}
	if opts.tools != "" {
		cfg.Tools = splitList(opts.tools)
		cfg.Toolkits = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func run() error {
	// Not an error when absent; environment may be set another way.
	_ = godotenv.Load()

	opts := parseFlags()
	if opts.showVersion {
		fmt.Printf("composio-mcp version %s\n", server.Version)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// The stdio transport owns stdout; logs go to stderr either way.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	bridge, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	ctx := setupSignalHandler()
	return bridge.Start(ctx)
}
