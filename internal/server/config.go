package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives the MCP bridge: which backend to talk to, which user the
// bridge acts for, and which tools it exposes.
type Config struct {
	Server struct {
		// Name and Version identify the MCP server to clients.
		Name    string `yaml:"name"`
		Version string `yaml:"version"`

		// Transport selects stdio or http.
		Transport string `yaml:"transport"`

		// Address is the listen address for the http transport.
		Address string `yaml:"address"`
	} `yaml:"server"`

	API struct {
		// Key authenticates against the backend. Falls back to
		// COMPOSIO_API_KEY.
		Key string `yaml:"key"`

		// BaseURL overrides the backend endpoint.
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`

	// UserID is the user every tool call executes for.
	UserID string `yaml:"user_id"`

	// Tools pins the bridge to exact tool slugs. Mutually exclusive with
	// Toolkits.
	Tools []string `yaml:"tools"`

	// Toolkits exposes every tool of the named toolkits.
	Toolkits []string `yaml:"toolkits"`

	// Router switches the bridge from serving resolved tools to proxying
	// a Tool Router session for UserID.
	Router struct {
		Enabled bool `yaml:"enabled"`

		// Toolkits limits the session to the named toolkits. Empty
		// means every toolkit the user can reach.
		Toolkits []string `yaml:"toolkits"`
	} `yaml:"router"`

	// ToolkitVersions pins toolkit versions for resolution and execution.
	ToolkitVersions map[string]string `yaml:"toolkit_versions"`
}

// DefaultConfig returns a config with server identity defaults filled in.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Name = "composio-mcp"
	cfg.Server.Version = Version
	cfg.Server.Transport = "stdio"
	cfg.Server.Address = ":8080"
	return cfg
}

// LoadConfig reads a YAML config file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config consistency.
func (c *Config) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if c.Router.Enabled {
		if len(c.Tools) > 0 || len(c.Toolkits) > 0 {
			return fmt.Errorf("router mode and a tool source are mutually exclusive")
		}
		if c.Server.Transport != "http" {
			return fmt.Errorf("router mode requires the http transport")
		}
		return nil
	}
	if len(c.Tools) > 0 && len(c.Toolkits) > 0 {
		return fmt.Errorf("tools and toolkits are mutually exclusive")
	}
	if len(c.Tools) == 0 && len(c.Toolkits) == 0 {
		return fmt.Errorf("one of tools or toolkits is required")
	}
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("unknown transport %q", c.Server.Transport)
	}
	return nil
}
