package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/1ndex13/logistic-app/core/allocation"
	"github.com/1ndex13/logistic-app/core/factory"
	"github.com/1ndex13/logistic-app/infra/notify"
	"github.com/1ndex13/logistic-app/infra/store"
)

// Config is the root configuration of the allocation service.
type Config struct {
	HTTP       HTTPConfig        `json:"http"`
	Registry   RegistryConfig    `json:"registry"`
	Allocation allocation.Config `json:"allocation"`
	Metrics    MetricsConfig     `json:"metrics"`
	Notifier   notify.Config     `json:"notifier"`
	Sentry     SentryConfig      `json:"sentry"`
	Logging    LoggingConfig     `json:"logging"`
}

// HTTPConfig defines the API listener.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// RegistryConfig selects the registry backend: "memory" (seeded from a JSON
// file) or "rest" (the admin backend API).
type RegistryConfig struct {
	Backend  string           `json:"backend"`
	SeedPath string           `json:"seed_path"`
	REST     store.RESTConfig `json:"rest"`
}

// SetDefaults applies sane defaults.
func (c *RegistryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
}

// Validate checks mandatory fields.
func (c RegistryConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "rest":
		if c.REST.BaseURL == "" {
			return fmt.Errorf("registry.rest.base_url is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown registry backend %s", c.Backend)
	}
}

// MetricsConfig defines metrics sinks and the Prometheus listener.
type MetricsConfig struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	PrometheusAddr string                 `json:"prometheus_addr"`
}

// Load reads the configuration file (yaml or json) with optional environment
// overrides using the LG_ prefix and __ as the section separator.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("LG_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "lg_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.HTTP.SetDefaults()
	cfg.Registry.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Registry.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
