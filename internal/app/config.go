package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/catalog-view/internal/catalog"
	"github.com/xenking/catalog-view/internal/ui"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the server configuration, loadable from environment
// variables (CATALOG_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	Upstream  UpstreamConfig
	Labels    ui.Labels
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Health    HealthConfig
	Graceful  GracefulConfig
}

// UpstreamConfig points at the remote product catalog.
type UpstreamConfig struct {
	URL          string        `default:"https://dummyjson.com/products" usage:"Catalog endpoint"`
	Timeout      time.Duration `default:"10s" usage:"Timeout of a single upstream request"`
	MaxBodyBytes int64         `default:"4194304" usage:"Maximum upstream response size" flag:"upstream-max-body"`
}

// RateLimitConfig limits page views per client. Each view costs one
// upstream request.
type RateLimitConfig struct {
	Max    int           `default:"120" usage:"Max requests per window, 0 disables"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls cross-origin access to /api/.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// HealthConfig controls probe polling.
type HealthConfig struct {
	Interval      time.Duration `default:"15s" usage:"Health check polling interval"`
	MaxGoroutines int           `default:"10000" usage:"Liveness goroutine threshold"`
	UpstreamProbe bool          `default:"true" usage:"Include the upstream ping in readiness" flag:"upstream-probe"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from flags, environment variables and YAML
// config files.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		Files: []string{"config.yaml", "/etc/catalog/config.yaml"},
	})
}

func loadConfig(base aconfig.Config) (*Config, error) {
	var cfg Config
	base.EnvPrefix = "CATALOG"
	base.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}
	if err := aconfig.LoaderFor(&cfg, base).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Labels = cfg.Labels.WithDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := catalog.NewClient(c.catalogOptions()); err != nil {
		return errors.Wrap(err, "upstream")
	}
	if c.RateLimit.Max > 0 && c.RateLimit.Window <= 0 {
		return errors.New("rate limit window must be positive")
	}
	return nil
}

func (c *Config) catalogOptions() catalog.Options {
	return catalog.Options{
		URL:          c.Upstream.URL,
		Timeout:      c.Upstream.Timeout,
		MaxBodyBytes: c.Upstream.MaxBodyBytes,
	}
}

// applyPlatformDefaults maps the platform PORT variable onto Addr unless
// Addr was set explicitly.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
