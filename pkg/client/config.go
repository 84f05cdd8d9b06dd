package client

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/pkg/catalog"
	"github.com/avi3tal/noxus-go/pkg/catalogstore"
)

const (
	DefaultBaseURL = "https://backend.noxus.ai"
	DefaultTimeout = 30 * time.Second

	// EnvBackendURL replaces DefaultBaseURL when set
	EnvBackendURL = "NOXUS_BACKEND_URL"
	// EnvAPIKey is read by NewFromEnv
	EnvAPIKey = "NOXUS_API_KEY"
)

var (
	ErrMissingAPIKey  = errors.New("api key is required")
	ErrInvalidBaseURL = errors.New("invalid base url")
)

// Config represents the settings of a Client
type Config struct {
	APIKey           string
	BaseURL          string
	ExtraHeaders     map[string]string
	Timeout          time.Duration
	RateLimitRetries int
	Logger           *slog.Logger

	// LoadNodes fetches the node catalog when the client is created
	LoadNodes bool
	// Registry is an optional registry shared between clients
	Registry     *catalog.Registry
	CatalogStore catalogstore.Store
	CatalogKey   string
	// CatalogMaxAge of zero keeps cached catalogs forever
	CatalogMaxAge time.Duration
}

// NewConfig returns the defaults for apiKey with opts applied
func NewConfig(apiKey string, opts ...Option) Config {
	baseURL := DefaultBaseURL
	if env := os.Getenv(EnvBackendURL); env != "" {
		baseURL = env
	}
	cfg := Config{
		APIKey:           apiKey,
		BaseURL:          baseURL,
		Timeout:          DefaultTimeout,
		RateLimitRetries: 5,
		Logger:           slog.Default(),
		LoadNodes:        true,
		CatalogKey:       catalogstore.DefaultKey,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Validate checks the settings before any request is made
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.Wrapf(ErrInvalidBaseURL, "%q: %v", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(ErrInvalidBaseURL, "%q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.RateLimitRetries < 0 {
		return errors.Errorf("rate limit retries must not be negative, got %d", c.RateLimitRetries)
	}
	return nil
}

type Option func(*Config)

// WithBaseURL sets the backend address, taking precedence over NOXUS_BACKEND_URL
func WithBaseURL(u string) Option {
	return func(c *Config) {
		c.BaseURL = u
	}
}

// WithExtraHeaders adds headers sent on every request
func WithExtraHeaders(h map[string]string) Option {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string, len(h))
		}
		for k, v := range h {
			c.ExtraHeaders[k] = v
		}
	}
}

// WithTimeout sets the default request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithRateLimitRetries sets how often a 429 response is retried
func WithRateLimitRetries(n int) Option {
	return func(c *Config) {
		c.RateLimitRetries = n
	}
}

// WithoutNodeCatalog skips fetching the node catalog on creation. Workflows
// cannot be built until FetchNodeCatalog or LoadNodeCatalog succeeds.
func WithoutNodeCatalog() Option {
	return func(c *Config) {
		c.LoadNodes = false
	}
}

// WithRegistry makes the client resolve node types against r
func WithRegistry(r *catalog.Registry) Option {
	return func(c *Config) {
		c.Registry = r
	}
}

// WithCatalogStore caches fetched catalogs in store. A cached catalog younger
// than maxAge is used instead of fetching.
func WithCatalogStore(store catalogstore.Store, maxAge time.Duration) Option {
	return func(c *Config) {
		c.CatalogStore = store
		c.CatalogMaxAge = maxAge
	}
}

// NewLogger creates a slog.Logger writing to w. level is one of debug, info,
// warn or error; format is "json" or text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
