// Package client is the entry point to the Noxus backend. A Client loads the
// node catalog and exposes a service per resource.
package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/avi3tal/noxus-go/internal/transport"
	"github.com/avi3tal/noxus-go/pkg/agents"
	"github.com/avi3tal/noxus-go/pkg/catalog"
	"github.com/avi3tal/noxus-go/pkg/catalogstore"
	"github.com/avi3tal/noxus-go/pkg/conversations"
	"github.com/avi3tal/noxus-go/pkg/files"
	"github.com/avi3tal/noxus-go/pkg/knowledgebases"
	"github.com/avi3tal/noxus-go/pkg/runs"
	"github.com/avi3tal/noxus-go/pkg/workflow"
)

type Client struct {
	cfg       Config
	requester *transport.Requester
	logger    *slog.Logger

	Registry       *catalog.Registry
	Workflows      *workflow.Service
	Runs           *runs.Service
	Agents         *agents.Service
	Conversations  *conversations.Service
	KnowledgeBases *knowledgebases.Service
	Files          *files.Service
}

// New creates a client and, unless WithoutNodeCatalog is given, loads the
// node catalog.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	cfg := NewConfig(apiKey, opts...)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid client config")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	req := transport.New(transport.Config{
		BaseURL:          cfg.BaseURL,
		APIKey:           cfg.APIKey,
		Headers:          cfg.ExtraHeaders,
		Timeout:          cfg.Timeout,
		RateLimitRetries: cfg.RateLimitRetries,
		Logger:           logger,
	})

	registry := cfg.Registry
	if registry == nil {
		registry = catalog.New(catalog.WithLogger(logger))
	}

	rs := runs.NewService(req, logger)
	c := &Client{
		cfg:            cfg,
		requester:      req,
		logger:         logger,
		Registry:       registry,
		Runs:           rs,
		Workflows:      workflow.NewService(req, registry, rs, logger),
		Agents:         agents.NewService(req, logger),
		Conversations:  conversations.NewService(req, logger),
		KnowledgeBases: knowledgebases.NewService(req, logger),
		Files:          files.NewService(req, logger),
	}

	if cfg.LoadNodes {
		if err := c.LoadNodeCatalog(ctx); err != nil {
			_ = req.Close()
			return nil, err
		}
	}
	return c, nil
}

// NewFromEnv creates a client with the api key found in NOXUS_API_KEY
func NewFromEnv(ctx context.Context, opts ...Option) (*Client, error) {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return nil, errors.Wrapf(ErrMissingAPIKey, "%s is not set", EnvAPIKey)
	}
	return New(ctx, key, opts...)
}

// Config returns the settings the client was created with
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) Close() error {
	return c.requester.Close()
}

// FetchNodeCatalog downloads the node catalog, loads it into the registry and
// saves it to the catalog store, when one is configured.
func (c *Client) FetchNodeCatalog(ctx context.Context) ([]json.RawMessage, error) {
	var nodes []json.RawMessage
	if err := c.requester.Get(ctx, "/v1/nodes", nil, &nodes); err != nil {
		return nil, errors.Wrap(err, "failed to fetch node catalog")
	}
	if err := c.Registry.Load(nodes); err != nil {
		return nil, err
	}
	c.logger.Info("Node catalog fetched.", "types", c.Registry.Len())

	if c.cfg.CatalogStore != nil {
		snap := catalogstore.Snapshot{Key: c.cfg.CatalogKey, Nodes: nodes, FetchedAt: time.Now()}
		if err := c.cfg.CatalogStore.Save(ctx, snap); err != nil {
			c.logger.Warn("Failed to cache node catalog.", "error", err)
		}
	}
	return nodes, nil
}

// LoadNodeCatalog loads a fresh cached catalog when one exists and fetches
// the catalog otherwise.
func (c *Client) LoadNodeCatalog(ctx context.Context) error {
	if c.loadCachedCatalog(ctx) {
		return nil
	}
	_, err := c.FetchNodeCatalog(ctx)
	return err
}

func (c *Client) loadCachedCatalog(ctx context.Context) bool {
	if c.cfg.CatalogStore == nil {
		return false
	}
	snap, err := c.cfg.CatalogStore.Load(ctx, c.cfg.CatalogKey)
	if err != nil {
		if !errors.Is(err, catalogstore.ErrNotFound) {
			c.logger.Warn("Failed to read cached node catalog.", "error", err)
		}
		return false
	}
	if !snap.Fresh(c.cfg.CatalogMaxAge, time.Now()) {
		c.logger.Debug("Cached node catalog expired.", "fetched_at", snap.FetchedAt)
		return false
	}
	if err := c.Registry.Load(snap.Nodes); err != nil {
		c.logger.Warn("Cached node catalog is invalid.", "error", err)
		return false
	}
	c.logger.Info("Node catalog loaded from cache.", "types", c.Registry.Len(), "fetched_at", snap.FetchedAt)
	return true
}

// Models lists the language models available to the account
func (c *Client) Models(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.requester.Get(ctx, "/v1/models/llms", nil, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list models")
	}
	return out, nil
}

// ChatPresets lists the preset chat configurations
func (c *Client) ChatPresets(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.requester.Get(ctx, "/v1/models/llms/presets", nil, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list chat presets")
	}
	return out, nil
}
