package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/stackrun/pkg/cache"
	"github.com/matzehuels/stackrun/pkg/integrations"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// VersionInfo is the registry document of one published version.
type VersionInfo struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description,omitempty"`
	License      string            `json:"license,omitempty"`
	Repository   string            `json:"repository,omitempty"`
	Deprecated   string            `json:"deprecated,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Client talks to an npm compatible registry.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
	group   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithRegistry points the client at another registry, such as a private
// Verdaccio instance.
func WithRegistry(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithKeyer sets the cache keyer, for example a [cache.ScopedKeyer] when
// several registries share one Redis.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a registry client caching version documents in c for
// cacheTTL. A nil cache disables caching.
func NewClient(c cache.Cache, cacheTTL time.Duration, opts ...Option) *Client {
	client := &Client{
		Client:  integrations.NewClient(c, cacheTTL, nil),
		baseURL: DefaultRegistry,
		keyer:   cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Registry returns the registry base URL.
func (c *Client) Registry() string { return c.baseURL }

// FetchVersion returns the registry document for name@version. Concurrent
// calls for the same version share one request. Unknown versions return an
// error wrapping [integrations.ErrNotFound] and are never cached.
func (c *Client) FetchVersion(ctx context.Context, name, version string, refresh bool) (*VersionInfo, error) {
	key := c.keyer.PackageKey("npm", name, version)
	v, err, _ := c.group.Do(key, func() (any, error) {
		var info VersionInfo
		err := c.Cached(ctx, key, refresh, &info, func() error {
			return c.fetch(ctx, name, version, &info)
		})
		if err != nil {
			return nil, err
		}
		return &info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*VersionInfo), nil
}

// Published reports whether name@version exists in the registry.
func (c *Client) Published(ctx context.Context, name, version string) (bool, error) {
	_, err := c.FetchVersion(ctx, name, version, false)
	if errors.Is(err, integrations.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) fetch(ctx context.Context, name, version string, info *VersionInfo) error {
	var data versionDetails
	u := c.baseURL + "/" + escapeName(name) + "/" + url.PathEscape(version)
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s@%s", err, name, version)
		}
		return err
	}

	*info = VersionInfo{
		Name:         data.Name,
		Version:      data.Version,
		Description:  data.Description,
		License:      extractField(data.License, "type"),
		Repository:   integrations.NormalizeRepoURL(extractField(data.Repository, "url")),
		Deprecated:   extractField(data.Deprecated, ""),
		Dependencies: data.Dependencies,
	}
	return nil
}

// escapeName keeps the scope's "@" but encodes the slash, as the registry
// expects for scoped packages.
func escapeName(name string) string {
	return strings.Replace(name, "/", "%2F", 1)
}

func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

type versionDetails struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	License      any               `json:"license"`
	Repository   any               `json:"repository"`
	Deprecated   any               `json:"deprecated"`
	Dependencies map[string]string `json:"dependencies"`
}
