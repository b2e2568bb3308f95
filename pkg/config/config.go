// Package config loads monorepo settings from stackrun.toml or lerna.json.
//
// Settings files may extend another file by relative path; the extended file
// is loaded first and the extending file's keys override it. Environment
// variables prefixed STACKRUN_ override both.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/errors"
)

// File names looked up in the repository root, in order.
const (
	TOMLFile  = "stackrun.toml"
	LernaFile = "lerna.json"
)

// Supported npm clients.
var npmClients = []string{"npm", "yarn", "pnpm"}

// Config is the merged repository configuration.
type Config struct {
	Root string `json:"-" toml:"-"` // Repository root
	Path string `json:"-" toml:"-"` // File the config was loaded from, empty if none

	Extends       string     `json:"extends" toml:"extends"`
	Packages      []string   `json:"packages" toml:"packages"`
	NpmClient     string     `json:"npmClient" toml:"npm_client"`
	Concurrency   int        `json:"concurrency" toml:"concurrency"`
	RejectCycles  bool       `json:"rejectCycles" toml:"reject_cycles"`
	GraphType     string     `json:"graphType" toml:"graph_type"`
	ForceLocal    ForceLocal `json:"forceLocal" toml:"force_local"`
	UseWorkspaces bool       `json:"useWorkspaces" toml:"use_workspaces"`
	EnvFile       string     `json:"envFile" toml:"env_file"`
	RedisURL      string     `json:"redisUrl" toml:"redis_url"`
}

// ForceLocal is either a boolean (every sibling) or a list of package names.
type ForceLocal struct {
	All   bool
	Names []string
}

// UnmarshalJSON accepts true/false or an array of names.
func (f *ForceLocal) UnmarshalJSON(data []byte) error {
	var all bool
	if err := json.Unmarshal(data, &all); err == nil {
		*f = ForceLocal{All: all}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("forceLocal must be a boolean or a list of names: %w", err)
	}
	*f = ForceLocal{Names: names}
	return nil
}

// UnmarshalTOML accepts true/false or an array of names.
func (f *ForceLocal) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case bool:
		*f = ForceLocal{All: val}
	case []any:
		names := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("force_local entries must be strings, got %T", item)
			}
			names = append(names, s)
		}
		*f = ForceLocal{Names: names}
	default:
		return fmt.Errorf("force_local must be a boolean or a list of names, got %T", v)
	}
	return nil
}

// Graph converts the setting for graph construction.
func (f ForceLocal) Graph() dag.ForceLocal {
	if f.All {
		return dag.ForceLocal{All: true}
	}
	return dag.ForceLocalNames(f.Names...)
}

// Load reads the configuration for the repository at root. A repository
// without a settings file yields the defaults.
func Load(root string) (*Config, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	for _, name := range []string{TOMLFile, LernaFile} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := loadFile(path, cfg, nil); err != nil {
			return nil, err
		}
		cfg.Path = path
		break
	}
	cfg.Root = root

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.WithDefaults(), nil
}

// loadFile overlays path onto cfg after loading whatever path extends.
// chain holds the files currently being loaded, to detect extends cycles.
func loadFile(path string, cfg *Config, chain []string) error {
	for _, seen := range chain {
		if seen == path {
			return errors.New(errors.ErrCodeInvalidConfig, "extends cycle: %s",
				strings.Join(append(chain, path), " -> "))
		}
	}
	chain = append(chain, path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return err
	}

	var head struct {
		Extends string `json:"extends" toml:"extends"`
	}
	if err := decode(path, data, &head); err != nil {
		return err
	}
	if head.Extends != "" {
		base := head.Extends
		if !filepath.IsAbs(base) {
			base = filepath.Join(filepath.Dir(path), base)
		}
		if err := loadFile(filepath.Clean(base), cfg, chain); err != nil {
			return err
		}
	}

	return decode(path, data, cfg)
}

// decode fills only the keys present in data, so earlier values survive.
func decode(path string, data []byte, v any) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("STACKRUN_NPM_CLIENT")); v != "" {
		cfg.NpmClient = v
	}
	if v := strings.TrimSpace(os.Getenv("STACKRUN_CONCURRENCY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("STACKRUN_REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
}

// Validate checks field values without applying defaults.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.NpmClient != "" && !slices.Contains(npmClients, c.NpmClient) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"npmClient %q is not one of %s", c.NpmClient, strings.Join(npmClients, ", "))
	}
	if _, err := dag.ParseGraphType(c.GraphType); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "graphType")
	}
	for _, p := range c.Packages {
		if err := errors.ValidateWorkspacePattern(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "packages")
		}
	}
	return nil
}

// WithDefaults returns a copy with empty fields set to their defaults.
// Concurrency stays 0, which the runner reads as "number of CPUs".
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.NpmClient == "" {
		out.NpmClient = "npm"
	}
	if out.GraphType == "" {
		out.GraphType = string(dag.GraphAllDependencies)
	}
	return &out
}

// EnvFilePath returns the absolute env file path, or "" when none is set.
func (c *Config) EnvFilePath() string {
	if c.EnvFile == "" {
		return ""
	}
	if filepath.IsAbs(c.EnvFile) {
		return c.EnvFile
	}
	return filepath.Join(c.Root, c.EnvFile)
}
