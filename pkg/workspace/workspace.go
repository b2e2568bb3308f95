// Package workspace discovers the packages of a monorepo and narrows them
// down with name filters.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackrun/pkg/config"
	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// PnpmFile is the pnpm workspace definition file.
const PnpmFile = "pnpm-workspace.yaml"

// DefaultPatterns is used when nothing else declares package locations.
var DefaultPatterns = []string{"packages/*"}

// Patterns returns the package globs for the repository described by cfg.
//
// Globs configured in the settings file win unless useWorkspaces is set.
// Otherwise the root package.json "workspaces" field is used, then
// pnpm-workspace.yaml, then the configured globs, then [DefaultPatterns].
func Patterns(cfg *config.Config) ([]string, error) {
	if len(cfg.Packages) > 0 && !cfg.UseWorkspaces {
		return cfg.Packages, nil
	}

	if data, err := os.ReadFile(filepath.Join(cfg.Root, manifest.FileName)); err == nil {
		globs, err := manifest.Workspaces(data)
		if err != nil {
			return nil, err
		}
		if len(globs) > 0 {
			return globs, nil
		}
	}

	if data, err := os.ReadFile(filepath.Join(cfg.Root, PnpmFile)); err == nil {
		var pnpm struct {
			Packages []string `yaml:"packages"`
		}
		if err := yaml.Unmarshal(data, &pnpm); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", PnpmFile)
		}
		if len(pnpm.Packages) > 0 {
			return pnpm.Packages, nil
		}
	}

	if len(cfg.Packages) > 0 {
		return cfg.Packages, nil
	}
	return DefaultPatterns, nil
}

// Discover finds every package.json matched by patterns under root and
// parses them in parallel. Patterns starting with "!" exclude directories.
// node_modules is never searched.
//
// Packages are ordered by pattern, then by path within a pattern.
func Discover(ctx context.Context, root string, patterns []string) ([]*manifest.Package, error) {
	var include, exclude []string
	for _, p := range patterns {
		if err := errors.ValidateWorkspacePattern(strings.TrimPrefix(p, "!")); err != nil {
			return nil, err
		}
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			exclude = append(exclude, strings.TrimSuffix(filepath.ToSlash(rest), "/"))
		} else {
			include = append(include, strings.TrimSuffix(filepath.ToSlash(p), "/"))
		}
	}

	var files []string
	seen := make(map[string]bool)
	for _, pattern := range include {
		matches, err := doublestar.Glob(filepath.Join(root, filepath.FromSlash(pattern), manifest.FileName))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "glob %q", pattern)
		}
		slices.Sort(matches)
		for _, file := range matches {
			if seen[file] || skipped(root, file, exclude) {
				continue
			}
			seen[file] = true
			files = append(files, file)
		}
	}

	pkgs := make([]*manifest.Package, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pkg, err := manifest.ParseFile(file)
			if err != nil {
				return err
			}
			pkgs[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pkgs, nil
}

func skipped(root, file string, exclude []string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	if slices.Contains(strings.Split(rel, "/"), "node_modules") {
		return true
	}
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Load reads the configuration at root and discovers its packages.
func Load(ctx context.Context, root string) (*config.Config, []*manifest.Package, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}
	patterns, err := Patterns(cfg)
	if err != nil {
		return nil, nil, err
	}
	pkgs, err := Discover(ctx, cfg.Root, patterns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pkgs, nil
}
