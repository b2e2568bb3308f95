package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrun/pkg/cache"
	"github.com/matzehuels/stackrun/pkg/integrations"
	"github.com/matzehuels/stackrun/pkg/integrations/npm"
	"github.com/matzehuels/stackrun/pkg/manifest"
	"github.com/matzehuels/stackrun/pkg/runner"
)

// publishedOpts holds the command-line flags for the published command.
type publishedOpts struct {
	filterOpts
	registry    string // registry base URL
	noCache     bool   // bypass the cache entirely
	refresh     bool   // ignore cached entries but store fresh ones
	concurrency int    // registry requests in flight
}

// publishedCommand creates the published command.
func (c *CLI) publishedCommand() *cobra.Command {
	opts := publishedOpts{concurrency: 8}

	cmd := &cobra.Command{
		Use:   "published",
		Short: "List packages whose current version is not on the registry",
		Long: `Check every public package against the npm registry and list those whose
current version has not been published yet.

Registry responses are cached on disk (or in Redis when redisUrl is set).

Examples:
  stackrun published
  stackrun published --registry https://npm.internal.example.com --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPublished(cmd.Context(), &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.registry, "registry", npm.DefaultRegistry, "npm registry URL")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the registry cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch cached registry responses")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", opts.concurrency, "registry requests in flight")

	return cmd
}

// versionStatus is the registry state of one package version.
type versionStatus struct {
	pkg       *manifest.Package
	published bool
}

func (c *CLI) runPublished(ctx context.Context, opts *publishedOpts) error {
	opts.noPrivate = true
	p, err := c.loadProject(ctx, &opts.filterOpts, "")
	if err != nil {
		return err
	}

	cc, err := newCache(ctx, p.cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()
	client := npm.NewClient(cc, registryCacheTTL, registryOptions(opts.registry)...)

	spinner := newSpinnerWithContext(ctx, c.Err, fmt.Sprintf("Checking %d packages on %s...", len(p.pkgs), client.Registry()))
	spinner.Start()
	statuses, err := runner.RunParallel(ctx, p.pkgs, func(ctx context.Context, pkg *manifest.Package) (versionStatus, error) {
		if !opts.refresh {
			ok, err := client.Published(ctx, pkg.Name, pkg.Version)
			return versionStatus{pkg: pkg, published: ok}, err
		}
		_, err := client.FetchVersion(ctx, pkg.Name, pkg.Version, true)
		if errors.Is(err, integrations.ErrNotFound) {
			return versionStatus{pkg: pkg}, nil
		}
		return versionStatus{pkg: pkg, published: err == nil}, err
	}, opts.concurrency)
	if err != nil {
		spinner.StopWithError("Registry check failed")
		return err
	}
	spinner.Stop()

	published := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		published[s.pkg.Name] = s.published
	}
	var missing []*manifest.Package
	for _, pkg := range p.pkgs {
		if !published[pkg.Name] {
			missing = append(missing, pkg)
		}
	}
	if len(missing) == 0 {
		printSuccess(c.Err, "All %d packages are published", len(p.pkgs))
		return nil
	}
	for _, pkg := range missing {
		fmt.Fprintf(c.Out, "%s@%s\n", pkg.Name, pkg.Version)
	}
	printInfo(c.Err, "%d of %d packages are unpublished", len(missing), len(p.pkgs))
	return nil
}

// registryOptions points the client at registry. Responses of registries
// other than the public one are cached under their own key prefix.
func registryOptions(registry string) []npm.Option {
	opts := []npm.Option{npm.WithRegistry(registry)}
	u, err := url.Parse(registry)
	if err != nil || u.Host == "" || strings.TrimSuffix(registry, "/") == npm.DefaultRegistry {
		return opts
	}
	return append(opts, npm.WithKeyer(cache.NewScopedKeyer(nil, u.Host+":")))
}
