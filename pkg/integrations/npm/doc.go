// Package npm provides an HTTP client for the npm registry API.
//
// The client fetches single version documents
// (https://registry.npmjs.org/<name>/<version>) and is used to check
// which workspace packages still need publishing:
//
//	client := npm.NewClient(c, 24*time.Hour)
//	ok, err := client.Published(ctx, "@acme/core", "1.4.0")
//
// Found versions are cached through the [cache.Cache] given to NewClient;
// a missing version is never cached, since it may be published later.
//
// [cache.Cache]: github.com/matzehuels/stackrun/pkg/cache.Cache
package npm
