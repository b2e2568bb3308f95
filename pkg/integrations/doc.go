// Package integrations provides the shared HTTP client for package registry
// APIs.
//
// [Client] wraps an [http.Client] with response caching through any
// [cache.Cache] backend, retries for transient failures (network errors,
// 429 and 5xx responses) and default headers. Registry specific clients
// such as [npm] embed it.
//
// Every request reports to the HTTP hooks in [observability].
//
// [npm]: github.com/matzehuels/stackrun/pkg/integrations/npm
// [cache.Cache]: github.com/matzehuels/stackrun/pkg/cache.Cache
// [observability]: github.com/matzehuels/stackrun/pkg/observability
package integrations
