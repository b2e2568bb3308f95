// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about task runs, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRunnerHooks(&myRunnerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Runner().OnTaskStart(ctx, runID, pkg)
//	// ... run the script ...
//	observability.Runner().OnTaskComplete(ctx, runID, pkg, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Runner Hooks
// =============================================================================

// RunnerHooks receives events from the task runner. Every run carries a
// unique runID so concurrent runs can be told apart.
type RunnerHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string, packages, concurrency int)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)

	// Task events
	OnTaskStart(ctx context.Context, runID, pkg string)
	OnTaskComplete(ctx context.Context, runID, pkg string, duration time.Duration, err error)

	// OnCycle records a dependency cycle that was collapsed instead of rejected.
	OnCycle(ctx context.Context, runID string, members []string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRunnerHooks is a no-op implementation of RunnerHooks.
type NoopRunnerHooks struct{}

func (NoopRunnerHooks) OnRunStart(context.Context, string, int, int)                         {}
func (NoopRunnerHooks) OnRunComplete(context.Context, string, time.Duration, error)          {}
func (NoopRunnerHooks) OnTaskStart(context.Context, string, string)                          {}
func (NoopRunnerHooks) OnTaskComplete(context.Context, string, string, time.Duration, error) {}
func (NoopRunnerHooks) OnCycle(context.Context, string, []string)                            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	runnerHooks RunnerHooks = NoopRunnerHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetRunnerHooks registers custom runner hooks.
// This should be called once at application startup before any run starts.
func SetRunnerHooks(h RunnerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		runnerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Runner returns the registered runner hooks.
func Runner() RunnerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return runnerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	runnerHooks = NoopRunnerHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
