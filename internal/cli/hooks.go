package cli

import (
	"context"
	"time"

	"github.com/matzehuels/stackrun/pkg/observability"
)

// debugHooks logs runner, cache and HTTP events at debug level through the
// logger carried in the event's context.
type debugHooks struct{}

// RegisterDebugHooks routes observability events to the debug log.
// It is called by main when --verbose is set.
func RegisterDebugHooks() {
	observability.SetRunnerHooks(debugHooks{})
	observability.SetCacheHooks(debugHooks{})
	observability.SetHTTPHooks(debugHooks{})
}

func (debugHooks) OnRunStart(ctx context.Context, runID string, packages, concurrency int) {
	loggerFromContext(ctx).Debug("Run started", "run", runID, "packages", packages, "concurrency", concurrency)
}

func (debugHooks) OnRunComplete(ctx context.Context, runID string, d time.Duration, err error) {
	loggerFromContext(ctx).Debug("Run finished", "run", runID, "duration", d.Round(time.Millisecond), "err", err)
}

func (debugHooks) OnTaskStart(ctx context.Context, runID, pkg string) {
	loggerFromContext(ctx).Debug("Task started", "run", runID, "package", pkg)
}

func (debugHooks) OnTaskComplete(ctx context.Context, runID, pkg string, d time.Duration, err error) {
	loggerFromContext(ctx).Debug("Task finished", "run", runID, "package", pkg, "duration", d.Round(time.Millisecond), "err", err)
}

func (debugHooks) OnCycle(ctx context.Context, runID string, members []string) {
	loggerFromContext(ctx).Debug("Cycle collapsed", "run", runID, "members", members)
}

func (debugHooks) OnCacheHit(ctx context.Context, keyType string) {
	loggerFromContext(ctx).Debug("Cache hit", "type", keyType)
}

func (debugHooks) OnCacheMiss(ctx context.Context, keyType string) {
	loggerFromContext(ctx).Debug("Cache miss", "type", keyType)
}

func (debugHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	loggerFromContext(ctx).Debug("Cache set", "type", keyType, "bytes", size)
}

func (debugHooks) OnRequest(ctx context.Context, method, host, path string) {
	loggerFromContext(ctx).Debug("HTTP request", "method", method, "host", host, "path", path)
}

func (debugHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	loggerFromContext(ctx).Debug("HTTP response", "method", method, "host", host, "path", path,
		"status", status, "duration", d.Round(time.Millisecond))
}

func (debugHooks) OnError(ctx context.Context, method, host, path string, err error) {
	loggerFromContext(ctx).Debug("HTTP error", "method", method, "host", host, "path", path, "err", err)
}
