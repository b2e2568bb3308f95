package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Runner hooks
	r := NoopRunnerHooks{}
	r.OnRunStart(ctx, "run-1", 12, 4)
	r.OnTaskStart(ctx, "run-1", "@acme/core")
	r.OnTaskComplete(ctx, "run-1", "@acme/core", time.Second, nil)
	r.OnCycle(ctx, "run-1", []string{"a", "b"})
	r.OnRunComplete(ctx, "run-1", time.Minute, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "published")
	c.OnCacheMiss(ctx, "published")
	c.OnCacheSet(ctx, "published", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/react")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/react", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/react", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Runner().(NoopRunnerHooks); !ok {
		t.Error("Runner() should return NoopRunnerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customRunner := &testRunnerHooks{}
	SetRunnerHooks(customRunner)
	if Runner() != customRunner {
		t.Error("SetRunnerHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Runner().(NoopRunnerHooks); !ok {
		t.Error("Reset() should restore NoopRunnerHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRunnerHooks{}
	SetRunnerHooks(custom)

	// Setting nil should be ignored
	SetRunnerHooks(nil)

	if Runner() != custom {
		t.Error("SetRunnerHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testRunnerHooks struct{ NoopRunnerHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
