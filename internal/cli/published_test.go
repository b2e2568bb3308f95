package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestPublished(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.EscapedPath() != "/@acme%2Futil/1.0.0" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"name": "@acme/util", "version": "1.0.0"}`)
	}))
	defer server.Close()

	root := testRepo(t)
	out, err := runCLI(t, root, "published", "--no-cache", "--registry", server.URL)
	if err != nil {
		t.Fatalf("published error: %v", err)
	}
	if !strings.Contains(out, "@acme/core@1.2.0\n") {
		t.Errorf("published should list @acme/core@1.2.0:\n%s", out)
	}
	if strings.Contains(out, "@acme/util@") || strings.Contains(out, "@acme/app@") {
		t.Errorf("published listed a published or private package:\n%s", out)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("registry hits = %d, want 2", got)
	}
}

func TestRegistryOptions(t *testing.T) {
	tests := []struct {
		registry string
		want     int
	}{
		{"https://registry.npmjs.org", 1},
		{"https://registry.npmjs.org/", 1},
		{"https://npm.internal.example.com", 2},
		{"not a url", 1},
	}
	for _, tt := range tests {
		if got := len(registryOptions(tt.registry)); got != tt.want {
			t.Errorf("len(registryOptions(%q)) = %d, want %d", tt.registry, got, tt.want)
		}
	}
}
