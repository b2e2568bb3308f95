package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackrun/pkg/errors"
)

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	pkgFile := filepath.Join(dir, "package.json")
	content := `{
  "name": "@acme/core",
  "version": "1.2.0",
  "private": true,
  "scripts": {"build": "tsc", "test": "jest"},
  "dependencies": {"@acme/util": "^1.0.0", "lodash": "^4.17.21"},
  "devDependencies": {"jest": "^29.0.0"},
  "peerDependencies": {"react": ">=18"},
  "optionalDependencies": {"fsevents": "^2.3.0"}
}`
	if err := os.WriteFile(pkgFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	pkg, err := ParseFile(pkgFile)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if pkg.Name != "@acme/core" {
		t.Errorf("Name = %q, want %q", pkg.Name, "@acme/core")
	}
	if pkg.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", pkg.Version, "1.2.0")
	}
	if !pkg.Private {
		t.Error("Private = false, want true")
	}
	if pkg.Location != dir {
		t.Errorf("Location = %q, want %q", pkg.Location, dir)
	}
	if !pkg.HasScript("build") || pkg.HasScript("lint") {
		t.Errorf("HasScript mismatch for scripts %v", pkg.Scripts)
	}
	if got := pkg.String(); got != "@acme/core@1.2.0" {
		t.Errorf("String() = %q, want %q", got, "@acme/core@1.2.0")
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "package.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ParseFile() error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"name": `},
		{"missing name", `{"version": "1.0.0"}`},
		{"blank name", `{"name": "  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "/repo/pkg")
			if !errors.Is(err, errors.ErrCodeInvalidManifest) {
				t.Errorf("Parse() error = %v, want code %s", err, errors.ErrCodeInvalidManifest)
			}
		})
	}
}

func TestParse_NilMapsBecomeEmpty(t *testing.T) {
	pkg, err := Parse([]byte(`{"name": "solo"}`), "/repo/solo")
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Dependencies == nil || pkg.DevDependencies == nil || pkg.Scripts == nil {
		t.Error("dependency and script maps should never be nil")
	}
	if got := pkg.String(); got != "solo" {
		t.Errorf("String() = %q, want %q", got, "solo")
	}
}

func TestDependenciesFor(t *testing.T) {
	pkg := &Package{
		Name:                 "app",
		Dependencies:         map[string]string{"a": "^1.0.0", "shared": "^1.0.0"},
		DevDependencies:      map[string]string{"b": "^1.0.0", "shared": "^2.0.0"},
		PeerDependencies:     map[string]string{"c": "^1.0.0"},
		OptionalDependencies: map[string]string{"d": "^1.0.0"},
	}

	if diff := cmp.Diff([]string{"a", "d", "shared"}, pkg.DependencyNames(GraphDependencies)); diff != "" {
		t.Errorf("DependencyNames(dependencies) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "shared"}, pkg.DependencyNames(GraphAllDependencies)); diff != "" {
		t.Errorf("DependencyNames(allDependencies) mismatch (-want +got):\n%s", diff)
	}

	all := pkg.AllDependencies()
	if all["shared"] != "^1.0.0" {
		t.Errorf("AllDependencies()[shared] = %q, want runtime range %q", all["shared"], "^1.0.0")
	}
}

func TestWorkspaces(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"array", `{"workspaces": ["packages/*", "apps/*"]}`, []string{"packages/*", "apps/*"}},
		{"object", `{"workspaces": {"packages": ["libs/**"], "nohoist": ["**/x"]}}`, []string{"libs/**"}},
		{"absent", `{"name": "root"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Workspaces([]byte(tt.data))
			if err != nil {
				t.Fatalf("Workspaces() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Workspaces() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := Workspaces([]byte(`{"workspaces": 42}`)); err == nil {
		t.Error("Workspaces() with a number should fail")
	}
}
