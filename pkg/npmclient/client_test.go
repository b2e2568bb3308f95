package npmclient

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func testPackage(t *testing.T, name string) *manifest.Package {
	t.Helper()
	return &manifest.Package{
		Name:     name,
		Version:  "1.0.0",
		Location: t.TempDir(),
		Scripts:  map[string]string{"build": "tsc"},
	}
}

func TestScriptArgs(t *testing.T) {
	tests := []struct {
		client string
		args   []string
		want   []string
	}{
		{"npm", nil, []string{"run", "build"}},
		{"npm", []string{"--watch"}, []string{"run", "build", "--", "--watch"}},
		{"yarn", []string{"--watch"}, []string{"run", "build", "--watch"}},
		{"pnpm", []string{"-w", "x"}, []string{"run", "build", "-w", "x"}},
	}
	for _, tt := range tests {
		c := New(tt.client, "/repo")
		if diff := cmp.Diff(tt.want, c.ScriptArgs("build", tt.args)); diff != "" {
			t.Errorf("%s ScriptArgs() mismatch (-want +got):\n%s", tt.client, diff)
		}
	}
	if New("", "/repo").NpmClient != "npm" {
		t.Error("New() should default to npm")
	}
}

func TestExec_Environment(t *testing.T) {
	requireShell(t)
	root := t.TempDir()
	envFile := filepath.Join(root, ".env")
	if err := os.WriteFile(envFile, []byte("API_URL=http://localhost\nMODE=ci\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	c := New("npm", root)
	c.Stdout = &out
	if err := c.LoadEnvFile(envFile); err != nil {
		t.Fatalf("LoadEnvFile() error: %v", err)
	}

	pkg := testPackage(t, "@acme/core")
	err := c.Exec(context.Background(), pkg, "sh", []string{"-c", `echo "$LERNA_PACKAGE_NAME|$LERNA_ROOT_PATH|$MODE|$(pwd)"`})
	if err != nil {
		t.Fatalf("Exec() error: %v", err)
	}

	got := strings.TrimSpace(out.String())
	wantPrefix := "@acme/core|" + root + "|ci|"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("output = %q, want prefix %q", got, wantPrefix)
	}
	if !strings.HasSuffix(got, filepath.Base(pkg.Location)) {
		t.Errorf("output = %q, want command to run in %s", got, pkg.Location)
	}
}

func TestExec_Stream(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	c := New("npm", t.TempDir())
	c.Stdout = &out
	c.Stream = true

	pkg := testPackage(t, "web")
	if err := c.Exec(context.Background(), pkg, "sh", []string{"-c", "echo one; printf two"}); err != nil {
		t.Fatalf("Exec() error: %v", err)
	}
	if got, want := out.String(), "web: one\nweb: two\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExec_Failure(t *testing.T) {
	requireShell(t)
	var stdout, stderr bytes.Buffer
	c := New("npm", t.TempDir())
	c.Stdout, c.Stderr = &stdout, &stderr

	err := c.Exec(context.Background(), testPackage(t, "broken"), "sh", []string{"-c", "echo oops; exit 3"})
	if !errors.Is(err, errors.ErrCodeTaskFailed) {
		t.Fatalf("Exec() error = %v, want code %s", err, errors.ErrCodeTaskFailed)
	}
	if ExitCode(err) != 3 {
		t.Errorf("ExitCode() = %d, want 3", ExitCode(err))
	}
	if !strings.Contains(stderr.String(), "oops") || stdout.Len() != 0 {
		t.Errorf("failed output should go to stderr, got stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestRunScript_Missing(t *testing.T) {
	c := New("npm", "/repo")
	err := c.RunScript(context.Background(), &manifest.Package{Name: "x", Scripts: map[string]string{}}, "build", nil)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("RunScript() error = %v, want code %s", err, errors.ErrCodeNotFound)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	c := New("npm", "/repo")
	if err := c.LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadEnvFile() error = %v, want code %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestPrefixWriter(t *testing.T) {
	var out bytes.Buffer
	var mu sync.Mutex
	w := newPrefixWriter("[a] ", &out, &mu)

	_, _ = w.Write([]byte("hel"))
	_, _ = w.Write([]byte("lo\nwor"))
	_, _ = w.Write([]byte("ld\npartial"))
	w.Flush()
	w.Flush()

	if got, want := out.String(), "[a] hello\n[a] world\n[a] partial\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
