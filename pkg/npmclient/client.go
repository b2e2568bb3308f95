// Package npmclient runs npm scripts and arbitrary commands inside package
// directories.
//
// Every child process inherits the current environment plus the variables of
// an optional env file, and gets LERNA_PACKAGE_NAME and LERNA_ROOT_PATH so
// existing lerna-aware scripts keep working.
package npmclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"sync"

	"github.com/joho/godotenv"

	stackerrors "github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// Environment variables set for every child process.
const (
	EnvPackageName = "LERNA_PACKAGE_NAME"
	EnvRootPath    = "LERNA_ROOT_PATH"
)

// Client executes commands for packages of one repository. It is safe for
// concurrent use once configured.
type Client struct {
	NpmClient string    // npm, yarn or pnpm
	Root      string    // Repository root
	Stdout    io.Writer // Defaults to os.Stdout
	Stderr    io.Writer // Defaults to os.Stderr

	// Stream writes output live, each line prefixed. Otherwise a package's
	// output is buffered and written in one piece when its command exits.
	Stream bool

	// Prefix renders the line prefix for a package in stream mode.
	// Defaults to "name: ".
	Prefix func(pkg string) string

	env []string
	mu  sync.Mutex // Serializes writes to Stdout/Stderr
}

// New returns a client for the repository at root.
func New(npmClient, root string) *Client {
	if npmClient == "" {
		npmClient = "npm"
	}
	return &Client{NpmClient: npmClient, Root: root}
}

// LoadEnvFile adds the variables of a dotenv file to every child process.
func (c *Client) LoadEnvFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return stackerrors.Wrap(stackerrors.ErrCodeFileNotFound, err, "env file %s", path)
		}
		return stackerrors.Wrap(stackerrors.ErrCodeInvalidConfig, err, "parse env file %s", path)
	}
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		c.env = append(c.env, k+"="+vars[k])
	}
	return nil
}

// ScriptArgs returns the client arguments that run script with extra args.
// npm needs "--" before arguments meant for the script itself.
func (c *Client) ScriptArgs(script string, args []string) []string {
	out := []string{"run", script}
	if len(args) == 0 {
		return out
	}
	if c.NpmClient == "npm" {
		out = append(out, "--")
	}
	return append(out, args...)
}

// RunScript runs an npm script of pkg through the configured client.
func (c *Client) RunScript(ctx context.Context, pkg *manifest.Package, script string, args []string) error {
	if !pkg.HasScript(script) {
		return stackerrors.New(stackerrors.ErrCodeNotFound, "%s has no %q script", pkg.Name, script)
	}
	return c.Exec(ctx, pkg, c.NpmClient, c.ScriptArgs(script, args))
}

// Exec runs name with args in the directory of pkg.
func (c *Client) Exec(ctx context.Context, pkg *manifest.Package, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = pkg.Location
	cmd.Env = c.environ(pkg)

	stdout, stderr := c.writers()
	var err error
	if c.Stream {
		prefix := pkg.Name + ": "
		if c.Prefix != nil {
			prefix = c.Prefix(pkg.Name)
		}
		out := newPrefixWriter(prefix, stdout, &c.mu)
		errOut := newPrefixWriter(prefix, stderr, &c.mu)
		cmd.Stdout, cmd.Stderr = out, errOut
		err = cmd.Run()
		out.Flush()
		errOut.Flush()
	} else {
		var buf bytes.Buffer
		cmd.Stdout, cmd.Stderr = &buf, &buf
		err = cmd.Run()
		dest := stdout
		if err != nil {
			dest = stderr
		}
		c.mu.Lock()
		_, _ = buf.WriteTo(dest)
		c.mu.Unlock()
	}

	if err != nil {
		if code := ExitCode(err); code > 0 {
			return stackerrors.Wrap(stackerrors.ErrCodeTaskFailed, err, "%s exited with code %d", name, code)
		}
		return stackerrors.Wrap(stackerrors.ErrCodeTaskFailed, err, "run %s", name)
	}
	return nil
}

func (c *Client) environ(pkg *manifest.Package) []string {
	env := os.Environ()
	env = append(env, c.env...)
	return append(env,
		EnvPackageName+"="+pkg.Name,
		EnvRootPath+"="+c.Root,
	)
}

func (c *Client) writers() (io.Writer, io.Writer) {
	stdout, stderr := c.Stdout, c.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

// ExitCode returns the exit status carried by err, or -1 if err does not
// come from an exited process.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
