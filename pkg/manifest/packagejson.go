package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stackrun/pkg/errors"
)

// FileName is the manifest file name looked up in every package directory.
const FileName = "package.json"

// ParseFile reads the package.json at path.
// The package location is the directory containing the file.
func ParseFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return Parse(data, dir)
}

// Parse decodes package.json bytes into a Package located at location.
// A manifest without a name is rejected because the name is the graph key.
func Parse(data []byte, location string) (*Package, error) {
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", filepath.Join(location, FileName))
	}

	name := strings.TrimSpace(pkg.Name)
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s has no name", filepath.Join(location, FileName))
	}
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}

	return &Package{
		Name:                 name,
		Version:              strings.TrimSpace(pkg.Version),
		Location:             location,
		Private:              pkg.Private,
		Scripts:              nonNil(pkg.Scripts),
		Dependencies:         nonNil(pkg.Dependencies),
		DevDependencies:      nonNil(pkg.DevDependencies),
		PeerDependencies:     nonNil(pkg.PeerDependencies),
		OptionalDependencies: nonNil(pkg.OptionalDependencies),
	}, nil
}

// Workspaces returns the workspace globs declared in a root package.json.
// Both the array form and the {"packages": [...]} object form are accepted.
// Returns nil if the manifest declares no workspaces.
func Workspaces(data []byte) ([]string, error) {
	var root struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse root %s", FileName)
	}
	if len(root.Workspaces) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(root.Workspaces, &list); err == nil {
		return list, nil
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(root.Workspaces, &obj); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "workspaces must be an array or an object with packages")
	}
	return obj.Packages, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

type packageFile struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Private              bool              `json:"private"`
	Scripts              map[string]string `json:"scripts"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}
