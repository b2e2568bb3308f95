package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 214 characters (the npm limit)
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 214 {
		return New(ErrCodeInvalidPackage, "package name too long (max 214 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// npmPackageNameRegex matches valid npm package names.
var npmPackageNameRegex = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)

// ValidateNpmPackageName validates an npm package name.
func ValidateNpmPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	// npm names must be lowercase
	if strings.ToLower(name) != name {
		return New(ErrCodeInvalidPackage, "npm package names must be lowercase: %q", name)
	}

	if !npmPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}

	return nil
}

// scriptNameRegex matches lifecycle script names (build, test:unit, pre-build, ...).
var scriptNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9:._-]*$`)

// ValidateScriptName validates the name of an npm script passed on the command line.
func ValidateScriptName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "script name cannot be empty")
	}
	if !scriptNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid script name: %q", name)
	}
	return nil
}

// ValidateWorkspacePattern validates a workspace glob from configuration.
// Patterns must stay inside the repository root.
//
// Validation rules:
//   - Pattern cannot be empty
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
func ValidateWorkspacePattern(pattern string) error {
	if pattern == "" {
		return New(ErrCodeInvalidPath, "workspace pattern cannot be empty")
	}

	for _, r := range pattern {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "workspace pattern contains invalid characters")
		}
	}

	if filepath.IsAbs(pattern) || strings.HasPrefix(pattern, "/") {
		return New(ErrCodeInvalidPath, "workspace pattern must be relative: %q", pattern)
	}

	for _, part := range strings.Split(filepath.ToSlash(pattern), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "workspace pattern cannot leave the repository: %q", pattern)
		}
	}

	return nil
}
