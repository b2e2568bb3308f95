package cache

import "strings"

// Keyer builds cache keys.
type Keyer interface {
	// PackageKey names the registry document for one package version.
	PackageKey(registry, name, version string) string
}

// DefaultKeyer produces keys of the form "pkg:<registry>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PackageKey hashes the name and version so scoped names are safe as keys.
func (DefaultKeyer) PackageKey(registry, name, version string) string {
	return hashKey("pkg:"+registry, name, version)
}

// ScopedKeyer prefixes every key, keeping separate namespaces in a shared
// backend such as Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (or the default keyer) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PackageKey returns the prefixed key.
func (k *ScopedKeyer) PackageKey(registry, name, version string) string {
	return k.prefix + k.inner.PackageKey(registry, name, version)
}

// keyType returns the part of key before its first colon, for metrics.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
