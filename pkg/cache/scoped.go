package cache

// ScopedKeyer wraps a Keyer with a prefix so different tenants of a shared
// backend get separate namespaces. The demo service uses this to keep each
// survey collection's entries apart in one Redis instance.
//
// Example usage:
//
//	// Keys private to one authenticated user
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Shared keys for public surveys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// QueryKey generates a prefixed key for a raw tile payload.
func (k *ScopedKeyer) QueryKey(guid string, dim, lineno int, opts QueryKeyOpts) string {
	return k.prefix + k.inner.QueryKey(guid, dim, lineno, opts)
}

// SliceKey generates a prefixed key for an assembled slice.
func (k *ScopedKeyer) SliceKey(payloadHash string, opts SliceKeyOpts) string {
	return k.prefix + k.inner.SliceKey(payloadHash, opts)
}

// ImageKey generates a prefixed key for a rendered image.
func (k *ScopedKeyer) ImageKey(sliceHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(sliceHash, opts)
}

// HTTPKey generates a prefixed key for a cached HTTP response.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}
