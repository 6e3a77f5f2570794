package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs for each pipeline stage. Raw tile payloads are short-lived
// because surveys get re-uploaded; assembled slices and rendered images are
// derived purely from their inputs and can live longer.
const (
	// TTLQuery is the lifetime for cached tile payloads.
	TTLQuery = 1 * time.Hour

	// TTLSlice is the lifetime for cached assembled slices.
	TTLSlice = 24 * time.Hour

	// TTLImage is the lifetime for cached rendered images.
	TTLImage = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of zero means the
	// entry does not expire.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer generates cache keys for each pipeline stage.
// Keys for derived stages are computed from the hash of the previous
// stage's output, so a change anywhere upstream invalidates downstream
// entries automatically.
type Keyer interface {
	// QueryKey generates a key for a raw tile payload.
	QueryKey(guid string, dim, lineno int, opts QueryKeyOpts) string

	// SliceKey generates a key for an assembled slice.
	SliceKey(payloadHash string, opts SliceKeyOpts) string

	// ImageKey generates a key for a rendered image.
	ImageKey(sliceHash string, opts ImageKeyOpts) string

	// HTTPKey generates a key for a cached HTTP response.
	HTTPKey(namespace, key string) string
}

// QueryKeyOpts holds the parameters that distinguish one tile fetch
// from another beyond the (guid, dim, lineno) triple.
type QueryKeyOpts struct {
	BaseURL string `json:"base_url"`
}

// SliceKeyOpts holds the assembly parameters that affect the output slice.
type SliceKeyOpts struct {
	Shape0       int  `json:"shape0"`
	Shape1       int  `json:"shape1"`
	FullCoverage bool `json:"full_coverage"`
}

// ImageKeyOpts holds the rendering parameters that affect the output image.
type ImageKeyOpts struct {
	Format       string  `json:"format"`
	Colormap     string  `json:"colormap"`
	Transpose    bool    `json:"transpose"`
	FlipVertical bool    `json:"flip_vertical"`
	Scale        int     `json:"scale"`
	VMin         float64 `json:"vmin"`
	VMax         float64 `json:"vmax"`
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// QueryKey generates a key for a raw tile payload.
func (k *DefaultKeyer) QueryKey(guid string, dim, lineno int, opts QueryKeyOpts) string {
	return hashKey("query", guid, dim, lineno, opts)
}

// SliceKey generates a key for an assembled slice.
func (k *DefaultKeyer) SliceKey(payloadHash string, opts SliceKeyOpts) string {
	return hashKey("slice", payloadHash, opts)
}

// ImageKey generates a key for a rendered image.
func (k *DefaultKeyer) ImageKey(sliceHash string, opts ImageKeyOpts) string {
	return hashKey("image", sliceHash, opts)
}

// HTTPKey generates a key for a cached HTTP response.
// The key is kept readable rather than hashed so entries can be
// recognized when inspecting a cache by hand.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
