package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/cache"
	"github.com/seisview/seisview/pkg/errors"
	seisio "github.com/seisview/seisview/pkg/io"
	"github.com/seisview/seisview/pkg/observability"
	"github.com/seisview/seisview/pkg/query"
	"github.com/seisview/seisview/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → assemble → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, client *query.Client, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}
	hooks := observability.Pipeline()

	// Stage 1: Fetch
	fetchStart := time.Now()
	hooks.OnFetchStart(ctx, opts.GUID, opts.Dim, opts.Lineno)
	tiles, fetchHit, err := r.FetchWithCacheInfo(ctx, client, opts)
	hooks.OnFetchComplete(ctx, opts.GUID, len(tiles), time.Since(fetchStart), err)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.TileCount = len(tiles)
	result.CacheInfo.FetchHit = fetchHit

	// Compute payload hash for cache keys and API responses
	if hash, err := hashTiles(tiles); err == nil {
		result.PayloadHash = hash
	}

	r.Logger.Info("fetched tiles",
		"guid", opts.GUID,
		"dim", opts.Dim,
		"lineno", opts.Lineno,
		"tiles", len(tiles),
		"duration", result.Stats.FetchTime)

	// Derive the slice shape from the manifest when the caller left it out
	if opts.Shape0 == 0 && opts.Shape1 == 0 {
		m, err := client.FetchManifest(ctx, opts.GUID, opts.Refresh)
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		if opts.Shape0, opts.Shape1, err = m.SliceShape(opts.Dim); err != nil {
			return nil, err
		}
		r.Logger.Debug("derived slice shape",
			"shape0", opts.Shape0,
			"shape1", opts.Shape1)
	}

	// Stage 2: Assemble
	assembleStart := time.Now()
	hooks.OnAssembleStart(ctx, len(tiles), opts.Shape0, opts.Shape1)
	s, assembleHit, err := r.AssembleWithCacheInfo(ctx, tiles, opts)
	hooks.OnAssembleComplete(ctx, opts.Shape0, opts.Shape1, time.Since(assembleStart), err)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	result.Slice = s
	result.Shape0 = opts.Shape0
	result.Shape1 = opts.Shape1
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.CacheInfo.AssembleHit = assembleHit

	r.Logger.Info("assembled slice",
		"shape0", opts.Shape0,
		"shape1", opts.Shape1,
		"duration", result.Stats.AssembleTime)

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, FormatPNG)
	png, renderHit, err := r.RenderWithCacheInfo(ctx, s, opts)
	hooks.OnRenderComplete(ctx, FormatPNG, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.PNG = png
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered image",
		"format", FormatPNG,
		"bytes", len(png),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo downloads the tile payload with caching and returns
// cache hit info. The raw payload is cached verbatim under the query key
// so a repeat query skips the network entirely.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, client *query.Client, opts Options) ([]assemble.Tile, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.QueryKey(opts.GUID, opts.Dim, opts.Lineno, opts.QueryKeyOpts(client.BaseURL()))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			tiles, err := seisio.ReadTiles(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "query")
				return tiles, true, nil // Cache hit
			}
			// If deserialization fails, fall through to refetch
		}
		observability.Cache().OnCacheMiss(ctx, "query")
	}

	// Fetch
	raw, err := client.FetchTilesRaw(ctx, opts.GUID, opts.Dim, opts.Lineno)
	if err != nil {
		return nil, false, err
	}
	tiles, err := seisio.ReadTiles(bytes.NewReader(raw))
	if err != nil {
		return nil, false, err
	}

	// Cache the payload
	if err := r.Cache.Set(ctx, cacheKey, raw, cache.TTLQuery); err == nil {
		observability.Cache().OnCacheSet(ctx, "query", len(raw))
	}

	return tiles, false, nil // Cache miss
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, client *query.Client, opts Options) ([]assemble.Tile, error) {
	tiles, _, err := r.FetchWithCacheInfo(ctx, client, opts)
	return tiles, err
}

// AssembleWithCacheInfo reassembles tiles into a slice with caching and
// returns cache hit info. The cache key is derived from the canonical
// encoding of the payload, so identical payloads share one cached slice
// no matter where they were fetched from.
func (r *Runner) AssembleWithCacheInfo(ctx context.Context, tiles []assemble.Tile, opts Options) (*assemble.Slice, bool, error) {
	if err := opts.ValidateForAssemble(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	payloadHash, err := hashTiles(tiles)
	if err != nil {
		return nil, false, fmt.Errorf("serialize tiles for cache key: %w", err)
	}
	cacheKey := r.Keyer.SliceKey(payloadHash, opts.SliceKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		s, err := seisio.ReadSlice(bytes.NewReader(data))
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "slice")
			return s, true, nil // Cache hit
		}
		// If deserialization fails, fall through to reassemble
	}
	observability.Cache().OnCacheMiss(ctx, "slice")

	// Assemble
	var aopts []assemble.Option
	if opts.RequireCoverage {
		aopts = append(aopts, assemble.WithFullCoverage())
	}
	s, err := assemble.Assemble(tiles, opts.Shape0, opts.Shape1, aopts...)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	var buf bytes.Buffer
	if err := seisio.WriteSlice(s, &buf); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLSlice); err == nil {
			observability.Cache().OnCacheSet(ctx, "slice", buf.Len())
		}
	}

	return s, false, nil // Cache miss
}

// Assemble is a convenience wrapper that calls AssembleWithCacheInfo and discards the cache hit info.
func (r *Runner) Assemble(ctx context.Context, tiles []assemble.Tile, opts Options) (*assemble.Slice, error) {
	s, _, err := r.AssembleWithCacheInfo(ctx, tiles, opts)
	return s, err
}

// RenderWithCacheInfo rasterizes a slice to PNG with caching and returns
// cache hit info. The cache key is derived from the canonical encoding of
// the slice plus every render option that shapes the output.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *assemble.Slice, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if s == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "nothing to render")
	}

	// Compute cache key
	sliceHash, err := hashSlice(s)
	if err != nil {
		return nil, false, fmt.Errorf("serialize slice for cache key: %w", err)
	}
	cacheKey := r.Keyer.ImageKey(sliceHash, opts.ImageKeyOpts(FormatPNG))

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "image")
		return data, true, nil // Cache hit
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	// Render
	ropts, err := opts.renderOptions()
	if err != nil {
		return nil, false, err
	}
	img, err := render.Heatmap(s, ropts...)
	if err != nil {
		return nil, false, err
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(img, &buf); err != nil {
		return nil, false, err
	}

	// Cache the result
	if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLImage); err == nil {
		observability.Cache().OnCacheSet(ctx, "image", buf.Len())
	}

	return buf.Bytes(), false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s *assemble.Slice, opts Options) ([]byte, error) {
	png, _, err := r.RenderWithCacheInfo(ctx, s, opts)
	return png, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashTiles returns the content hash of the canonical tile encoding.
func hashTiles(tiles []assemble.Tile) (string, error) {
	var buf bytes.Buffer
	if err := seisio.WriteTiles(tiles, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// hashSlice returns the content hash of the canonical slice encoding.
func hashSlice(s *assemble.Slice) (string, error) {
	var buf bytes.Buffer
	if err := seisio.WriteSlice(s, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}
