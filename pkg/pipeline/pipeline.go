// Package pipeline provides the core slice pipeline for Seisview.
//
// This package implements the complete fetch → assemble → render pipeline
// that can be used by CLI and server components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Download the tile payload for one slice query
//  2. Assemble: Reassemble the tiles into a dense two-dimensional slice
//  3. Render: Rasterize the slice into a PNG heatmap
//
// Each stage can be run independently or as part of the complete pipeline.
// Every stage is cached. The fetch stage caches the raw payload under the
// query key; the assemble and render stages key their results by the
// content hash of their input, so an unchanged payload short-circuits
// everything downstream of it even on a forced refetch.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    GUID:   "0d235a7138104e00c421e63f5e3261bf2dc3254b",
//	    Dim:    0,
//	    Lineno: 1960,
//	}
//	result, err := runner.Execute(ctx, client, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.PNG
//
// Run individual stages:
//
//	// Fetch only
//	tiles, err := runner.Fetch(ctx, client, opts)
//
//	// Assemble with existing tiles
//	slice, err := runner.Assemble(ctx, tiles, opts)
//
//	// Render with an existing slice
//	png, err := runner.Render(ctx, slice, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/cache"
	"github.com/seisview/seisview/pkg/errors"
	"github.com/seisview/seisview/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultColormap is the palette applied when none is requested.
	// Signed amplitudes read best on the diverging blue-white-red ramp.
	DefaultColormap = string(render.Seismic)

	// DefaultScale leaves rasters at one pixel per sample. CLI users can
	// raise this so small slices do not render as thumbnails.
	DefaultScale = 1

	// MaxScale bounds the upscaling factor. A survey slice can run to a
	// few thousand samples per axis, and scaling past this produces
	// rasters too large to encode in reasonable memory.
	MaxScale = 32
)

// FormatPNG is the raster format the pipeline produces. Terminal previews
// are rendered directly by callers and never cached.
const FormatPNG = "png"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the slice pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	GUID    string `json:"guid"`
	Dim     int    `json:"dim"`
	Lineno  int    `json:"lineno"`
	Refresh bool   `json:"refresh,omitempty"`

	// Assembly options. Leaving both shapes zero derives them from the
	// survey manifest during Execute.
	Shape0          int  `json:"shape0,omitempty"`
	Shape1          int  `json:"shape1,omitempty"`
	RequireCoverage bool `json:"require_coverage,omitempty"`

	// Render options. VMin and VMax pin the normalization range; both
	// zero means derive the range from the data.
	Colormap     string  `json:"colormap,omitempty"`
	Transpose    bool    `json:"transpose,omitempty"`
	FlipVertical bool    `json:"flip_vertical,omitempty"`
	Scale        int     `json:"scale,omitempty"`
	VMin         float64 `json:"vmin,omitempty"`
	VMax         float64 `json:"vmax,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Slice is the assembled two-dimensional slice.
	Slice *assemble.Slice

	// PayloadHash is the content hash of the fetched tile payload.
	PayloadHash string

	// PNG is the rendered raster.
	PNG []byte

	// Shape0 and Shape1 are the dimensions of the assembled slice.
	Shape0 int
	Shape1 int

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TileCount    int
	FetchTime    time.Duration
	AssembleTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit    bool // Whether the tile payload came from cache
	AssembleHit bool // Whether the assembled slice came from cache
	RenderHit   bool // Whether the rendered image came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateColormap checks that a colormap name is known.
func ValidateColormap(name string) error {
	_, err := render.ParseColormap(name)
	return err
}

// ValidateScale checks that a raster scale factor is usable.
func ValidateScale(n int) error {
	if n < 0 || n > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %d out of range [0, %d]", n, MaxScale)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if o.Shape0 != 0 || o.Shape1 != 0 {
		if err := errors.ValidateShape(o.Shape0, o.Shape1); err != nil {
			return err
		}
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for fetching tiles.
func (o *Options) ValidateForFetch() error {
	if err := errors.ValidateGUID(o.GUID); err != nil {
		return err
	}
	if err := errors.ValidateDimension(o.Dim); err != nil {
		return err
	}
	if err := errors.ValidateLineno(o.Lineno); err != nil {
		return err
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// ValidateForAssemble checks required fields for assembling a slice.
// Both shapes must be concrete by the time a slice is assembled; Execute
// fills them in from the manifest when the caller left them zero.
func (o *Options) ValidateForAssemble() error {
	if err := errors.ValidateShape(o.Shape0, o.Shape1); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Colormap == "" {
		o.Colormap = DefaultColormap
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateColormap(o.Colormap); err != nil {
		return err
	}
	if err := ValidateScale(o.Scale); err != nil {
		return err
	}
	if o.HasExplicitRange() && o.VMin > o.VMax {
		return errors.New(errors.ErrCodeInvalidInput, "range minimum %g exceeds maximum %g", o.VMin, o.VMax)
	}
	return nil
}

// HasExplicitRange reports whether the caller pinned the normalization
// range. Both bounds zero means derive the range from the data.
func (o *Options) HasExplicitRange() bool {
	return o.VMin != 0 || o.VMax != 0
}

// renderOptions translates Options into render package options.
func (o *Options) renderOptions() ([]render.Option, error) {
	cmap, err := render.ParseColormap(o.Colormap)
	if err != nil {
		return nil, err
	}
	ropts := []render.Option{render.WithColormap(cmap)}
	if o.Transpose {
		ropts = append(ropts, render.WithTranspose())
	}
	if o.FlipVertical {
		ropts = append(ropts, render.WithFlipVertical())
	}
	if o.Scale > 1 {
		ropts = append(ropts, render.WithScale(o.Scale))
	}
	if o.HasExplicitRange() {
		ropts = append(ropts, render.WithRange(o.VMin, o.VMax))
	}
	return ropts, nil
}

// QueryKeyOpts returns cache key options for the fetch stage.
func (o *Options) QueryKeyOpts(baseURL string) cache.QueryKeyOpts {
	return cache.QueryKeyOpts{
		BaseURL: baseURL,
	}
}

// SliceKeyOpts returns cache key options for the assemble stage.
func (o *Options) SliceKeyOpts() cache.SliceKeyOpts {
	return cache.SliceKeyOpts{
		Shape0:       o.Shape0,
		Shape1:       o.Shape1,
		FullCoverage: o.RequireCoverage,
	}
}

// ImageKeyOpts returns cache key options for the render stage.
func (o *Options) ImageKeyOpts(format string) cache.ImageKeyOpts {
	return cache.ImageKeyOpts{
		Format:       format,
		Colormap:     o.Colormap,
		Transpose:    o.Transpose,
		FlipVertical: o.FlipVertical,
		Scale:        o.Scale,
		VMin:         o.VMin,
		VMax:         o.VMax,
	}
}
