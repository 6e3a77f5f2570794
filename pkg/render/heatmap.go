package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/errors"
)

// Option configures rendering.
type Option func(*config)

type config struct {
	colormap  Colormap
	transpose bool
	flipV     bool
	scale     int
	hasRange  bool
	lo, hi    float64
}

func defaultConfig() config {
	return config{colormap: Seismic, scale: 1}
}

// WithColormap selects the palette. Default is [Seismic].
func WithColormap(m Colormap) Option {
	return func(c *config) { c.colormap = m }
}

// WithTranspose exchanges rows and columns before rendering. Survey
// acquisition order and display order often disagree on which axis is
// vertical.
func WithTranspose() Option {
	return func(c *config) { c.transpose = true }
}

// WithFlipVertical mirrors the image top to bottom.
func WithFlipVertical() Option {
	return func(c *config) { c.flipV = true }
}

// WithScale upscales the raster by an integer factor using nearest
// neighbor, so each sample stays a crisp square. Factors below 2 leave
// the raster at native resolution.
func WithScale(n int) Option {
	return func(c *config) { c.scale = n }
}

// WithRange pins the normalization range instead of deriving it from the
// data. Values outside [lo, hi] clamp to the ends of the colormap.
func WithRange(lo, hi float64) Option {
	return func(c *config) {
		c.hasRange = true
		c.lo = lo
		c.hi = hi
	}
}

// Heatmap renders the slice as a raster, one pixel per sample, mapping
// values through the configured colormap.
//
// Without [WithRange], the Seismic palette normalizes symmetrically
// about zero (amplitudes are signed, so zero renders white); Grayscale
// normalizes over [min, max]. A collapsed range renders every sample at
// the colormap midpoint, and NaN or infinite samples render as the color
// of zero.
func Heatmap(s *assemble.Slice, opts ...Option) (*image.NRGBA, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cz, err := newColorizer(s, cfg)
	if err != nil {
		return nil, err
	}

	rows, cols := cz.slice.Shape()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for i := range rows {
		for j := range cols {
			img.SetNRGBA(j, i, cz.at(i, j))
		}
	}

	if cfg.flipV {
		img = imaging.FlipV(img)
	}
	if cfg.scale > 1 {
		img = imaging.Resize(img, cols*cfg.scale, rows*cfg.scale, imaging.NearestNeighbor)
	}
	return img, nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(img image.Image, w io.Writer) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// colorizer maps slice samples to colors under one normalization range.
type colorizer struct {
	slice *assemble.Slice
	cmap  Colormap
	lo    float64
	hi    float64
}

func newColorizer(s *assemble.Slice, cfg config) (*colorizer, error) {
	if s == nil || s.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render")
	}
	if !cfg.colormap.valid() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown colormap %q", cfg.colormap)
	}
	if cfg.transpose {
		s = s.Transpose()
	}

	var lo, hi float64
	if cfg.hasRange {
		if cfg.lo > cfg.hi {
			return nil, errors.New(errors.ErrCodeInvalidInput, "range low %g above high %g", cfg.lo, cfg.hi)
		}
		lo, hi = cfg.lo, cfg.hi
	} else {
		lo, hi = finiteRange(s.Data())
		if cfg.colormap == Seismic {
			a := max(math.Abs(lo), math.Abs(hi))
			lo, hi = -a, a
		}
	}
	return &colorizer{slice: s, cmap: cfg.colormap, lo: lo, hi: hi}, nil
}

func (c *colorizer) at(i, j int) color.NRGBA {
	v := float64(c.slice.At(i, j))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return c.cmap.at(c.norm(v))
}

// norm maps v into [0, 1]. A collapsed range maps everything to the
// midpoint, which also catches all-NaN input.
func (c *colorizer) norm(v float64) float64 {
	if c.hi <= c.lo {
		return 0.5
	}
	t := (v - c.lo) / (c.hi - c.lo)
	return min(max(t, 0), 1)
}

// finiteRange returns the min and max of the finite values in data, or
// (0, 0) when there are none.
func finiteRange(data []float32) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		lo = min(lo, f)
		hi = max(hi, f)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
