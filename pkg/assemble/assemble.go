package assemble

import (
	"github.com/seisview/seisview/pkg/errors"
)

// Layout is a strided-copy descriptor. It describes how a tile's flat value
// buffer scatters into the destination buffer: starting at InitialSkip, each
// of Iterations rounds writes ChunkSize contiguous elements, advancing the
// source cursor by Substride and the destination cursor by Superstride.
//
// All fields must be non-negative. The JSON field names are the service's
// wire names.
type Layout struct {
	InitialSkip int `json:"initial_skip"` // destination start offset
	ChunkSize   int `json:"chunk_size"`   // elements copied per iteration
	Iterations  int `json:"iterations"`   // number of copy rounds
	Substride   int `json:"substride"`    // source advance per iteration
	Superstride int `json:"superstride"`  // destination advance per iteration
}

// Validate checks the layout field contract: every field non-negative.
// Negative strides have no defined meaning in the wire format and are
// rejected rather than interpreted as reverse iteration.
func (l Layout) Validate() error {
	if l.InitialSkip < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "initial_skip is negative: %d", l.InitialSkip)
	}
	if l.ChunkSize < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "chunk_size is negative: %d", l.ChunkSize)
	}
	if l.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "iterations is negative: %d", l.Iterations)
	}
	if l.Substride < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "substride is negative: %d", l.Substride)
	}
	if l.Superstride < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "superstride is negative: %d", l.Superstride)
	}
	return nil
}

// writes reports whether the layout moves any data at all.
func (l Layout) writes() bool {
	return l.Iterations > 0 && l.ChunkSize > 0
}

// Tile is one fragment of a slice: a flat value buffer plus the layout that
// scatters it into the destination. Tiles arrive as an ordered sequence;
// order matters for overlap resolution.
type Tile struct {
	Layout Layout    `json:"layout"`
	V      []float32 `json:"v"`
}

// Option configures an assembly pass.
type Option func(*config)

type config struct {
	requireCoverage bool
}

// WithFullCoverage makes Assemble fail with INCOMPLETE_COVERAGE unless the
// tiles' writes cover every destination offset. Without it, untouched
// offsets stay zero, which is the wire format's defined fallback.
func WithFullCoverage() Option {
	return func(c *config) { c.requireCoverage = true }
}

// Assemble applies tiles in input order to a zero-initialized buffer of
// shape0 x shape1 elements and returns it as a row-major slice.
//
// Every tile is validated up front: layout fields must be non-negative, the
// implied source span must fit the tile's value buffer, and the implied
// destination span must fit the output. The first violation fails the call
// before any element is copied, so no partially assembled slice ever
// escapes. Overlapping writes resolve strictly by input order: the later
// tile wins.
func Assemble(tiles []Tile, shape0, shape1 int, opts ...Option) (*Slice, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := errors.ValidateShape(shape0, shape1); err != nil {
		return nil, err
	}
	n := shape0 * shape1

	for i, t := range tiles {
		if err := validateTile(i, t, n); err != nil {
			return nil, err
		}
	}

	data := make([]float32, n)
	var written []bool
	if cfg.requireCoverage {
		written = make([]bool, n)
	}

	for _, t := range tiles {
		l := t.Layout
		dst, src := l.InitialSkip, 0
		for range l.Iterations {
			copy(data[dst:dst+l.ChunkSize], t.V[src:src+l.ChunkSize])
			if written != nil {
				for k := dst; k < dst+l.ChunkSize; k++ {
					written[k] = true
				}
			}
			src += l.Substride
			dst += l.Superstride
		}
	}

	if written != nil {
		for off, ok := range written {
			if !ok {
				return nil, errors.New(errors.ErrCodeIncompleteCoverage,
					"offset %d (row %d, col %d) not covered by any tile", off, off/shape1, off%shape1)
			}
		}
	}

	return &Slice{shape0: shape0, shape1: shape1, data: data}, nil
}

// validateTile checks one tile's layout contract and the spans it implies.
// With non-negative strides both cursors are monotone, so the furthest
// element touched is in the last iteration; the span checks use that closed
// form. Arithmetic runs in int64 so hostile field values cannot wrap.
func validateTile(idx int, t Tile, dstLen int) error {
	l := t.Layout
	if err := l.Validate(); err != nil {
		return err
	}
	if !l.writes() {
		return nil
	}

	srcEnd := int64(l.Iterations-1)*int64(l.Substride) + int64(l.ChunkSize)
	if srcEnd > int64(len(t.V)) {
		return errors.New(errors.ErrCodeSourceBounds,
			"tile %d layout reads %d elements but value buffer has %d", idx, srcEnd, len(t.V))
	}

	dstEnd := int64(l.InitialSkip) + int64(l.Iterations-1)*int64(l.Superstride) + int64(l.ChunkSize)
	if dstEnd > int64(dstLen) {
		return errors.New(errors.ErrCodeDestBounds,
			"tile %d layout writes through offset %d but destination has %d elements", idx, dstEnd, dstLen)
	}

	return nil
}
