package server

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/seisview/seisview/pkg/assemble"
)

// Wavefield is a deterministic synthetic cube. Every guid maps to its own
// set of plane waves, so any survey id resolves and renders something
// recognizable without storage behind the server.
type Wavefield struct {
	shape [3]int
	freq  [3]float64
	phase float64
	seed  uint64
}

// NewWavefield derives the field for guid over the given cube shape.
func NewWavefield(guid string, shape [3]int) *Wavefield {
	h := fnv.New64a()
	h.Write([]byte(guid))
	seed := h.Sum64()

	w := &Wavefield{shape: shape, seed: seed}
	for k := range w.freq {
		w.freq[k] = 0.05 + float64((seed>>(8*k))&0xff)/640.0
	}
	w.phase = 2 * math.Pi * float64((seed>>32)&0xffff) / 65536.0
	return w
}

// At returns the amplitude at one cube coordinate: a few superposed
// ripples, tapered with depth so slices read like reflection data.
func (w *Wavefield) At(i0, i1, i2 int) float32 {
	x := float64(i0) * w.freq[0]
	y := float64(i1) * w.freq[1]
	z := float64(i2) * w.freq[2]

	v := math.Sin(2*math.Pi*(x+z)+w.phase) +
		0.5*math.Cos(2*math.Pi*(y-z)-w.phase) +
		0.25*math.Sin(2*math.Pi*(x+y))
	taper := 1 / (1 + 0.015*float64(i2))
	return float32(v * taper)
}

// Dimensions lists the axis labels the manifest reports: inline and
// crossline numbers counted from 1, depth in 4 ms steps.
func (w *Wavefield) Dimensions() [][]int {
	dims := make([][]int, len(w.shape))
	for d, n := range w.shape {
		dims[d] = make([]int, n)
		for i := range n {
			if d == 2 {
				dims[d][i] = 4 * i
			} else {
				dims[d][i] = i + 1
			}
		}
	}
	return dims
}

// SliceShape returns the dimensions of a slice along dim: the two
// remaining axis lengths in cube order.
func (w *Wavefield) SliceShape(dim int) (int, int) {
	switch dim {
	case 0:
		return w.shape[1], w.shape[2]
	case 1:
		return w.shape[0], w.shape[2]
	default:
		return w.shape[0], w.shape[1]
	}
}

// SliceValues samples the plane at index along dim, row-major.
func (w *Wavefield) SliceValues(dim, index int) []float32 {
	shape0, shape1 := w.SliceShape(dim)
	out := make([]float32, shape0*shape1)
	for i := range shape0 {
		for j := range shape1 {
			var v float32
			switch dim {
			case 0:
				v = w.At(index, i, j)
			case 1:
				v = w.At(i, index, j)
			default:
				v = w.At(i, j, index)
			}
			out[i*shape1+j] = v
		}
	}
	return out
}

// SplitTiles cuts a row-major slice into count column blocks with real
// strided layouts: each block's source is packed while its destination
// strides by the full row, the same shape fragment responses have in
// production. Blocks come back in a shuffled order derived from seed, so
// clients cannot lean on arrival order.
func SplitTiles(values []float32, shape0, shape1, count int, seed uint64) []assemble.Tile {
	count = max(count, 1)
	count = min(count, shape1)

	tiles := make([]assemble.Tile, 0, count)
	for t := range count {
		c0 := t * shape1 / count
		c1 := (t + 1) * shape1 / count
		width := c1 - c0

		v := make([]float32, 0, width*shape0)
		for i := range shape0 {
			v = append(v, values[i*shape1+c0:i*shape1+c1]...)
		}
		tiles = append(tiles, assemble.Tile{
			Layout: assemble.Layout{
				InitialSkip: c0,
				ChunkSize:   width,
				Iterations:  shape0,
				Substride:   width,
				Superstride: shape1,
			},
			V: v,
		})
	}

	rng := rand.New(rand.NewPCG(seed, uint64(shape0*shape1)))
	rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })
	return tiles
}
