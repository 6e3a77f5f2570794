package assemble

import (
	"math"

	"github.com/seisview/seisview/pkg/errors"
)

// Slice is a fully assembled cross section: a dense row-major matrix of
// shape0 rows by shape1 columns backed by one flat buffer. Element (i, j)
// lives at flat offset i*shape1 + j.
//
// A Slice is created by [Assemble] or [NewSlice] and not mutated afterwards.
// It is safe for concurrent reads.
type Slice struct {
	shape0 int
	shape1 int
	data   []float32
}

// NewSlice wraps an existing row-major buffer as a Slice. The buffer length
// must equal shape0*shape1; the buffer is retained, not copied.
func NewSlice(shape0, shape1 int, data []float32) (*Slice, error) {
	if err := errors.ValidateShape(shape0, shape1); err != nil {
		return nil, err
	}
	if len(data) != shape0*shape1 {
		return nil, errors.New(errors.ErrCodeInvalidShape,
			"buffer has %d elements, shape %dx%d needs %d", len(data), shape0, shape1, shape0*shape1)
	}
	return &Slice{shape0: shape0, shape1: shape1, data: data}, nil
}

// Shape returns the matrix dimensions (rows, columns).
func (s *Slice) Shape() (int, int) { return s.shape0, s.shape1 }

// Len returns the total element count, shape0*shape1.
func (s *Slice) Len() int { return len(s.data) }

// At returns element (i, j). It panics if the indices are out of range.
func (s *Slice) At(i, j int) float32 {
	if i < 0 || i >= s.shape0 || j < 0 || j >= s.shape1 {
		panic("assemble: index out of range")
	}
	return s.data[i*s.shape1+j]
}

// Row returns row i as a view into the underlying buffer, not a copy.
// It panics if i is out of range.
func (s *Slice) Row(i int) []float32 {
	if i < 0 || i >= s.shape0 {
		panic("assemble: row index out of range")
	}
	return s.data[i*s.shape1 : (i+1)*s.shape1]
}

// Data returns the flat row-major buffer as a view, not a copy.
func (s *Slice) Data() []float32 { return s.data }

// Transpose returns a new slice with rows and columns exchanged. The
// receiver is unchanged. Display pipelines use this because acquisition
// order and display order often disagree on which axis is vertical.
func (s *Slice) Transpose() *Slice {
	out := make([]float32, len(s.data))
	for i := range s.shape0 {
		for j := range s.shape1 {
			out[j*s.shape0+i] = s.data[i*s.shape1+j]
		}
	}
	return &Slice{shape0: s.shape1, shape1: s.shape0, data: out}
}

// MinMax returns the smallest and largest values in the slice, ignoring
// NaN. If every element is NaN it returns (0, 0).
func (s *Slice) MinMax() (min, max float32) {
	min = float32(math.Inf(1))
	max = float32(math.Inf(-1))
	for _, v := range s.data {
		if math.IsNaN(float64(v)) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min > max {
		return 0, 0
	}
	return min, max
}
