package query

import (
	"github.com/seisview/seisview/pkg/errors"
)

// Manifest describes a survey stored on a slice server.
//
// Dimensions holds the axis labels of the cube in storage order:
// Dimensions[0] are the inline numbers, Dimensions[1] the crossline
// numbers, and Dimensions[2] the sample offsets. Labels are what the
// acquisition used, so they are usually neither dense nor zero-based.
type Manifest struct {
	GUID       string  `json:"guid"`
	Dimensions [][]int `json:"dimensions"`
}

// NDims returns the number of axes in the cube.
func (m *Manifest) NDims() int {
	return len(m.Dimensions)
}

// SliceShape returns the (shape0, shape1) of a slice cut along dim.
// Cutting removes that axis; the shape is the lengths of the two
// remaining axes in storage order.
func (m *Manifest) SliceShape(dim int) (int, int, error) {
	if len(m.Dimensions) != 3 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "manifest has %d dimensions, want 3", len(m.Dimensions))
	}
	if err := errors.ValidateDimension(dim); err != nil {
		return 0, 0, err
	}

	switch dim {
	case 0:
		return len(m.Dimensions[1]), len(m.Dimensions[2]), nil
	case 1:
		return len(m.Dimensions[0]), len(m.Dimensions[2]), nil
	default:
		return len(m.Dimensions[0]), len(m.Dimensions[1]), nil
	}
}

// LinenoIndex returns the position of lineno on the given axis.
// Line numbers are labels, not indices; a missing label is an error.
func (m *Manifest) LinenoIndex(dim, lineno int) (int, error) {
	if dim < 0 || dim >= len(m.Dimensions) {
		return 0, errors.New(errors.ErrCodeInvalidDimension, "dimension %d out of range", dim)
	}
	for i, label := range m.Dimensions[dim] {
		if label == lineno {
			return i, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidLineno, "line %d not in dimension %d", lineno, dim)
}
