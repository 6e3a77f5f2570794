package render

import (
	"image/color"
	"strings"

	"github.com/seisview/seisview/pkg/errors"
)

// Colormap names a value-to-color ramp.
type Colormap string

const (
	// Seismic is the diverging blue-white-red palette used for signed
	// amplitudes. White sits at the middle of the normalization range.
	Seismic Colormap = "seismic"

	// Grayscale maps the normalization range linearly from black to white.
	Grayscale Colormap = "gray"
)

// ParseColormap resolves a user-supplied colormap name. The empty string
// means Seismic.
func ParseColormap(name string) (Colormap, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "seismic":
		return Seismic, nil
	case "gray", "grayscale", "grey":
		return Grayscale, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown colormap %q (want seismic or gray)", name)
	}
}

func (c Colormap) valid() bool {
	switch c {
	case Seismic, Grayscale:
		return true
	}
	return false
}

type rampStop struct {
	pos     float64
	r, g, b float64
}

// seismicRamp matches the classic seismic palette: dark blue through
// blue to white at the center, then red to dark red.
var seismicRamp = []rampStop{
	{0.00, 0.0, 0.0, 0.3},
	{0.25, 0.0, 0.0, 1.0},
	{0.50, 1.0, 1.0, 1.0},
	{0.75, 1.0, 0.0, 0.0},
	{1.00, 0.5, 0.0, 0.0},
}

var grayRamp = []rampStop{
	{0.0, 0.0, 0.0, 0.0},
	{1.0, 1.0, 1.0, 1.0},
}

func (c Colormap) ramp() []rampStop {
	if c == Grayscale {
		return grayRamp
	}
	return seismicRamp
}

// at maps a normalized position in [0, 1] to a color by interpolating
// between ramp stops. Positions outside [0, 1] clamp to the ends.
func (c Colormap) at(t float64) color.NRGBA {
	t = min(max(t, 0), 1)
	ramp := c.ramp()

	hi := 1
	for hi < len(ramp)-1 && ramp[hi].pos < t {
		hi++
	}
	a, b := ramp[hi-1], ramp[hi]

	f := 0.0
	if b.pos > a.pos {
		f = (t - a.pos) / (b.pos - a.pos)
	}
	lerp := func(x, y float64) uint8 {
		return uint8((x+(y-x)*f)*255 + 0.5)
	}
	return color.NRGBA{R: lerp(a.r, b.r), G: lerp(a.g, b.g), B: lerp(a.b, b.b), A: 255}
}
