package render

import (
	"image/color"
	"testing"

	"github.com/seisview/seisview/pkg/errors"
)

func TestParseColormap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Colormap
	}{
		{"seismic", "seismic", Seismic},
		{"empty means seismic", "", Seismic},
		{"uppercase", "SEISMIC", Seismic},
		{"gray", "gray", Grayscale},
		{"grayscale", "grayscale", Grayscale},
		{"grey", "grey", Grayscale},
		{"padded", "  gray  ", Grayscale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColormap(tt.input)
			if err != nil {
				t.Fatalf("ParseColormap(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseColormap(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseColormapUnknown(t *testing.T) {
	_, err := ParseColormap("magma")
	if err == nil {
		t.Fatal("ParseColormap(magma) expected error, got nil")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseColormap() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestColormapAt(t *testing.T) {
	tests := []struct {
		name string
		cmap Colormap
		t    float64
		want color.NRGBA
	}{
		{"seismic low end", Seismic, 0.0, color.NRGBA{R: 0, G: 0, B: 77, A: 255}},
		{"seismic quarter", Seismic, 0.25, color.NRGBA{R: 0, G: 0, B: 255, A: 255}},
		{"seismic midpoint is white", Seismic, 0.5, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"seismic three quarters", Seismic, 0.75, color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
		{"seismic high end", Seismic, 1.0, color.NRGBA{R: 128, G: 0, B: 0, A: 255}},
		{"seismic clamps below", Seismic, -3.0, color.NRGBA{R: 0, G: 0, B: 77, A: 255}},
		{"seismic clamps above", Seismic, 3.0, color.NRGBA{R: 128, G: 0, B: 0, A: 255}},
		{"gray black", Grayscale, 0.0, color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
		{"gray middle", Grayscale, 0.5, color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
		{"gray white", Grayscale, 1.0, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmap.at(tt.t); got != tt.want {
				t.Errorf("%v.at(%v) = %v, want %v", tt.cmap, tt.t, got, tt.want)
			}
		})
	}
}

func TestColormapAtBlends(t *testing.T) {
	// Halfway between blue and white every channel moves half the distance.
	got := Seismic.at(0.375)
	want := color.NRGBA{R: 128, G: 128, B: 255, A: 255}
	if got != want {
		t.Errorf("Seismic.at(0.375) = %v, want %v", got, want)
	}
}
