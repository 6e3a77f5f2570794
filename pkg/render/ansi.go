package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seisview/seisview/pkg/assemble"
)

const halfBlock = "▀"

const (
	defaultANSICols = 72
	defaultANSIRows = 20
)

// ANSI renders the slice as terminal output: a grid of half-block
// characters, each cell carrying two vertically stacked samples in its
// foreground and background colors. The slice is downsampled to at most
// cols columns and rows text rows, nearest neighbor.
//
// Colormap, transpose, flip, and range options apply; [WithScale] does
// not, since the output is a character grid. Pass cols or rows <= 0 for
// a default preview size.
func ANSI(s *assemble.Slice, cols, rows int, opts ...Option) (string, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cz, err := newColorizer(s, cfg)
	if err != nil {
		return "", err
	}

	if cols <= 0 {
		cols = defaultANSICols
	}
	if rows <= 0 {
		rows = defaultANSIRows
	}

	h, w := cz.slice.Shape()
	outCols := min(cols, w)
	samples := min(rows*2, h)
	outRows := (samples + 1) / 2

	sample := func(y, x int) lipgloss.Color {
		i := y * h / samples
		if cfg.flipV {
			i = h - 1 - i
		}
		c := cz.at(i, x*w/outCols)
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}

	var sb strings.Builder
	for r := range outRows {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for x := range outCols {
			style := lipgloss.NewStyle().Foreground(sample(2*r, x))
			if 2*r+1 < samples {
				style = style.Background(sample(2*r+1, x))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String(), nil
}
