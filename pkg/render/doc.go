// Package render turns assembled slices into images and terminal output.
//
// # Overview
//
// A reconstructed cross section is a matrix of signed amplitudes. This
// package maps those values through a colormap and produces:
//
//   - PNG rasters via [Heatmap] and [EncodePNG]
//   - Terminal previews via [ANSI], using colored half-block characters
//
// # Rendering
//
// [Heatmap] renders one pixel per sample and accepts functional options:
//
//	img, err := render.Heatmap(slice,
//	    render.WithColormap(render.Seismic),
//	    render.WithTranspose(),
//	    render.WithScale(4))
//	if err != nil {
//	    return err
//	}
//	err = render.EncodePNG(img, out)
//
// # Colormaps
//
// [Seismic] is the diverging blue-white-red palette: amplitudes are
// signed, so by default the range is symmetric about zero and zero
// renders white. [Grayscale] maps [min, max] linearly. [ParseColormap]
// resolves user-supplied names.
//
// Degenerate input never fails rendering: a constant slice maps to the
// colormap midpoint once its normalization range collapses, and NaN or
// infinite samples render as the color of zero.
//
// # Terminal Previews
//
// [ANSI] downsamples the slice to a character grid and stacks two
// samples per cell using the upper-half-block glyph, giving double
// vertical resolution. The browse TUI and render --preview use it.
package render
