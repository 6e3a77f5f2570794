package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/errors"
	seisio "github.com/seisview/seisview/pkg/io"
	"github.com/seisview/seisview/pkg/pipeline"
	"github.com/seisview/seisview/pkg/render"
)

// assembleCommand creates the assemble command for offline reassembly of
// a saved tiles payload.
func (c *CLI) assembleCommand() *cobra.Command {
	var (
		shape0, shape1  int
		requireCoverage bool
		output          string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "assemble <tiles.json>",
		Short: "Reassemble a saved tiles payload into a matrix",
		Long: `Reassemble a saved tiles payload into a matrix, without a server.

Reads the tile response format (as saved by 'query -o -' upstream tools
or the demo server) from a file, or from stdin when the argument is '-'.
The output is the matrix as JSON, or a PNG when --output ends in .png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			tiles, err := seisio.ReadTiles(in)
			if err != nil {
				return fmt.Errorf("read tiles from %s: %w", args[0], err)
			}

			var aopts []assemble.Option
			if requireCoverage {
				aopts = append(aopts, assemble.WithFullCoverage())
			}

			done := timed(c.Logger)
			s, err := assemble.Assemble(tiles, shape0, shape1, aopts...)
			if err != nil {
				return err
			}
			done(fmt.Sprintf("Assembled %d×%d matrix from %d tiles", shape0, shape1, len(tiles)))

			return writeSliceOutput(s, output, opts)
		},
	}

	cmd.Flags().IntVar(&shape0, "shape0", 0, "slice rows (required)")
	cmd.Flags().IntVar(&shape1, "shape1", 0, "slice columns (required)")
	cmd.Flags().BoolVar(&requireCoverage, "require-coverage", false, "fail unless tiles cover every cell")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path: .json or .png by extension (stdout JSON if empty)")
	cmd.Flags().StringVar(&opts.Colormap, "colormap", pipeline.DefaultColormap, "colormap for PNG output: seismic or gray")
	cmd.Flags().IntVar(&opts.Scale, "scale", pipeline.DefaultScale, "integer upscale factor for PNG output")
	_ = cmd.MarkFlagRequired("shape0")
	_ = cmd.MarkFlagRequired("shape1")

	return cmd
}

// writeSliceOutput writes s as JSON or PNG depending on the output
// extension. An empty path writes JSON to stdout.
func writeSliceOutput(s *assemble.Slice, output string, opts pipeline.Options) error {
	if output == "" || output == "-" {
		return seisio.WriteSlice(s, os.Stdout)
	}
	if err := errors.ValidateOutputPath(output); err != nil {
		return err
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer out.Close()

	if strings.EqualFold(filepath.Ext(output), ".png") {
		if err := opts.ValidateForRender(); err != nil {
			return err
		}
		img, err := render.Heatmap(s, heatmapOptions(opts)...)
		if err != nil {
			return err
		}
		if err := render.EncodePNG(img, out); err != nil {
			return err
		}
	} else {
		if err := seisio.WriteSlice(s, out); err != nil {
			return err
		}
	}

	printSuccess("Wrote %s", output)
	return nil
}

// heatmapOptions converts pipeline options to render options for raster
// output, including the scale previews leave out.
func heatmapOptions(opts pipeline.Options) []render.Option {
	ropts := previewOptions(opts)
	if opts.Scale > 1 {
		ropts = append(ropts, render.WithScale(opts.Scale))
	}
	return ropts
}

// nopCloser wraps an io.Reader with a no-op Close method, making stdin
// compatible with file inputs.
type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

// openInput returns a reader for path, or stdin when path is "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdin}, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no such input file: %s", path)
	}
	return f, err
}
