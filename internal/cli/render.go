package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	seisio "github.com/seisview/seisview/pkg/io"
	"github.com/seisview/seisview/pkg/pipeline"
	"github.com/seisview/seisview/pkg/render"
)

// renderCommand creates the render command for turning a saved matrix
// into a PNG or a terminal preview.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		preview bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render <matrix.json>",
		Short: "Render a saved matrix as PNG or in the terminal",
		Long: `Render a saved matrix (as written by 'query -o -' or 'assemble') as a
PNG image, or directly in the terminal with --preview. Reads stdin when
the argument is '-'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			s, err := seisio.ReadSlice(in)
			if err != nil {
				return fmt.Errorf("read matrix from %s: %w", args[0], err)
			}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}

			if preview {
				art, err := render.ANSI(s, 0, 0, previewOptions(opts)...)
				if err != nil {
					return err
				}
				fmt.Println(art)
				return nil
			}

			outputPath := output
			if outputPath == "" {
				if args[0] == "-" {
					return fmt.Errorf("stdin input needs --output or --preview")
				}
				outputPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}
			if err := writeSliceOutput(s, outputPath, opts); err != nil {
				return err
			}

			shape0, shape1 := s.Shape()
			printStats(shape0, shape1, 0, false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG path (default: <input>.png)")
	cmd.Flags().BoolVar(&preview, "preview", false, "print an ANSI heatmap instead of writing a file")
	cmd.Flags().StringVar(&opts.Colormap, "colormap", pipeline.DefaultColormap, "colormap: seismic or gray")
	cmd.Flags().BoolVar(&opts.Transpose, "transpose", false, "exchange rows and columns")
	cmd.Flags().BoolVar(&opts.FlipVertical, "flip", false, "mirror the image top to bottom")
	cmd.Flags().IntVar(&opts.Scale, "scale", pipeline.DefaultScale, "integer upscale factor")
	cmd.Flags().Float64Var(&opts.VMin, "vmin", 0, "normalization range minimum (with --vmax)")
	cmd.Flags().Float64Var(&opts.VMax, "vmax", 0, "normalization range maximum (with --vmin)")

	return cmd
}
