package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seisview/seisview/pkg/cache"
	"github.com/seisview/seisview/pkg/errors"
	seisio "github.com/seisview/seisview/pkg/io"
	"github.com/seisview/seisview/pkg/pipeline"
	"github.com/seisview/seisview/pkg/query"
	"github.com/seisview/seisview/pkg/render"
)

// queryCommand creates the query command, the main entry point: fetch a
// slice from a server, reassemble it, and render it.
func (c *CLI) queryCommand() *cobra.Command {
	var (
		serverURL string
		token     string
		linenoStr string
		output    string
		noCache   bool
		preview   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "query <guid>",
		Short: "Fetch, assemble, and render a slice",
		Long: `Fetch a slice from a tile server, reassemble the fragments, and render
the result as a PNG.

The lineno flag accepts a single line number or an inclusive range:

  seisview query 0d235a7138104e00c421e63f5e3261bf72863f01 --dim 0 --lineno 512
  seisview query 0d235a7138104e00c421e63f5e3261bf72863f01 --lineno 100..120
  seisview query 0d235a7138104e00c421e63f5e3261bf72863f01 --lineno 100..200..10

Range queries fetch concurrently and write one numbered file per line.
Shapes are derived from the survey manifest unless --shape0/--shape1 are
given. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.GUID = args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyConfigDefaults(cmd, &opts, cfg)
			serverURL, err = resolveServerURL(serverURL, cfg)
			if err != nil {
				return err
			}
			return c.runQuery(cmd.Context(), cfg, opts, queryParams{
				serverURL: serverURL,
				token:     token,
				linenoStr: linenoStr,
				output:    output,
				noCache:   noCache,
				preview:   preview,
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Dim, "dim", "d", 0, "dimension to slice along (0, 1, or 2)")
	cmd.Flags().StringVarP(&linenoStr, "lineno", "l", "0", "line number, or range A..B or A..B..step")
	cmd.Flags().IntVar(&opts.Shape0, "shape0", 0, "slice rows (0 = derive from manifest)")
	cmd.Flags().IntVar(&opts.Shape1, "shape1", 0, "slice columns (0 = derive from manifest)")
	cmd.Flags().BoolVar(&opts.RequireCoverage, "require-coverage", false, "fail unless tiles cover every cell")
	cmd.Flags().StringVar(&serverURL, "url", "", "tile server URL (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (default from config or session)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG path ('-' writes the matrix as JSON to stdout)")
	cmd.Flags().StringVar(&opts.Colormap, "colormap", pipeline.DefaultColormap, "colormap: seismic or gray")
	cmd.Flags().BoolVar(&opts.Transpose, "transpose", false, "exchange rows and columns")
	cmd.Flags().BoolVar(&opts.FlipVertical, "flip", false, "mirror the image top to bottom")
	cmd.Flags().IntVar(&opts.Scale, "scale", pipeline.DefaultScale, "integer upscale factor")
	cmd.Flags().Float64Var(&opts.VMin, "vmin", 0, "normalization range minimum (with --vmax)")
	cmd.Flags().Float64Var(&opts.VMax, "vmax", 0, "normalization range maximum (with --vmin)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&preview, "preview", false, "print an ANSI heatmap instead of writing a file")

	return cmd
}

type queryParams struct {
	serverURL string
	token     string
	linenoStr string
	output    string
	noCache   bool
	preview   bool
}

// applyConfigDefaults fills render options from the config file for flags
// the user did not set, keeping flag > env > file > default precedence.
func applyConfigDefaults(cmd *cobra.Command, opts *pipeline.Options, cfg *Config) {
	if !cmd.Flags().Changed("colormap") && cfg.Render.Colormap != "" {
		opts.Colormap = cfg.Render.Colormap
	}
	if !cmd.Flags().Changed("scale") && cfg.Render.Scale > 0 {
		opts.Scale = cfg.Render.Scale
	}
	if !cmd.Flags().Changed("transpose") && cfg.Render.Transpose {
		opts.Transpose = true
	}
	if !cmd.Flags().Changed("flip") && cfg.Render.FlipVertical {
		opts.FlipVertical = true
	}
}

func (c *CLI) runQuery(ctx context.Context, cfg *Config, opts pipeline.Options, p queryParams) error {
	lr, err := parseLinenos(p.linenoStr)
	if err != nil {
		return err
	}
	if p.output != "" && p.output != "-" {
		if err := errors.ValidateOutputPath(p.output); err != nil {
			return err
		}
	}

	token, source := resolveToken(ctx, cfg, p.token)
	if source != "" {
		c.Logger.Debug("authenticated", "source", source)
	}

	backend, err := newCache(cfg, p.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	client := query.NewClient(p.serverURL, token, backend, cache.TTLQuery)
	runner := c.newRunner(backend)
	defer runner.Close()

	opts.Logger = c.Logger
	if lr.isRange {
		return c.runQueryRange(ctx, client, runner, opts, lr, p)
	}
	opts.Lineno = lr.start
	return c.runQuerySingle(ctx, client, runner, opts, p)
}

func (c *CLI) runQuerySingle(ctx context.Context, client *query.Client, runner *pipeline.Runner, opts pipeline.Options, p queryParams) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching dim %d line %d...", opts.Dim, opts.Lineno))
	spinner.Start()

	result, err := runner.Execute(ctx, client, opts)
	if err != nil {
		spinner.StopWithError("Query failed")
		if errors.IsBounds(err) {
			printDetail("Tile offsets fall outside the target shape; check --shape0/--shape1 or drop them to use the manifest")
		}
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.Logger.Debug("cache info",
		"fetch", hitWord(result.CacheInfo.FetchHit),
		"assemble", hitWord(result.CacheInfo.AssembleHit),
		"render", hitWord(result.CacheInfo.RenderHit))

	if p.preview {
		art, err := render.ANSI(result.Slice, 0, 0, previewOptions(opts)...)
		if err != nil {
			return err
		}
		fmt.Println(art)
		printStats(result.Shape0, result.Shape1, result.Stats.TileCount, result.CacheInfo.FetchHit)
		return nil
	}

	if p.output == "-" {
		return seisio.WriteSlice(result.Slice, os.Stdout)
	}

	outputPath := p.output
	if outputPath == "" {
		outputPath = sliceFileName(opts.GUID, opts.Dim, opts.Lineno)
	}
	if err := os.WriteFile(outputPath, result.PNG, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Query complete")
	printFile(outputPath)
	printStats(result.Shape0, result.Shape1, result.Stats.TileCount, result.CacheInfo.FetchHit && result.CacheInfo.AssembleHit && result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Explore", "seisview browse "+opts.GUID)
	return nil
}

func (c *CLI) runQueryRange(ctx context.Context, client *query.Client, runner *pipeline.Runner, opts pipeline.Options, lr linenoRange, p queryParams) error {
	if p.preview {
		return fmt.Errorf("--preview works with a single lineno")
	}
	if p.output == "-" {
		return fmt.Errorf("stdout output works with a single lineno")
	}

	r := query.Range{Dim: opts.Dim, Start: lr.start, End: lr.end, Step: lr.step}
	linenos := r.Linenos()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %d slices...", len(linenos)))
	spinner.Start()

	batcher := &query.Batcher{Client: client, Refresh: opts.Refresh}
	results, err := batcher.Fetch(ctx, opts.GUID, r, opts.Shape0, opts.Shape1)
	if err != nil {
		spinner.StopWithError("Batch fetch failed")
		return err
	}
	spinner.Stop()

	base := strings.TrimSuffix(p.output, ".png")
	for _, res := range results {
		png, err := runner.Render(ctx, res.Slice, opts)
		if err != nil {
			return fmt.Errorf("render line %d: %w", res.Lineno, err)
		}

		outputPath := sliceFileName(opts.GUID, opts.Dim, res.Lineno)
		if base != "" {
			outputPath = fmt.Sprintf("%s_l%d.png", base, res.Lineno)
		}
		if err := os.WriteFile(outputPath, png, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
		printFile(outputPath)
	}

	printSuccess("Wrote %d slices", len(results))
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// linenoRange is a parsed --lineno value. A single line number parses as
// a degenerate range with isRange false.
type linenoRange struct {
	start, end, step int
	isRange          bool
}

// parseLinenos parses "512", "100..120", or "100..200..10".
func parseLinenos(s string) (linenoRange, error) {
	parts := strings.Split(s, "..")
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return linenoRange{}, fmt.Errorf("invalid lineno %q (expected N, A..B, or A..B..step)", s)
		}
		nums[i] = n
	}

	switch len(nums) {
	case 1:
		return linenoRange{start: nums[0], end: nums[0], step: 1}, nil
	case 2:
		return linenoRange{start: nums[0], end: nums[1], step: 1, isRange: true}, nil
	case 3:
		return linenoRange{start: nums[0], end: nums[1], step: nums[2], isRange: true}, nil
	default:
		return linenoRange{}, fmt.Errorf("invalid lineno %q (expected N, A..B, or A..B..step)", s)
	}
}

// sliceFileName is the default output name for one rendered slice.
func sliceFileName(guid string, dim, lineno int) string {
	return fmt.Sprintf("%s_d%d_l%d.png", guid, dim, lineno)
}

// previewOptions converts pipeline options to render options for ANSI
// previews. Scale is omitted: character grids have no pixels to scale.
func previewOptions(opts pipeline.Options) []render.Option {
	var ropts []render.Option
	if cm, err := render.ParseColormap(opts.Colormap); err == nil {
		ropts = append(ropts, render.WithColormap(cm))
	}
	if opts.Transpose {
		ropts = append(ropts, render.WithTranspose())
	}
	if opts.FlipVertical {
		ropts = append(ropts, render.WithFlipVertical())
	}
	if opts.HasExplicitRange() {
		ropts = append(ropts, render.WithRange(opts.VMin, opts.VMax))
	}
	return ropts
}

func hitWord(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
