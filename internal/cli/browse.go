package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/seisview/seisview/pkg/cache"
	"github.com/seisview/seisview/pkg/errors"
	"github.com/seisview/seisview/pkg/pipeline"
	"github.com/seisview/seisview/pkg/query"
	"github.com/seisview/seisview/pkg/render"
)

// =============================================================================
// BrowseModel - Interactive slice viewer
// =============================================================================

// manifestLoadedMsg carries the survey manifest into the model.
type manifestLoadedMsg struct {
	manifest *query.Manifest
	err      error
}

// sliceLoadedMsg carries a rendered slice into the model. seq ties the
// response to the request that issued it so stale loads are discarded.
type sliceLoadedMsg struct {
	seq         int
	frame       string
	shape0      int
	shape1      int
	fetchHit    bool
	assembleHit bool
	err         error
}

// BrowseModel is the bubbletea model for browsing slices of a survey.
// Arrow keys step through linenos, d cycles the dimension, t transposes,
// r refetches past the cache.
type BrowseModel struct {
	Client *query.Client
	Runner *pipeline.Runner
	Opts   pipeline.Options

	GUID     string
	Manifest *query.Manifest
	Dim      int
	Index    int

	Width  int
	Height int

	Loading bool
	Err     error

	Frame       string
	Shape0      int
	Shape1      int
	FetchHit    bool
	AssembleHit bool

	ctx     context.Context
	seq     int
	refresh bool
}

// NewBrowseModel creates a browse model for the given survey.
func NewBrowseModel(ctx context.Context, client *query.Client, runner *pipeline.Runner, guid string, opts pipeline.Options) BrowseModel {
	return BrowseModel{
		Client:  client,
		Runner:  runner,
		Opts:    opts,
		GUID:    guid,
		Dim:     opts.Dim,
		Loading: true,
		ctx:     ctx,
		refresh: opts.Refresh,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return m.loadManifest()
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case manifestLoadedMsg:
		if msg.err != nil {
			m.Loading = false
			m.Err = msg.err
			return m, nil
		}
		m.Manifest = msg.manifest
		if m.Dim < 0 || m.Dim >= m.Manifest.NDims() {
			m.Dim = 0
		}
		m.Index = len(m.Manifest.Dimensions[m.Dim]) / 2
		return m.reload()

	case sliceLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.Loading = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.Frame = msg.frame
		m.Shape0 = msg.shape0
		m.Shape1 = msg.shape1
		m.FetchHit = msg.fetchHit
		m.AssembleHit = msg.assembleHit
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.Manifest == nil {
			return m, nil
		}
		return m.reload()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.Manifest == nil || m.Index == 0 {
				return m, nil
			}
			m.Index--
			return m.reload()
		case "right", "l":
			if m.Manifest == nil || m.Index >= len(m.Manifest.Dimensions[m.Dim])-1 {
				return m, nil
			}
			m.Index++
			return m.reload()
		case "d":
			if m.Manifest == nil {
				return m, nil
			}
			m.Dim = (m.Dim + 1) % m.Manifest.NDims()
			if last := len(m.Manifest.Dimensions[m.Dim]) - 1; m.Index > last {
				m.Index = last
			}
			return m.reload()
		case "t":
			if m.Manifest == nil {
				return m, nil
			}
			m.Opts.Transpose = !m.Opts.Transpose
			return m.reload()
		case "r":
			if m.Manifest == nil {
				return m, nil
			}
			m.refresh = true
			return m.reload()
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Survey " + m.GUID))
	b.WriteString("\n\n")

	switch {
	case m.Err != nil:
		b.WriteString("  " + StyleWarning.Render(errors.UserMessage(m.Err)))
		b.WriteString("\n")
	case m.Frame == "":
		b.WriteString(StyleDim.Render("  Loading slice..."))
		b.WriteString("\n")
	default:
		b.WriteString(strings.TrimRight(m.Frame, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  ←/→ line  d dim  t transpose  r refresh  q quit"))

	return b.String()
}

// reload bumps the request sequence and kicks off a slice load for the
// current dim and index. The refresh flag only applies to the next load.
func (m BrowseModel) reload() (tea.Model, tea.Cmd) {
	m.seq++
	m.Loading = true
	cmd := m.loadSlice()
	m.refresh = false
	return m, cmd
}

func (m BrowseModel) loadManifest() tea.Cmd {
	ctx, client := m.ctx, m.Client
	guid, refresh := m.GUID, m.Opts.Refresh
	return func() tea.Msg {
		manifest, err := client.FetchManifest(ctx, guid, refresh)
		return manifestLoadedMsg{manifest: manifest, err: err}
	}
}

func (m BrowseModel) loadSlice() tea.Cmd {
	opts := m.Opts
	opts.GUID = m.GUID
	opts.Dim = m.Dim
	opts.Lineno = m.Manifest.Dimensions[m.Dim][m.Index]
	opts.Refresh = m.refresh
	if s0, s1, err := m.Manifest.SliceShape(m.Dim); err == nil {
		opts.Shape0, opts.Shape1 = s0, s1
	}

	ctx, client, runner := m.ctx, m.Client, m.Runner
	cols, rows := m.artSize()
	seq := m.seq
	return func() tea.Msg {
		tiles, fetchHit, err := runner.FetchWithCacheInfo(ctx, client, opts)
		if err != nil {
			return sliceLoadedMsg{seq: seq, err: err}
		}
		s, assembleHit, err := runner.AssembleWithCacheInfo(ctx, tiles, opts)
		if err != nil {
			return sliceLoadedMsg{seq: seq, err: err}
		}
		frame, err := render.ANSI(s, cols, rows, previewOptions(opts)...)
		if err != nil {
			return sliceLoadedMsg{seq: seq, err: err}
		}
		return sliceLoadedMsg{
			seq:         seq,
			frame:       frame,
			shape0:      opts.Shape0,
			shape1:      opts.Shape1,
			fetchHit:    fetchHit,
			assembleHit: assembleHit,
		}
	}
}

// artSize returns the cell grid for the current window, leaving room for
// the title, status bar, and help line. Zero means renderer defaults.
func (m BrowseModel) artSize() (cols, rows int) {
	if m.Width == 0 || m.Height == 0 {
		return 0, 0
	}
	cols = m.Width - 4
	rows = m.Height - 6
	if cols < 16 {
		cols = 16
	}
	if rows < 8 {
		rows = 8
	}
	return cols, rows
}

func (m BrowseModel) statusLine() string {
	if m.Manifest == nil {
		return "  " + StyleDim.Render("loading manifest...")
	}

	lines := m.Manifest.Dimensions[m.Dim]
	lineno := 0
	if m.Index < len(lines) {
		lineno = lines[m.Index]
	}

	parts := []string{
		fmt.Sprintf("dim %d", m.Dim),
		fmt.Sprintf("line %d (%d/%d)", lineno, m.Index+1, len(lines)),
	}
	if m.Shape0 > 0 && m.Shape1 > 0 {
		parts = append(parts, fmt.Sprintf("%d×%d", m.Shape0, m.Shape1))
	}
	if m.Opts.Transpose {
		parts = append(parts, "transposed")
	}
	for i, part := range parts {
		parts[i] = StyleDim.Render(part)
	}
	switch {
	case m.Loading:
		parts = append(parts, StyleDim.Render("loading"))
	case m.Err == nil:
		parts = append(parts, cacheBadge(m.FetchHit && m.AssembleHit))
	}

	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// =============================================================================
// browse command
// =============================================================================

// browseCommand creates the interactive slice browser command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		serverURL string
		token     string
		dim       int
		colormap  string
		refresh   bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "browse <guid>",
		Short: "Browse slices interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			guid := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			serverURL, err = resolveServerURL(serverURL, cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("colormap") && cfg.Render.Colormap != "" {
				colormap = cfg.Render.Colormap
			}
			tok, _ := resolveToken(ctx, cfg, token)

			backend, err := newCache(cfg, noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			client := query.NewClient(serverURL, tok, backend, cache.TTLQuery)
			runner := c.newRunner(backend)
			defer runner.Close()

			opts := pipeline.Options{
				Dim:          dim,
				Refresh:      refresh,
				Colormap:     colormap,
				Transpose:    cfg.Render.Transpose,
				FlipVertical: cfg.Render.FlipVertical,
			}

			p := tea.NewProgram(
				NewBrowseModel(ctx, client, runner, guid, opts),
				tea.WithContext(ctx),
				tea.WithAltScreen(),
			)
			finalModel, err := p.Run()
			if err != nil {
				return err
			}
			if fm, ok := finalModel.(BrowseModel); ok && fm.Err != nil {
				return fm.Err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "tile server URL (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (default from config or session)")
	cmd.Flags().IntVarP(&dim, "dim", "d", 0, "starting dimension")
	cmd.Flags().StringVar(&colormap, "colormap", pipeline.DefaultColormap, "colormap: seismic or gray")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached responses on the first load")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
