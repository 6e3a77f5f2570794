package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/seisview/seisview/pkg/cache"
	"github.com/seisview/seisview/pkg/query"
)

// manifestCommand creates the manifest command for inspecting a survey.
func (c *CLI) manifestCommand() *cobra.Command {
	var (
		serverURL string
		token     string
		refresh   bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "manifest <guid>",
		Short: "Show a survey's dimensions",
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
			tok, _ := resolveToken(ctx, cfg, token)

			backend, err := newCache(cfg, noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()
			client := query.NewClient(serverURL, tok, backend, cache.TTLQuery)

			spinner := newSpinnerWithContext(ctx, "Fetching manifest...")
			spinner.Start()
			m, err := client.FetchManifest(ctx, guid, refresh)
			if err != nil {
				spinner.StopWithError("Manifest fetch failed")
				return err
			}
			spinner.Stop()

			printManifest(m)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "tile server URL (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (default from config or session)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached manifest")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// printManifest renders the survey's axes as a table.
func printManifest(m *query.Manifest) {
	fmt.Println(StyleTitle.Render("Survey " + m.GUID))
	printNewline()

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, m.NDims())
	for d, lines := range m.Dimensions {
		first, last := "—", "—"
		if len(lines) > 0 {
			first = fmt.Sprintf("%d", lines[0])
			last = fmt.Sprintf("%d", lines[len(lines)-1])
		}

		shape := "—"
		if s0, s1, err := m.SliceShape(d); err == nil {
			shape = fmt.Sprintf("%d×%d", s0, s1)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", d),
			fmt.Sprintf("%d", len(lines)),
			first,
			last,
			shape,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Dim", "Lines", "First", "Last", "Slice").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleNumber
			}
			return StyleValue
		})

	fmt.Println(t.Render())
	printNewline()
	printNextStep("Query", fmt.Sprintf("seisview query %s --dim 0 --lineno <line>", m.GUID))
}
