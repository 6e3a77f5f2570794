package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seisview/seisview/internal/server"
)

// serveCommand creates the demo tile server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		shapeStr     string
		tiles        int
		signKey      string
		approveAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo tile server with synthetic surveys",
		Long: `Serve synthetic seismic surveys over the same HTTP API the query
command consumes. Any GUID resolves to a deterministic volume, so this is
enough to try every other command without a real backend:

  seisview serve &
  seisview query demo --dim 0 --lineno 32 --preview

With --sign-key the server requires signed bearer tokens and exposes the
device authorization flow that 'seisview auth login' drives.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := parseShape(shapeStr)
			if err != nil {
				return err
			}

			key := signKey
			if key == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				key = cfg.SharedKey
			}

			srv := server.New(server.Config{
				Addr:         addr,
				Shape:        shape,
				Tiles:        tiles,
				SignKey:      []byte(key),
				ApproveAfter: approveAfter,
				Logger:       c.Logger,
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&shapeStr, "shape", "64,64,128", "survey shape as dim0,dim1,dim2 sample counts")
	cmd.Flags().IntVar(&tiles, "tiles", server.DefaultTiles, "tiles per slice response")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "require bearer tokens signed with this key (default shared_key from config)")
	cmd.Flags().DurationVar(&approveAfter, "approve-after", 0, "delay before demo device grants auto-approve (default 2s)")

	return cmd
}

// parseShape parses a "d0,d1,d2" sample-count triple.
func parseShape(s string) ([3]int, error) {
	var shape [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return shape, fmt.Errorf("invalid shape %q (expected three comma-separated sizes)", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return shape, fmt.Errorf("invalid shape %q (expected three comma-separated sizes)", s)
		}
		shape[i] = n
	}
	return shape, nil
}
