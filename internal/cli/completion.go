package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Scripts go to
// stdout so they can be sourced directly or redirected into the
// shell's completion directory.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Generate a completion script for seisview.

Load it into the current shell:

  source <(seisview completion bash)
  seisview completion fish | source

Or install it permanently:

  seisview completion bash > /etc/bash_completion.d/seisview
  seisview completion zsh > "${fpath[1]}/_seisview"
  seisview completion fish > ~/.config/fish/completions/seisview.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}
