package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts. Each shell is its
// own subcommand so the setup instructions live next to the generator that
// they describe.
func (c *CLI) completionCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate a shell completion script",
		Long:  "Generate a completion script for your shell and print it to stdout.",
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "bash",
			Short: "Completion for bash",
			Long: `Print the bash completion script.

Load it for the current session:
  source <(flowsheet completion bash)

Or install it permanently:
  flowsheet completion bash > /etc/bash_completion.d/flowsheet`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmd.Root().GenBashCompletion(os.Stdout)
			},
		},
		&cobra.Command{
			Use:   "zsh",
			Short: "Completion for zsh",
			Long: `Print the zsh completion script.

Install it into a directory on $fpath:
  flowsheet completion zsh > "${fpath[1]}/_flowsheet"

Compinit must be enabled; add "autoload -U compinit; compinit" to ~/.zshrc
if it is not.`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmd.Root().GenZshCompletion(os.Stdout)
			},
		},
		&cobra.Command{
			Use:   "fish",
			Short: "Completion for fish",
			Long: `Print the fish completion script.

Load it for the current session:
  flowsheet completion fish | source

Or install it permanently:
  flowsheet completion fish > ~/.config/fish/completions/flowsheet.fish`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			},
		},
		&cobra.Command{
			Use:   "powershell",
			Short: "Completion for PowerShell",
			Long: `Print the PowerShell completion script.

Load it for the current session:
  flowsheet completion powershell | Out-String | Invoke-Expression

To persist it, write the output to a file sourced from your profile.`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			},
		},
	)

	return root
}
