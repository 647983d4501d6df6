package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
)

func NewVersionCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of dkproxyctl",
		Run: func(cmd *cobra.Command, args []string) {
			color.Blue("dkproxyctl version %s (commit %s, built %s)", a.Build.Version, a.Build.Commit, a.Build.Date)
		},
	}
}
