package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/manifest"
)

func NewHistoryCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "history [service]",
		Short: "Show deployment history, all services or one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.Store.Load()

			services := config.Services()
			if len(args) == 1 {
				svc, err := config.ParseService(args[0])
				if err != nil {
					return err
				}
				services = []config.Service{svc}
			}

			printHeader("Deployment History")
			for _, svc := range services {
				hist := m.History[svc]
				fmt.Println()
				fmt.Println(styles.Theme.Subtitle.Render(string(svc)))
				if len(hist) == 0 {
					fmt.Println(styles.Theme.Muted.Render("  no recorded history"))
					continue
				}
				for _, e := range hist {
					marker := " "
					if e.Status == manifest.StatusCurrent {
						marker = styles.Theme.Success.Render(styles.IconBullet)
					}
					fmt.Printf("  %s %-14s %-21s %s\n",
						marker,
						e.Tag,
						shortTimestamp(e.DeployedAt, 19),
						styles.RenderStatusBadge(e.Status),
					)
				}
			}
			return nil
		},
	}
}
