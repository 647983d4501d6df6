package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/components"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
)

func NewShowCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the currently deployed version of each service",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.Store.Load()

			printHeader("Current Deployed Versions")
			if !m.Tracked() {
				printWarning("Nothing tracked yet")
				printInfo("Enable version tracking with: dkproxyctl migrate")
				return nil
			}
			table := components.NewTable(components.WithColumns(
				components.TableColumn{Title: "Service", Width: 14},
				components.TableColumn{Title: "Tag", Width: 12},
				components.TableColumn{Title: "Digest", Width: 22},
				components.TableColumn{Title: "Deployed", Width: 21},
				components.TableColumn{Title: "By", Width: 12},
			))
			for _, svc := range config.Services() {
				rec, ok := m.Services[svc]
				if !ok {
					table.AddRow(string(svc), styles.Theme.Muted.Render("latest"), "", styles.Theme.Muted.Render("not tracked"), "")
					continue
				}
				table.AddRow(
					string(svc),
					styles.Theme.Highlight.Render(rec.CurrentTag),
					shortDigest(rec.ImageDigest),
					shortTimestamp(rec.DeployedAt, 19),
					rec.DeployedBy,
				)
			}
			fmt.Println(table.Render())

			if len(m.CustomOverrides) > 0 {
				printHeader("Custom Overrides (pinned)")
				for _, svc := range config.Services() {
					o, ok := m.Override(svc)
					if !ok {
						continue
					}
					fmt.Printf("  %s pinned to %s\n", styles.Theme.Bold.Render(string(svc)), styles.Theme.Warning.Render(o.Tag))
					fmt.Printf("    Reason:  %s\n", o.Reason)
					fmt.Printf("    Applied: %s\n", shortTimestamp(o.AppliedAt, 19))
				}
				fmt.Println()
				printInfo("Pinned services keep their tag until the next normal deployment")
			}
			return nil
		},
	}
}

// shortDigest trims "sha256:<64 hex>" for table display.
func shortDigest(digest string) string {
	if len(digest) > 19 {
		return digest[:19]
	}
	return digest
}
