package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/registry"
)

func NewCheckUpdatesCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "check-updates",
		Short: "Check ECR for newer versions of each service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := a.Store.Load()

			printHeader("Available Updates")
			printInfo("Checking for updates...")
			fmt.Println()

			resolver, err := a.Resolver(ctx)
			if err == nil {
				if probeErr := resolver.CheckAccess(ctx); probeErr != nil {
					log.Debug("ECR access probe failed", "error", probeErr)
					err = probeErr
				}
			}

			for _, svc := range config.Services() {
				current := m.EffectiveTag(svc)
				switch {
				case !svc.ECRHosted():
					if current == "latest" {
						fmt.Printf("  %s %s: latest (always up to date)\n", styles.Theme.Success.Render(styles.IconSuccess), svc)
					} else {
						fmt.Printf("  %s %s: %s (manually pinned)\n", styles.Theme.Info.Render(styles.IconInfo), svc, current)
					}
				case err != nil:
					// No API access, fall back to advisory output.
					if current == "latest" {
						fmt.Printf("  %s %s: latest (always up to date)\n", styles.Theme.Success.Render(styles.IconSuccess), svc)
					} else {
						fmt.Printf("  ? %s: %s (check ECR for newer versions)\n", svc, current)
					}
				default:
					available, listErr := resolver.LatestAvailable(ctx, svc)
					switch {
					case listErr != nil:
						log.Debug("Update check failed", "service", svc, "error", listErr)
						fmt.Printf("  ? %s: %s (check failed)\n", svc, current)
					case available == "":
						fmt.Printf("  ? %s: %s (no semantic versions published)\n", svc, current)
					case current == "latest":
						fmt.Printf("  %s %s: latest (newest is %s, pin with: dkproxyctl resolve-tags)\n",
							styles.Theme.Info.Render(styles.IconInfo), svc, styles.Theme.Highlight.Render(available))
					case registry.CompareTags(available, current) > 0:
						fmt.Printf("  %s %s: %s %s %s (update available)\n",
							styles.Theme.Warning.Render(styles.IconWarning), svc, current,
							styles.IconArrowRight, styles.Theme.Highlight.Render(available))
					default:
						fmt.Printf("  %s %s: %s (up to date)\n", styles.Theme.Success.Render(styles.IconSuccess), svc, current)
					}
				}
			}

			fmt.Println()
			printInfo("To browse available versions, visit:")
			fmt.Printf("  https://gallery.ecr.aws/%s\n", m.ECR.RepositoryAlias)
			fmt.Println()
			printInfo("To update to latest: dkproxyctl update-safe")
			return nil
		},
	}
}
