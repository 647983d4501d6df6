package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/components"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/engine"
)

func NewStatusCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:          "status",
		Short:        "Check that the proxy deployment is running and healthy",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printHeader("DagKnows Proxy Status Check")

			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}

			m := a.Store.Load()

			fmt.Println()
			fmt.Println(styles.Theme.Subtitle.Render("Container Status"))
			statuses, err := eng.ComposeContainers(ctx, a.Config.Compose.Project)
			if err != nil {
				return err
			}

			containersOK := false
			if len(statuses) == 0 {
				printError("No containers running")
				printInfo("Start with: " + a.RestartHint())
			} else {
				table := components.NewTable(components.WithColumns(
					components.TableColumn{Title: "Service", Width: 14},
					components.TableColumn{Title: "Version", Width: 12},
					components.TableColumn{Title: "State", Width: 12},
					components.TableColumn{Title: "Health", Width: 11},
					components.TableColumn{Title: "Ports", Width: 26},
				))
				for _, st := range statuses {
					version := ""
					if svc, err := config.ParseService(st.Service); err == nil {
						version = m.EffectiveTag(svc)
					}
					health := st.Health
					if health == "" {
						health = "-"
					}
					table.AddRow(
						st.Service,
						version,
						styles.RenderStateBadge(st.State),
						health,
						joinPorts(st.Ports),
					)
				}
				fmt.Println(table.Render())

				summary := engine.Summarize(statuses)
				containersOK = summary.OK()
				if containersOK {
					printSuccess(fmt.Sprintf("%d/%d containers healthy", summary.Healthy, summary.Total))
				} else {
					printWarning(fmt.Sprintf("Only %d/%d containers healthy", summary.Healthy, summary.Total))
				}
			}

			fmt.Println()
			fmt.Println(styles.Theme.Subtitle.Render("Proxy Versions"))
			versionsOK := m.Tracked()
			if !versionsOK {
				printWarning("Version tracking not enabled")
				printInfo("Run: dkproxyctl migrate")
			} else {
				fmt.Printf("  Deployment: %s\n", m.DeploymentID)
				if m.ProxyLocation != "" {
					fmt.Printf("  Location:   %s\n", m.ProxyLocation)
				}
				fmt.Println()
				for _, svc := range config.Services() {
					rec, ok := m.Services[svc]
					if !ok {
						continue
					}
					if o, pinned := m.Override(svc); pinned {
						fmt.Printf("  %s %-14s %-15s %s\n", styles.Theme.Success.Render(styles.IconSuccess), svc, o.Tag, styles.Theme.Warning.Render("[custom]"))
						continue
					}
					fmt.Printf("  %s %-14s %-15s (%s)\n", styles.Theme.Success.Render(styles.IconSuccess), svc, rec.CurrentTag, shortTimestamp(rec.DeployedAt, 10))
				}
			}

			fmt.Println()
			if containersOK && versionsOK {
				printSuccess("Proxy is operational!")
				return nil
			}
			printWarning("Some checks failed")
			return errors.New("status checks failed")
		},
	}
}

func joinPorts(ports []string) string {
	if len(ports) == 0 {
		return "-"
	}
	out := ports[0]
	for _, p := range ports[1:] {
		out += ", " + p
	}
	return out
}
