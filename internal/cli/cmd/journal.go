package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/components"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/journal"
)

var journalLimit int

func NewJournalCommand(a *cli.App) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent operations run on this deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.Journal().Recent(journalLimit)
			if err != nil {
				return err
			}

			printHeader("Operation Journal")
			if len(entries) == 0 {
				printInfo("No operations recorded yet")
				return nil
			}

			table := components.NewTable(components.WithColumns(
				components.TableColumn{Title: "When", Width: 19},
				components.TableColumn{Title: "Command", Width: 18},
				components.TableColumn{Title: "Service", Width: 12},
				components.TableColumn{Title: "Tag", Width: 10},
				components.TableColumn{Title: "Outcome", Width: 9},
				components.TableColumn{Title: "Detail", Width: 28},
			))
			for _, e := range entries {
				table.AddRow(
					e.At.Local().Format("2006-01-02 15:04:05"),
					e.Command,
					e.Service,
					e.Tag,
					renderOutcome(e.Outcome),
					e.Detail,
				)
			}
			fmt.Println(table.Render())
			return nil
		},
	}
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of entries to show")
	return journalCmd
}

func renderOutcome(outcome string) string {
	switch outcome {
	case journal.OutcomeOK:
		return styles.Theme.Success.Render(outcome)
	case journal.OutcomePartial:
		return styles.Theme.Warning.Render(outcome)
	case journal.OutcomeFailed:
		return styles.Theme.Error.Render(outcome)
	default:
		return outcome
	}
}
