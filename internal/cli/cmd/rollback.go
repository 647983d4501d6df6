package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/journal"
)

var rollbackService string
var rollbackTag string
var rollbackAll bool

// rollbackStep is one planned service rollback: from the running tag back to
// the target.
type rollbackStep struct {
	svc     config.Service
	current string
	target  string
}

func NewRollbackCommand(a *cli.App) *cobra.Command {
	rollbackCmd := &cobra.Command{
		Use:          "rollback",
		Short:        "Roll services back to their previous version",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printHeader("DagKnows Rollback")

			var services []config.Service
			switch {
			case rollbackAll:
				services = config.Services()
			case rollbackService != "":
				svc, err := config.ParseService(rollbackService)
				if err != nil {
					return err
				}
				services = []config.Service{svc}
			default:
				return errors.New("specify --service or --all")
			}

			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}

			m := a.Store.Load()

			var plan []rollbackStep
			for _, svc := range services {
				current := m.EffectiveTag(svc)
				target := rollbackTag
				if target == "" {
					prev, ok := m.PreviousTag(svc)
					if !ok {
						continue
					}
					target = prev
				}
				if target == current {
					continue
				}
				plan = append(plan, rollbackStep{svc: svc, current: current, target: target})
			}

			if len(plan) == 0 {
				printWarning("No services to roll back (no previous versions available)")
				return errors.New("nothing to roll back")
			}

			fmt.Println("Services to roll back:")
			fmt.Println()
			for _, step := range plan {
				fmt.Printf("  %s: %s %s %s\n", step.svc, step.current, styles.IconArrowRight, styles.Theme.Highlight.Render(step.target))
			}
			fmt.Println()

			if !a.Confirm("Proceed with rollback?", false) {
				fmt.Println("Rollback cancelled.")
				return nil
			}

			succeeded := 0
			for _, step := range plan {
				printInfo(fmt.Sprintf("Rolling back %s to %s...", step.svc, step.target))
				ref := m.ImageRef(step.svc, step.target)
				if err := pullImage(ctx, eng, ref); err != nil {
					printError(fmt.Sprintf("Failed to pull %s:%s: %v", step.svc, step.target, err))
					continue
				}
				m.Record(step.svc, step.target, imageDigest(ctx, eng, ref), config.Operator(), true)
				succeeded++
				printSuccess(fmt.Sprintf("Rolled back %s: %s %s %s", step.svc, step.current, styles.IconArrowRight, step.target))
			}

			if succeeded == 0 {
				a.Journal().Record(journal.Entry{Command: "rollback", Outcome: journal.OutcomeFailed, Detail: "no services rolled back"})
				return errors.New("rollback failed")
			}

			if err := a.Store.Save(m); err != nil {
				return err
			}
			if err := generateEnv(a, m); err != nil {
				return err
			}

			outcome := journal.OutcomeOK
			if succeeded < len(plan) {
				outcome = journal.OutcomePartial
			}
			a.Journal().Record(journal.Entry{Command: "rollback", Service: rollbackService, Tag: rollbackTag, Outcome: outcome, Detail: fmt.Sprintf("rolled back %d/%d services", succeeded, len(plan))})

			fmt.Println()
			printSuccess(fmt.Sprintf("Rolled back %d service(s)", succeeded))
			if succeeded < len(plan) {
				printWarning(fmt.Sprintf("%d service(s) could not be rolled back", len(plan)-succeeded))
			}
			printInfo("Restart to apply: " + a.RestartHint())
			return nil
		},
	}
	rollbackCmd.Flags().StringVarP(&rollbackService, "service", "s", "", "service to roll back")
	rollbackCmd.Flags().StringVarP(&rollbackTag, "tag", "t", "", "explicit tag to roll back to (default: previous)")
	rollbackCmd.Flags().BoolVar(&rollbackAll, "all", false, "roll back every service")
	return rollbackCmd
}
