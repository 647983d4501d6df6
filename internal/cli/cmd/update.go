package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/compose"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/engine"
	"github.com/dagknows/dkproxyctl/internal/journal"
)

// healthWindow bounds how long update-safe waits for the restarted stack to
// pass the health threshold.
const healthWindow = 60 * time.Second

// composeTimeout bounds each compose lifecycle call.
const composeTimeout = 5 * time.Minute

// runCompose runs one compose lifecycle operation under the compose timeout.
func runCompose(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, composeTimeout)
	defer cancel()
	return op(ctx)
}

func NewUpdateSafeCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:          "update-safe",
		Short:        "Update every service to latest with backup, restart and health check",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printHeader("DagKnows Safe Update")
			printInfo("This will update all services to their latest versions")
			fmt.Println()

			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}

			// Backup first so a bad update can be rolled back by hand.
			printInfo("Creating backup before update...")
			backupPath, err := a.Store.Backup()
			switch {
			case err != nil:
				printWarning("Could not create backup: " + err.Error())
				if !a.Confirm("Continue without a backup?", false) {
					fmt.Println("Update cancelled.")
					return nil
				}
			case backupPath == "":
				printInfo("No manifest to back up yet")
			default:
				printSuccess("Backup created: " + backupPath)
			}

			m := a.Store.Load()

			printInfo("Pulling latest images...")
			var pulled []config.Service
			var refs = map[config.Service]string{}
			for _, svc := range config.Services() {
				ref := m.ImageRef(svc, "latest")
				refs[svc] = ref
				if err := pullImage(ctx, eng, ref); err != nil {
					printError(fmt.Sprintf("  %s (failed): %v", svc, err))
					continue
				}
				printSuccess("  " + string(svc))
				pulled = append(pulled, svc)
			}

			total := len(config.Services())
			if len(pulled) == 0 {
				a.Journal().Record(journal.Entry{Command: "update-safe", Outcome: journal.OutcomeFailed, Detail: "no images pulled"})
				return errors.New("no images could be pulled")
			}
			if len(pulled) < total {
				printWarning(fmt.Sprintf("Only %d/%d images pulled", len(pulled), total))
				if !a.Confirm("Continue with partial update?", false) {
					fmt.Println("Update cancelled.")
					return nil
				}
			} else {
				printSuccess("Images pulled successfully")
			}

			printInfo("Updating manifest...")
			for _, svc := range pulled {
				m.Record(svc, "latest", imageDigest(ctx, eng, refs[svc]), config.Operator(), false)
			}
			if err := a.Store.Save(m); err != nil {
				return err
			}
			printSuccess("Manifest updated")

			fmt.Println()
			if resolver, err := a.Resolver(ctx); err != nil {
				printWarning("Skipping tag resolution: " + err.Error())
			} else if err := resolver.CheckAccess(ctx); err != nil {
				printWarning("Could not resolve semantic versions, keeping 'latest' tags")
				printInfo("You can retry later with: dkproxyctl resolve-tags")
				log.Debug("ECR access probe failed", "error", err)
			} else if n := resolveFloatingTags(ctx, resolver, m, pulled); n > 0 {
				if err := a.Store.Save(m); err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Resolved %d service(s) to semantic versions", n))
			} else {
				printWarning("Could not resolve semantic versions, keeping 'latest' tags")
				printInfo("You can retry later with: dkproxyctl resolve-tags")
			}

			// The env file must carry the new tags before compose restarts.
			if err := generateEnv(a, m); err != nil {
				return err
			}

			runner := compose.NewRunner(a.Config.Compose, a.Config.Paths.EnvFile)

			printInfo("Stopping services...")
			if err := runCompose(ctx, runner.Stop); err != nil {
				a.Journal().Record(journal.Entry{Command: "update-safe", Outcome: journal.OutcomeFailed, Detail: "compose stop failed"})
				printError("Failed to stop services")
				return err
			}
			printSuccess("Services stopped")

			printInfo("Starting services with new images...")
			if err := runCompose(ctx, runner.Start); err != nil {
				a.Journal().Record(journal.Entry{Command: "update-safe", Outcome: journal.OutcomeFailed, Detail: "compose start failed"})
				printError("Failed to start services")
				return err
			}

			printInfo("Waiting for services to become healthy...")
			summary, ok := waitHealthy(ctx, eng, a.Config.Compose.Project, healthWindow)
			if !ok {
				printWarning(fmt.Sprintf("Only %d/%d containers healthy after %s", summary.Healthy, summary.Total, healthWindow))
				printInfo("Inspect with: dkproxyctl status")
				printInfo("Roll back with: dkproxyctl rollback --all")
				a.Journal().Record(journal.Entry{Command: "update-safe", Outcome: journal.OutcomePartial, Detail: fmt.Sprintf("%d/%d containers healthy", summary.Healthy, summary.Total)})
				return errors.New("services did not become healthy")
			}
			printSuccess(fmt.Sprintf("%d/%d containers healthy", summary.Healthy, summary.Total))

			outcome := journal.OutcomeOK
			detail := fmt.Sprintf("updated %d/%d services", len(pulled), total)
			if len(pulled) < total {
				outcome = journal.OutcomePartial
			}
			a.Journal().Record(journal.Entry{Command: "update-safe", Outcome: outcome, Detail: detail})

			fmt.Println()
			printSuccess("Update completed successfully!")
			return nil
		},
	}
}

// waitHealthy polls the compose project until it passes the health threshold
// or the window closes. Returns the last summary either way.
func waitHealthy(ctx context.Context, eng *engine.Client, project string, window time.Duration) (engine.HealthSummary, bool) {
	deadline := time.Now().Add(window)
	var last engine.HealthSummary
	for {
		statuses, err := eng.ComposeContainers(ctx, project)
		if err != nil {
			log.Debug("Container listing failed during health wait", "error", err)
		} else {
			last = engine.Summarize(statuses)
			if last.Total > 0 && last.OK() {
				return last, true
			}
		}
		if time.Now().After(deadline) {
			return last, false
		}
		select {
		case <-ctx.Done():
			return last, false
		case <-time.After(5 * time.Second):
		}
	}
}
