package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/journal"
	"github.com/dagknows/dkproxyctl/internal/migration"
)

func NewMigrateCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Enable version tracking for an existing deployment",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printHeader("DagKnows Version Migration Wizard")

			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}

			resolver, err := a.Resolver(ctx)
			if err != nil {
				log.Debug("Registry client unavailable", "error", err)
				resolver = nil
			}

			err = migration.Run(ctx, migration.Options{
				Store:      a.Store,
				Engine:     eng,
				Resolver:   resolver,
				AWS:        a.Config.AWS,
				EnvFile:    a.Config.Paths.EnvFile,
				Project:    a.Config.Compose.Project,
				ComposeDir: a.Config.Compose.Dir,
				AssumeYes:  a.Yes,
			})
			if errors.Is(err, migration.ErrCancelled) {
				fmt.Println("Migration cancelled.")
				return nil
			}
			if err != nil {
				a.Journal().Record(journal.Entry{Command: "migrate", Outcome: journal.OutcomeFailed, Detail: err.Error()})
				return err
			}
			a.Journal().Record(journal.Entry{Command: "migrate", Outcome: journal.OutcomeOK, Detail: "version tracking enabled"})
			return nil
		},
	}
}
