// Package cmd wires the cobra command tree. Every subcommand receives the
// shared App; configuration resolves in the persistent pre-run so --config
// and DKPROXY_CONFIG take effect before any command body runs.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/cmd"
)

var (
	configPath string
	assumeYes  bool

	rootCmd = &cobra.Command{
		Use:   "dkproxyctl",
		Short: "Version management for DagKnows proxy deployments",
		Long: `dkproxyctl tracks which image version each DagKnows proxy service runs,
keeps a bounded deployment history per service, and drives pulls, rollbacks
and safe updates against the local Docker engine.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func InitializeCommands(a *cli.App) {
	rootCmd.AddCommand(cmd.NewShowCommand(a))
	rootCmd.AddCommand(cmd.NewHistoryCommand(a))
	rootCmd.AddCommand(cmd.NewPullCommand(a))
	rootCmd.AddCommand(cmd.NewPullFromManifestCommand(a))
	rootCmd.AddCommand(cmd.NewPullLatestCommand(a))
	rootCmd.AddCommand(cmd.NewRollbackCommand(a))
	rootCmd.AddCommand(cmd.NewSetCommand(a))
	rootCmd.AddCommand(cmd.NewResolveTagsCommand(a))
	rootCmd.AddCommand(cmd.NewUpdateSafeCommand(a))
	rootCmd.AddCommand(cmd.NewCheckUpdatesCommand(a))
	rootCmd.AddCommand(cmd.NewGenerateEnvCommand(a))
	rootCmd.AddCommand(cmd.NewStatusCommand(a))
	rootCmd.AddCommand(cmd.NewMigrateCommand(a))
	rootCmd.AddCommand(cmd.NewECRLoginCommand(a))
	rootCmd.AddCommand(cmd.NewJournalCommand(a))
	rootCmd.AddCommand(cmd.NewVersionCommand(a))
}

func Execute(ctx context.Context, a *cli.App) {
	InitializeCommands(a)
	defer a.Close()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func ExecuteCLI(build, commit, date string) {
	a := &cli.App{}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to dkproxyctl.yml")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := a.Init(configPath, cli.BuildInfo{Version: build, Commit: commit, Date: date}); err != nil {
			return err
		}
		a.Yes = assumeYes
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	Execute(ctx, a)
}
