package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/journal"
)

var setService string
var setTag string

func NewSetCommand(a *cli.App) *cobra.Command {
	setCmd := &cobra.Command{
		Use:          "set",
		Short:        "Pin one service to a specific tag until the next deployment",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := config.ParseService(setService)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}

			printHeader("Setting Custom Version")
			m := a.Store.Load()
			ref := m.ImageRef(svc, setTag)

			if err := pullImage(ctx, eng, ref); err != nil {
				a.Journal().Record(journal.Entry{Command: "set", Service: string(svc), Tag: setTag, Outcome: journal.OutcomeFailed, Detail: err.Error()})
				return err
			}
			printSuccess(fmt.Sprintf("Pulled %s:%s", svc, setTag))

			m.Record(svc, setTag, imageDigest(ctx, eng, ref), config.Operator(), false)
			m.SetOverride(svc, setTag, "Custom version set via CLI")

			if err := a.Store.Save(m); err != nil {
				return err
			}
			if err := generateEnv(a, m); err != nil {
				return err
			}
			a.Journal().Record(journal.Entry{Command: "set", Service: string(svc), Tag: setTag, Outcome: journal.OutcomeOK})

			fmt.Println()
			printSuccess(fmt.Sprintf("Set %s to %s", svc, setTag))
			printInfo("The pin holds until the next normal deployment records a new version")
			printInfo("Restart to apply: " + a.RestartHint())
			return nil
		},
	}
	setCmd.Flags().StringVarP(&setService, "service", "s", "", "service to pin (required)")
	setCmd.Flags().StringVarP(&setTag, "tag", "t", "", "tag to pin it to (required)")
	_ = setCmd.MarkFlagRequired("service")
	_ = setCmd.MarkFlagRequired("tag")
	return setCmd
}
