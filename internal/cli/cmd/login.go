package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/registry"
)

func NewECRLoginCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:          "ecr-login",
		Short:        "Authenticate docker with the configured ECR registry",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			printHeader("ECR Login")

			m := a.Store.Load()
			if !m.ECR.UsePrivate || m.ECR.PrivateRegistry == "" {
				printInfo("Using public ECR, anonymous pulls work without authentication")
				printInfo("Logging in anyway raises the registry rate limits")
				if err := registry.LoginPublic(ctx, a.Config.AWS); err != nil {
					printWarning("Could not log into public ECR: " + err.Error())
					printInfo("Make sure the AWS CLI is configured with valid credentials")
					return nil
				}
				printSuccess("Logged into " + config.PublicRegistryHost)
				return nil
			}

			printInfo("Logging into private ECR: " + m.ECR.PrivateRegistry)
			if err := registry.LoginPrivate(ctx, m.ECR.PrivateRegistry, m.ECR.PrivateRegion, a.Config.AWS.Profile); err != nil {
				printError("Failed to log into ECR")
				printInfo("Make sure the AWS CLI is configured with valid credentials")
				return err
			}
			printSuccess("Successfully logged into ECR")
			return nil
		},
	}
}
