package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
)

func NewGenerateEnvCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-env",
		Short: "Regenerate the compose env file from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.Store.Load()
			if err := generateEnv(a, m); err != nil {
				return err
			}

			fmt.Println()
			for _, svc := range config.Services() {
				fmt.Printf("  %s_TAG=%s\n", svc.EnvPrefix(), styles.Theme.Highlight.Render(m.EffectiveTag(svc)))
			}
			fmt.Println()
			printInfo("Restart services to apply: " + a.RestartHint())
			return nil
		},
	}
}
