package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/journal"
	"github.com/dagknows/dkproxyctl/internal/manifest"
	"github.com/dagknows/dkproxyctl/internal/registry"
)

func NewResolveTagsCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:          "resolve-tags",
		Short:        "Resolve recorded 'latest' tags to semantic versions from ECR",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			printHeader("Resolving Image Tags from ECR")
			resolver, err := a.Resolver(ctx)
			if err != nil {
				return err
			}
			if err := resolver.CheckAccess(ctx); err != nil {
				printError("Cannot access the ECR Public API")
				printInfo("Make sure the AWS CLI is configured with valid credentials: aws configure")
				printInfo("Required IAM permission: ecr-public:DescribeImages")
				log.Debug("ECR access probe failed", "error", err)
				return errors.New("ECR Public API is not accessible")
			}
			printSuccess("ECR Public API accessible")
			fmt.Println()

			m := a.Store.Load()
			n := resolveFloatingTags(ctx, resolver, m, config.Services())
			if n == 0 {
				fmt.Println()
				printWarning("No tags were resolved")
				return nil
			}

			if err := a.Store.Save(m); err != nil {
				return err
			}
			if err := generateEnv(a, m); err != nil {
				return err
			}
			a.Journal().Record(journal.Entry{Command: "resolve-tags", Outcome: journal.OutcomeOK, Detail: fmt.Sprintf("resolved %d services", n)})
			fmt.Println()
			printSuccess(fmt.Sprintf("Resolved %d service(s) to semantic versions", n))
			return nil
		},
	}
}

// resolveFloatingTags rewrites each service still recorded at "latest" to the
// semantic tag the registry reports for its pulled digest. Returns how many
// entries were rewritten; the caller saves the manifest.
func resolveFloatingTags(ctx context.Context, resolver *registry.Resolver, m *manifest.Manifest, services []config.Service) int {
	resolved := 0
	for _, svc := range services {
		if !svc.ECRHosted() {
			fmt.Printf("  %s: skipped (not in ECR, defaults to :latest)\n", svc)
			continue
		}
		current := m.EffectiveTag(svc)
		if current != "latest" {
			fmt.Printf("  %s: %s (already versioned)\n", svc, current)
			continue
		}

		var digest string
		if rec, ok := m.Services[svc]; ok {
			digest = rec.ImageDigest
		}
		tag, err := resolver.Resolve(ctx, svc, digest)
		if err != nil {
			printWarning(fmt.Sprintf("  %s: resolve failed: %v", svc, err))
			continue
		}
		if tag == "" {
			printWarning(fmt.Sprintf("  %s: could not resolve (keeping 'latest')", svc))
			continue
		}
		if !m.RewriteCurrentTag(svc, tag) {
			printWarning(fmt.Sprintf("  %s: no recorded version to rewrite", svc))
			continue
		}
		printSuccess(fmt.Sprintf("  %s: latest %s %s", svc, styles.IconArrowRight, tag))
		resolved++
	}
	return resolved
}
