package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/engine"
	"github.com/dagknows/dkproxyctl/internal/journal"
)

var pullService string
var pullTag string

func NewPullCommand(a *cli.App) *cobra.Command {
	pullCmd := &cobra.Command{
		Use:          "pull",
		Short:        "Pull one service at a specific tag and record it",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := config.ParseService(pullService)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}

			m := a.Store.Load()
			ref := m.ImageRef(svc, pullTag)

			printHeader("Pulling " + ref)
			if err := pullImage(ctx, eng, ref); err != nil {
				a.Journal().Record(journal.Entry{Command: "pull", Service: string(svc), Tag: pullTag, Outcome: journal.OutcomeFailed, Detail: err.Error()})
				return err
			}
			printSuccess("Pulled " + ref)

			m.Record(svc, pullTag, imageDigest(ctx, eng, ref), config.Operator(), false)
			if err := a.Store.Save(m); err != nil {
				return err
			}
			if err := generateEnv(a, m); err != nil {
				return err
			}
			a.Journal().Record(journal.Entry{Command: "pull", Service: string(svc), Tag: pullTag, Outcome: journal.OutcomeOK})

			fmt.Println()
			printInfo("Restart to apply: " + a.RestartHint())
			return nil
		},
	}
	pullCmd.Flags().StringVarP(&pullService, "service", "s", "", "service to pull (required)")
	pullCmd.Flags().StringVarP(&pullTag, "tag", "t", "", "image tag to pull (required)")
	_ = pullCmd.MarkFlagRequired("service")
	_ = pullCmd.MarkFlagRequired("tag")
	return pullCmd
}

func NewPullFromManifestCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:          "pull-from-manifest",
		Short:        "Pull every service at its manifest version",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}

			m := a.Store.Load()
			if !m.Tracked() {
				printWarning("No versions recorded in the manifest yet")
				printInfo("Pulling latest versions and recording them...")
				return runPullLatest(ctx, a, eng)
			}

			printHeader("Pulling Manifest Versions")
			var failed int
			for _, svc := range config.Services() {
				tag := m.EffectiveTag(svc)
				ref := m.ImageRef(svc, tag)
				if err := pullImage(ctx, eng, ref); err != nil {
					printError("Failed to pull " + ref + ": " + err.Error())
					failed++
					continue
				}
				printSuccess("Pulled " + ref)
			}

			total := len(config.Services())
			if failed > 0 {
				a.Journal().Record(journal.Entry{Command: "pull-from-manifest", Outcome: journal.OutcomePartial, Detail: fmt.Sprintf("pulled %d/%d services", total-failed, total)})
				return fmt.Errorf("%d of %d services failed to pull", failed, total)
			}
			a.Journal().Record(journal.Entry{Command: "pull-from-manifest", Outcome: journal.OutcomeOK, Detail: fmt.Sprintf("pulled %d services", total)})
			fmt.Println()
			printSuccess(fmt.Sprintf("All %d images pulled at their recorded versions", total))
			return nil
		},
	}
}

func NewPullLatestCommand(a *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:          "pull-latest",
		Short:        "Pull latest for every service, record and pin the versions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := requireDocker(ctx, a)
			if err != nil {
				return err
			}
			return runPullLatest(ctx, a, eng)
		},
	}
}

// runPullLatest pulls :latest for every service, records what was pulled and
// pins the floating tags to the semantic versions the registry reports.
// pull-from-manifest delegates here when the manifest is still empty.
func runPullLatest(ctx context.Context, a *cli.App, eng *engine.Client) error {
	m := a.Store.Load()

	printHeader("Pulling Latest Versions")
	var pulled []config.Service
	var failed int
	for _, svc := range config.Services() {
		ref := m.ImageRef(svc, "latest")
		if err := pullImage(ctx, eng, ref); err != nil {
			printError("Failed to pull " + ref + ": " + err.Error())
			failed++
			continue
		}
		printSuccess("Pulled " + ref)
		m.Record(svc, "latest", imageDigest(ctx, eng, ref), config.Operator(), false)
		pulled = append(pulled, svc)
	}

	if len(pulled) == 0 {
		a.Journal().Record(journal.Entry{Command: "pull-latest", Outcome: journal.OutcomeFailed, Detail: "no images pulled"})
		return errors.New("no images could be pulled")
	}
	if err := a.Store.Save(m); err != nil {
		return err
	}

	// Pin "latest" to the versions actually pulled so rollbacks have real
	// targets to work with.
	if resolver, err := a.Resolver(ctx); err != nil {
		printWarning("Skipping tag resolution: " + err.Error())
	} else if err := resolver.CheckAccess(ctx); err != nil {
		printWarning("ECR API not reachable, recorded tags stay at 'latest'")
		log.Debug("ECR access probe failed", "error", err)
	} else if n := resolveFloatingTags(ctx, resolver, m, pulled); n > 0 {
		if err := a.Store.Save(m); err != nil {
			return err
		}
	}

	if err := generateEnv(a, m); err != nil {
		return err
	}

	total := len(config.Services())
	detail := fmt.Sprintf("pulled %d/%d services", len(pulled), total)
	fmt.Println()
	printInfo("Restart to apply: " + a.RestartHint())
	if failed > 0 {
		a.Journal().Record(journal.Entry{Command: "pull-latest", Outcome: journal.OutcomePartial, Detail: detail})
		return fmt.Errorf("%d of %d services failed to pull", failed, total)
	}
	a.Journal().Record(journal.Entry{Command: "pull-latest", Outcome: journal.OutcomeOK, Detail: detail})
	return nil
}
