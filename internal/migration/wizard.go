// Package migration implements the interactive wizard that converts an
// unversioned compose deployment into a manifest-tracked one: it snapshots
// the running containers, resolves floating tags where the registry allows,
// and writes the initial manifest and env file.
package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/log"

	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/engine"
	"github.com/dagknows/dkproxyctl/internal/manifest"
	"github.com/dagknows/dkproxyctl/internal/registry"
)

// ErrCancelled reports that the operator declined one of the wizard's
// confirmations.
var ErrCancelled = errors.New("migration cancelled")

// Options wires the wizard's dependencies.
type Options struct {
	Store      *manifest.Store
	Engine     *engine.Client
	Resolver   *registry.Resolver // nil disables tag resolution
	AWS        config.AWSConfig
	EnvFile    string
	Project    string
	ComposeDir string
	AssumeYes  bool
}

// Run walks the operator through enabling version tracking.
func Run(ctx context.Context, opts Options) error {
	fmt.Println("This wizard will enable version tracking for your DagKnows deployment.")
	fmt.Println("It creates a version manifest from the currently running containers.")
	fmt.Println()

	canResolve := false
	if opts.Resolver != nil {
		if err := opts.Resolver.CheckAccess(ctx); err == nil {
			canResolve = true
			fmt.Println(successLine("ECR Public API reachable, 'latest' tags can be resolved to real versions"))
			fmt.Println(infoLine("Logging into public ECR..."))
			if err := registry.LoginPublic(ctx, opts.AWS); err != nil {
				log.Debug("Public ECR login failed", "error", err)
				fmt.Println(warnLine("Could not log into public ECR (pulls may still work anonymously)"))
			} else {
				fmt.Println(successLine("Logged into " + config.PublicRegistryHost))
			}
		} else {
			log.Debug("ECR access probe failed", "error", err)
			fmt.Println(warnLine("Cannot query the ECR Public API to resolve ':latest' to specific versions"))
			fmt.Println(infoLine("Services running ':latest' will be tracked as 'latest'"))
			fmt.Println(infoLine("Set real versions later with: dkproxyctl set --service <svc> --tag <tag>"))
		}
	} else {
		fmt.Println(warnLine("Tag resolution unavailable, services running ':latest' stay tracked as 'latest'"))
	}
	fmt.Println()

	if !confirm(opts, "This will enable version tracking. Continue?", false) {
		return ErrCancelled
	}

	if _, err := os.Stat(opts.Store.Path); err == nil {
		fmt.Println(warnLine(filepath.Base(opts.Store.Path) + " already exists!"))
		if !confirm(opts, "Overwrite the existing manifest?", false) {
			return ErrCancelled
		}
	}

	fmt.Println(stepLine("Detecting current deployment state..."))
	detected, err := Snapshot(ctx, opts.Engine, opts.Project)
	if err != nil {
		return err
	}

	running := 0
	for _, d := range detected {
		if d.Running {
			running++
		}
	}
	if running == 0 {
		fmt.Println(warnLine("No running containers detected."))
		fmt.Println(infoLine("Start the services first if you want real versions captured."))
		if !confirm(opts, "Continue anyway (every service will be tracked as 'latest')?", false) {
			return ErrCancelled
		}
	} else {
		showState(detected)
		if canResolve {
			ResolveFloating(ctx, opts.Resolver, detected)
		}
	}

	if !confirm(opts, "Create manifest from detected images?", true) {
		return ErrCancelled
	}

	fmt.Println(stepLine("Deployment information"))
	id := Identity{DeploymentID: DefaultDeploymentID()}
	if !opts.AssumeYes {
		id.CustomerID = ask("Customer ID (optional):", "")
		id.DeploymentID = ask("Deployment ID:", id.DeploymentID)
		id.ProxyLocation = ask("Proxy location (optional):", "")
	}

	fmt.Println(stepLine("Creating " + filepath.Base(opts.Store.Path) + "..."))
	m := BuildManifest(detected, id)
	if err := opts.Store.Save(m); err != nil {
		return err
	}
	fmt.Println(successLine("Created " + opts.Store.Path))

	fmt.Println(stepLine("Generating " + opts.EnvFile + "..."))
	if err := manifest.WriteEnvFile(m, opts.EnvFile); err != nil {
		return err
	}
	fmt.Println(successLine("Created " + opts.EnvFile))

	fmt.Println(stepLine("Verifying configuration..."))
	if err := verify(opts); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(successLine("Migration completed successfully!"))
	fmt.Println()
	fmt.Println(styles.Theme.Bold.Render("Next steps:"))
	fmt.Println("  1. dkproxyctl show     shows the tracked versions")
	fmt.Println("  2. Restart the stack so compose picks up " + opts.EnvFile)
	fmt.Println("  3. dkproxyctl --help   lists every version command")
	return nil
}

// verify re-reads what the wizard wrote and checks it hangs together before
// declaring success.
func verify(opts Options) error {
	m := opts.Store.Load()
	if !m.Tracked() || len(m.Services) < len(config.Services()) {
		return errors.New("manifest verification failed: missing service records")
	}
	fmt.Println(successLine(filepath.Base(opts.Store.Path) + " is valid"))

	if err := manifest.VerifyEnvFile(opts.EnvFile); err != nil {
		return err
	}
	fmt.Println(successLine(opts.EnvFile + " is valid"))

	composePath := filepath.Join(opts.ComposeDir, "docker-compose.yml")
	if data, err := os.ReadFile(composePath); err == nil {
		if strings.Contains(string(data), "${DK_") {
			fmt.Println(successLine("docker-compose.yml uses version variables"))
		} else {
			fmt.Println(warnLine("docker-compose.yml may need updating to use the DK_*_TAG variables"))
		}
	}
	return nil
}

func showState(detected map[config.Service]DetectedImage) {
	fmt.Println()
	fmt.Println("Detected running containers:")
	fmt.Println()
	for _, svc := range config.Services() {
		d := detected[svc]
		if d.Running {
			fmt.Printf("  %s %-20s %s\n", styles.Theme.Success.Render(styles.IconSuccess), svc, styles.Theme.Highlight.Render(d.Tag))
		} else {
			fmt.Printf("  %s %-20s %s\n", styles.Theme.Warning.Render("?"), svc, styles.Theme.Muted.Render("(not running)"))
		}
	}
	fmt.Println()
}

func confirm(opts Options, question string, def bool) bool {
	if opts.AssumeYes {
		return true
	}
	ok := def
	if err := survey.AskOne(&survey.Confirm{Message: question, Default: def}, &ok); err != nil {
		if !errors.Is(err, terminal.InterruptErr) {
			log.Debug("Prompt failed", "error", err)
		}
		return false
	}
	return ok
}

func ask(question, def string) string {
	answer := def
	if err := survey.AskOne(&survey.Input{Message: question, Default: def}, &answer); err != nil {
		if !errors.Is(err, terminal.InterruptErr) {
			log.Debug("Prompt failed", "error", err)
		}
		return def
	}
	return strings.TrimSpace(answer)
}

func stepLine(msg string) string    { return styles.Theme.Heading.Render(">>> " + msg) }
func successLine(msg string) string { return styles.RenderSuccess(msg) }
func warnLine(msg string) string    { return styles.RenderWarning(msg) }
func infoLine(msg string) string    { return styles.RenderInfo(msg) }
