// Package cmd implements the dkproxyctl commands. Each command gets the
// shared App and returns a cobra.Command; printing stays here while the
// manifest, registry, and engine packages do the work.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dagknows/dkproxyctl/internal/cli"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/components"
	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
	"github.com/dagknows/dkproxyctl/internal/engine"
	"github.com/dagknows/dkproxyctl/internal/manifest"
)

func printHeader(title string) {
	fmt.Println()
	fmt.Println(styles.Theme.Title.Render(title))
	fmt.Println(styles.Theme.Muted.Render(strings.Repeat(styles.BorderHorizontal, len(title))))
}

func printSuccess(msg string) { fmt.Println(styles.RenderSuccess(msg)) }
func printError(msg string)   { fmt.Println(styles.RenderError(msg)) }
func printWarning(msg string) { fmt.Println(styles.RenderWarning(msg)) }
func printInfo(msg string)    { fmt.Println(styles.RenderInfo(msg)) }

// requireDocker runs the engine access probe and prints its remediation
// hints on failure. Commands that pull or restart call this first.
func requireDocker(ctx context.Context, a *cli.App) (*engine.Client, error) {
	eng, err := a.RequireDocker(ctx)
	if err == nil {
		return eng, nil
	}
	var accessErr *engine.AccessError
	if errors.As(err, &accessErr) {
		printError(accessErr.Reason)
		for _, hint := range accessErr.Hints {
			printInfo(hint)
		}
		return nil, errors.New("docker is not accessible")
	}
	return nil, err
}

// pullImage pulls one image behind a spinner. On failure the captured pull
// output is shown indented under the error.
func pullImage(ctx context.Context, eng *engine.Client, ref string) error {
	var out string
	err := components.RunWithSpinner(ctx, "Pulling "+ref, func(ctx context.Context) error {
		var pullErr error
		out, pullErr = eng.Pull(ctx, ref)
		return pullErr
	})
	if err != nil && strings.TrimSpace(out) != "" {
		fmt.Println(styles.Theme.Muted.Render(indent(out, "  ")))
	}
	return err
}

// imageDigest reads the repo digest of a just-pulled image. Inspect trouble
// downgrades to an empty digest; the manifest tolerates it.
func imageDigest(ctx context.Context, eng *engine.Client, ref string) string {
	digest, err := eng.ImageDigest(ctx, ref)
	if err != nil {
		log.Debug("Could not read image digest", "image", ref, "error", err)
		return ""
	}
	return digest
}

// generateEnv regenerates the compose env file from the manifest.
func generateEnv(a *cli.App, m *manifest.Manifest) error {
	printInfo("Generating " + a.Config.Paths.EnvFile + "...")
	if err := manifest.WriteEnvFile(m, a.Config.Paths.EnvFile); err != nil {
		return err
	}
	printSuccess("Generated " + a.Config.Paths.EnvFile)
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// shortTimestamp trims an RFC3339 timestamp for table display.
func shortTimestamp(ts string, width int) string {
	if len(ts) > width {
		return ts[:width]
	}
	if ts == "" {
		return "unknown"
	}
	return ts
}
