// Package compose drives the docker compose lifecycle around version changes.
// The stack's compose file resolves its image tags from the generated env
// file, so every invocation threads --env-file through.
package compose

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dagknows/dkproxyctl/internal/config"
)

// Runner shells out to docker compose. When Elevated is set the whole
// invocation is wrapped in `sg docker -c`, for sessions where the user is in
// the docker group but the group is not active yet.
type Runner struct {
	Command  []string
	Dir      string
	Project  string
	EnvFile  string
	Elevated bool
	Stdout   io.Writer
	Stderr   io.Writer
}

// NewRunner builds a runner from the tool config. Compose output is inherited
// so the operator sees progress directly.
func NewRunner(cfg config.ComposeConfig, envFile string) *Runner {
	return &Runner{
		Command:  cfg.Command,
		Dir:      cfg.Dir,
		Project:  cfg.Project,
		EnvFile:  envFile,
		Elevated: cfg.Elevated,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Stop stops the whole stack without removing containers.
func (r *Runner) Stop(ctx context.Context) error {
	return r.run(ctx, "stop")
}

// Start brings the stack up detached, recreating containers whose image
// changed.
func (r *Runner) Start(ctx context.Context) error {
	return r.run(ctx, "up", "-d")
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	argv := r.argv(args...)
	log.Debug("Running compose command", "argv", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", strings.Join(argv, " "), err)
	}
	return nil
}

// argv assembles the final command line, applying the sg wrap when elevated.
func (r *Runner) argv(args ...string) []string {
	line := make([]string, 0, len(r.Command)+len(args)+4)
	line = append(line, r.Command...)
	if r.Project != "" {
		line = append(line, "-p", r.Project)
	}
	if r.EnvFile != "" {
		line = append(line, "--env-file", r.EnvFile)
	}
	line = append(line, args...)

	if !r.Elevated {
		return line
	}
	quoted := make([]string, len(line))
	for i, arg := range line {
		quoted[i] = shellQuote(arg)
	}
	return []string{"sg", "docker", "-c", strings.Join(quoted, " ")}
}

// shellQuote makes an argument safe inside the sh -c line sg builds.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case r == '-', r == '_', r == '.', r == '/', r == '=', r == ':':
		return false
	}
	return true
}
