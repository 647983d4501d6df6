// Package cli holds the shared application state the commands operate on:
// resolved configuration, the manifest store, and lazily created handles to
// the Docker engine, the registry API, and the operations journal.
package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/log"

	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/engine"
	"github.com/dagknows/dkproxyctl/internal/journal"
	"github.com/dagknows/dkproxyctl/internal/manifest"
	"github.com/dagknows/dkproxyctl/internal/registry"
)

// BuildInfo carries the ldflags-injected build identity.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App is handed to every command constructor.
type App struct {
	Config config.Config
	Store  *manifest.Store
	Build  BuildInfo

	// Yes answers every confirmation prompt with yes (--yes).
	Yes bool

	engine      *engine.Client
	journal     *journal.Journal
	journalOnce sync.Once
}

// Init resolves configuration and prepares the manifest store. It runs after
// flag parsing so --config and the env override are honored even though the
// commands receive their App pointer at registration time. Collaborators that
// need external resources (daemon socket, AWS credentials, state dir) are
// created on first use so read-only commands stay cheap.
func (a *App) Init(configPath string, build BuildInfo) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn("Unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	a.Config = cfg
	a.Store = manifest.NewStore(cfg.Paths.Manifest, cfg.Paths.BackupDir)
	a.Build = build
	return nil
}

func NewApp(configPath string, build BuildInfo) (*App, error) {
	a := &App{}
	if err := a.Init(configPath, build); err != nil {
		return nil, err
	}
	return a, nil
}

// Engine returns the Docker engine client, creating it on first use.
func (a *App) Engine() (*engine.Client, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	eng, err := engine.New(a.Config.Docker, registry.CredStore{})
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	a.engine = eng
	return eng, nil
}

// RequireDocker gates commands that touch the daemon behind the access probe,
// so a stopped daemon or missing group membership fails up front with a
// remediation hint instead of half way through a pull.
func (a *App) RequireDocker(ctx context.Context) (*engine.Client, error) {
	eng, err := a.Engine()
	if err != nil {
		return nil, err
	}
	if err := eng.CheckAccess(ctx); err != nil {
		return nil, err
	}
	return eng, nil
}

// Resolver builds the ECR Public tag resolver using the configured AWS
// settings.
func (a *App) Resolver(ctx context.Context) (*registry.Resolver, error) {
	api, err := registry.NewECRPublicAPI(ctx, a.Config.AWS)
	if err != nil {
		return nil, err
	}
	return registry.NewResolver(api), nil
}

// Journal returns the operations journal, opened on first use. A journal
// that cannot open disables itself; a nil journal swallows writes.
func (a *App) Journal() *journal.Journal {
	a.journalOnce.Do(func() {
		j, err := journal.Open(a.Config.Paths.StateDir)
		if err != nil {
			log.Debug("Journal disabled", "error", err)
			return
		}
		a.journal = j
	})
	return a.journal
}

// Close releases long-lived handles.
func (a *App) Close() {
	if a.journal != nil {
		a.journal.Close()
	}
}

// Confirm asks a yes/no question, honoring --yes. A Ctrl-C during the prompt
// counts as no.
func (a *App) Confirm(question string, def bool) bool {
	if a.Yes {
		return true
	}
	answer := def
	err := survey.AskOne(&survey.Confirm{Message: question, Default: def}, &answer)
	if err != nil {
		if err == terminal.InterruptErr {
			return false
		}
		log.Debug("Prompt failed, treating as no", "error", err)
		return false
	}
	return answer
}

// RestartHint is the command line that applies a recorded version change,
// matching what the compose runner would execute.
func (a *App) RestartHint() string {
	parts := append([]string{}, a.Config.Compose.Command...)
	if a.Config.Compose.Project != "" {
		parts = append(parts, "-p", a.Config.Compose.Project)
	}
	parts = append(parts, "--env-file", a.Config.Paths.EnvFile, "up", "-d")
	return strings.Join(parts, " ")
}
