package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagknows/dkproxyctl/internal/config"
)

func TestInit_ResolvesConfigAndStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dkproxyctl.yml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\ncompose:\n  project: dkproxy\n"), 0o644))

	a := &App{}
	err := a.Init(path, BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-08-22"})
	require.NoError(t, err)

	assert.Equal(t, "dkproxy", a.Config.Compose.Project)
	assert.Equal(t, "1.2.3", a.Build.Version)
	require.NotNil(t, a.Store)
}

func TestInit_ExplicitMissingConfigFails(t *testing.T) {
	a := &App{}
	err := a.Init(filepath.Join(t.TempDir(), "nope.yml"), BuildInfo{})
	assert.Error(t, err)
}

func TestConfirm_YesFlagSkipsPrompt(t *testing.T) {
	a := &App{Yes: true}
	assert.True(t, a.Confirm("Proceed?", false))
}

func TestRestartHint(t *testing.T) {
	a := &App{Config: config.Default()}
	assert.Equal(t, "docker compose --env-file versions.env up -d", a.RestartHint())

	a.Config.Compose.Project = "dkproxy"
	assert.Equal(t, "docker compose -p dkproxy --env-file versions.env up -d", a.RestartHint())
}
