package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoFile_UsesDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "")

	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err, "explicit missing path should error")

	// Implicit lookup of a missing default file is fine.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "version-manifest.yaml", cfg.Paths.Manifest)
	assert.Equal(t, "versions.env", cfg.Paths.EnvFile)
	assert.Equal(t, ".version-backups", cfg.Paths.BackupDir)
	assert.Equal(t, []string{"docker", "compose"}, cfg.Compose.Command)
	assert.Equal(t, "us-east-1", cfg.AWS.PublicRegion)
	assert.False(t, cfg.Compose.Elevated)
}

func TestLoad_FileOverridesAndDefaultsBackfill(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "dkproxyctl.yml")
	content := `
paths:
  manifest: /srv/proxy/version-manifest.yaml
compose:
  elevated: true
  project: dkproxy
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/proxy/version-manifest.yaml", cfg.Paths.Manifest)
	assert.True(t, cfg.Compose.Elevated)
	assert.Equal(t, "dkproxy", cfg.Compose.Project)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, "versions.env", cfg.Paths.EnvFile)
	assert.Equal(t, []string{"docker", "compose"}, cfg.Compose.Command)
}

func TestLoad_EnvLogLevelWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	t.Setenv(EnvLogLevel, "debug")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestParseService_AcceptsBothSpellings(t *testing.T) {
	tests := []struct {
		in   string
		want Service
	}{
		{"outpost", ServiceOutpost},
		{"cmd_exec", ServiceCmdExec},
		{"cmd-exec", ServiceCmdExec},
		{" vault ", ServiceVault},
	}
	for _, tt := range tests {
		got, err := ParseService(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseService("req_router")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service")
}

func TestService_Topology(t *testing.T) {
	assert.True(t, ServiceOutpost.ECRHosted())
	assert.True(t, ServiceCmdExec.ECRHosted())
	assert.False(t, ServiceVault.ECRHosted())

	assert.Equal(t, "cmd-exec", ServiceCmdExec.ComposeName())
	assert.Equal(t, "outpost", ServiceOutpost.ComposeName())

	assert.Equal(t, "DK_CMD_EXEC", ServiceCmdExec.EnvPrefix())
	assert.Equal(t, "hashicorp/vault", ServiceVault.DockerHubImage())
	assert.Equal(t, "", ServiceOutpost.DockerHubImage())

	assert.Equal(t, []Service{ServiceOutpost, ServiceCmdExec}, ECRServices())
}
