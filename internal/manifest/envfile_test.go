package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagknows/dkproxyctl/internal/config"
)

func TestWriteEnvFile(t *testing.T) {
	m := Default()
	m.Record(config.ServiceOutpost, "1.42", "", "tester", false)
	m.Record(config.ServiceCmdExec, "1.7", "", "tester", false)
	m.Record(config.ServiceVault, "latest", "", "tester", false)

	path := filepath.Join(t.TempDir(), "versions.env")
	require.NoError(t, WriteEnvFile(m, path))

	vars, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "public.ecr.aws/n5k3t9x2", vars["DK_ECR_REGISTRY"])
	assert.Equal(t, "public.ecr.aws/n5k3t9x2/outpost", vars["DK_OUTPOST_IMAGE"])
	assert.Equal(t, "1.42", vars["DK_OUTPOST_TAG"])
	assert.Equal(t, "public.ecr.aws/n5k3t9x2/cmd_exec", vars["DK_CMD_EXEC_IMAGE"])
	assert.Equal(t, "1.7", vars["DK_CMD_EXEC_TAG"])
	assert.Equal(t, "hashicorp/vault", vars["DK_VAULT_IMAGE"])
	assert.Equal(t, "latest", vars["DK_VAULT_TAG"])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "DO NOT EDIT MANUALLY")
}

func TestWriteEnvFile_OverrideWins(t *testing.T) {
	m := Default()
	m.Record(config.ServiceOutpost, "1.42", "", "tester", false)
	m.SetOverride(config.ServiceOutpost, "1.41-hotfix", "Custom version set via CLI")

	path := filepath.Join(t.TempDir(), "versions.env")
	require.NoError(t, WriteEnvFile(m, path))

	vars, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "1.41-hotfix", vars["DK_OUTPOST_TAG"])
}

func TestWriteEnvFile_EmptyManifestDefaultsToLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.env")
	require.NoError(t, WriteEnvFile(Default(), path))

	vars, err := godotenv.Read(path)
	require.NoError(t, err)
	for _, svc := range config.Services() {
		assert.Equal(t, "latest", vars[svc.EnvPrefix()+"_TAG"], svc)
	}
}

func TestVerifyEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.env")
	require.NoError(t, WriteEnvFile(Default(), path))
	assert.NoError(t, VerifyEnvFile(path))

	// A truncated file fails the check.
	require.NoError(t, os.WriteFile(path, []byte("DK_ECR_REGISTRY=public.ecr.aws/n5k3t9x2\n"), 0o644))
	err := VerifyEnvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DK_OUTPOST_IMAGE")

	assert.Error(t, VerifyEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
