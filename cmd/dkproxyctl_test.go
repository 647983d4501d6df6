package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagknows/dkproxyctl/internal/cli"
)

func TestInitializeCommands_RegistersFullVerbSet(t *testing.T) {
	InitializeCommands(&cli.App{})

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"show", "history", "pull", "pull-from-manifest", "pull-latest",
		"rollback", "set", "resolve-tags", "update-safe", "check-updates",
		"generate-env", "status", "migrate", "ecr-login", "journal", "version",
	} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func TestRootCommand_SilencesCobraNoise(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors, "errors print once via CheckErr")
	assert.True(t, rootCmd.SilenceUsage)
}
