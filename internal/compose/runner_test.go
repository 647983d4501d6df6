package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagknows/dkproxyctl/internal/config"
)

func TestArgv_PlainInvocation(t *testing.T) {
	r := &Runner{Command: []string{"docker", "compose"}, EnvFile: "versions.env"}

	argv := r.argv("stop")

	assert.Equal(t, []string{"docker", "compose", "--env-file", "versions.env", "stop"}, argv)
}

func TestArgv_ProjectFlag(t *testing.T) {
	r := &Runner{Command: []string{"docker", "compose"}, Project: "dkproxy", EnvFile: "versions.env"}

	argv := r.argv("up", "-d")

	assert.Equal(t, []string{"docker", "compose", "-p", "dkproxy", "--env-file", "versions.env", "up", "-d"}, argv)
}

func TestArgv_ElevatedWrapsWithSg(t *testing.T) {
	r := &Runner{Command: []string{"docker", "compose"}, EnvFile: "versions.env", Elevated: true}

	argv := r.argv("stop")

	assert.Equal(t, []string{"sg", "docker", "-c", "docker compose --env-file versions.env stop"}, argv)
}

func TestArgv_ElevatedQuotesUnsafeArgs(t *testing.T) {
	r := &Runner{Command: []string{"docker", "compose"}, EnvFile: "my versions's.env", Elevated: true}

	argv := r.argv("stop")

	assert.Equal(t, []string{"sg", "docker", "-c", `docker compose --env-file 'my versions'\''s.env' stop`}, argv)
}

func TestNewRunner_FromConfig(t *testing.T) {
	cfg := config.ComposeConfig{
		Command:  []string{"docker-compose"},
		Project:  "dkproxy",
		Dir:      "/opt/dkproxy",
		Elevated: true,
	}

	r := NewRunner(cfg, "versions.env")

	assert.Equal(t, []string{"docker-compose"}, r.Command)
	assert.Equal(t, "dkproxy", r.Project)
	assert.Equal(t, "/opt/dkproxy", r.Dir)
	assert.Equal(t, "versions.env", r.EnvFile)
	assert.True(t, r.Elevated)
}
