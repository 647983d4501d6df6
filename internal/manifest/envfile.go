package manifest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dagknows/dkproxyctl/internal/config"
)

// WriteEnvFile renders the versions.env file docker-compose interpolates.
// Tags are effective tags, so a custom override wins over the recorded
// version. The file is rendered by hand rather than through an env library
// to keep the warning header and the per-service grouping.
func WriteEnvFile(m *Manifest, path string) error {
	registry := m.Registry()

	var b strings.Builder
	b.WriteString("# DagKnows Service Versions\n")
	b.WriteString("# Auto-generated from version-manifest.yaml - DO NOT EDIT MANUALLY\n")
	fmt.Fprintf(&b, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	b.WriteString("\n")
	fmt.Fprintf(&b, "DK_ECR_REGISTRY=%s\n", registry)
	b.WriteString("\n")

	for _, svc := range config.Services() {
		image := registry + "/" + svc.RepositoryName()
		if hub := svc.DockerHubImage(); hub != "" {
			image = hub
		}
		fmt.Fprintf(&b, "%s_IMAGE=%s\n", svc.EnvPrefix(), image)
		fmt.Fprintf(&b, "%s_TAG=%s\n", svc.EnvPrefix(), m.EffectiveTag(svc))
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ExpectedEnvKeys lists every variable WriteEnvFile emits.
func ExpectedEnvKeys() []string {
	keys := []string{"DK_ECR_REGISTRY"}
	for _, svc := range config.Services() {
		keys = append(keys, svc.EnvPrefix()+"_IMAGE", svc.EnvPrefix()+"_TAG")
	}
	return keys
}

// VerifyEnvFile checks that the env file parses and carries every expected
// variable with a non-empty value.
func VerifyEnvFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, key := range ExpectedEnvKeys() {
		if vars[key] == "" {
			return fmt.Errorf("%s is missing %s", path, key)
		}
	}
	return nil
}
