// Package config holds the proxy service topology and the tool's own
// configuration. The topology is fixed: the proxy stack is always the same
// three services, two of them shipped from the DagKnows ECR registry and
// vault from Docker Hub.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Service identifies one deployable unit of the proxy stack.
type Service string

const (
	ServiceOutpost Service = "outpost"
	ServiceCmdExec Service = "cmd_exec"
	ServiceVault   Service = "vault"
)

// Registry defaults for the DagKnows public ECR registry.
const (
	PublicRegistryHost   = "public.ecr.aws"
	DefaultRegistryAlias = "n5k3t9x2"
	DefaultRegistry      = PublicRegistryHost + "/" + DefaultRegistryAlias
)

// vaultImage is the upstream Docker Hub image for the vault service.
const vaultImage = "hashicorp/vault"

// Services returns every managed service in display order.
func Services() []Service {
	return []Service{ServiceOutpost, ServiceCmdExec, ServiceVault}
}

// ECRServices returns the services whose images live in the DagKnows registry.
func ECRServices() []Service {
	return []Service{ServiceOutpost, ServiceCmdExec}
}

// ECRHosted reports whether the service's image is pulled from the DagKnows
// ECR registry. Vault ships from Docker Hub and floats on its upstream tag.
func (s Service) ECRHosted() bool {
	return s == ServiceOutpost || s == ServiceCmdExec
}

// RepositoryName returns the ECR repository name for the service.
// Only meaningful for ECR-hosted services.
func (s Service) RepositoryName() string {
	return string(s)
}

// DockerHubImage returns the upstream Docker Hub image for externally hosted
// services, or "" for ECR-hosted ones.
func (s Service) DockerHubImage() string {
	if s == ServiceVault {
		return vaultImage
	}
	return ""
}

// ComposeName returns the docker-compose service name. Compose uses hyphens
// where the manifest uses underscores.
func (s Service) ComposeName() string {
	return strings.ReplaceAll(string(s), "_", "-")
}

// EnvPrefix returns the DK_<NAME> stem used for the service's variables in
// the generated env file.
func (s Service) EnvPrefix() string {
	return "DK_" + strings.ToUpper(string(s))
}

// ParseService maps a user-supplied name to a Service. Both the manifest
// spelling (cmd_exec) and the compose spelling (cmd-exec) are accepted.
func ParseService(name string) (Service, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
	for _, s := range Services() {
		if string(s) == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown service %q (expected one of: %s)", name, serviceNames())
}

// ServiceFromCompose maps a compose service name back to its Service.
func ServiceFromCompose(name string) (Service, bool) {
	s, err := ParseService(name)
	if err != nil {
		return "", false
	}
	return s, true
}

func serviceNames() string {
	names := make([]string, 0, len(Services()))
	for _, s := range Services() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// Operator returns the name recorded as deployed_by on manifest updates.
func Operator() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "system"
}
