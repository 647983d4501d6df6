package registry

import (
	"fmt"
	"io"
	"strings"

	"github.com/distribution/reference"
	dockerconfig "github.com/docker/cli/cli/config"
	"github.com/docker/docker/api/types/registry"

	"github.com/charmbracelet/log"
)

// Docker Hub credentials live under the legacy index key, not the hostname.
const dockerHubIndexServer = "https://index.docker.io/v1/"

// CredStore reads and erases registry credentials through the docker CLI
// credential store, so logins made with `docker login` (or our login command)
// are honored on pulls.
type CredStore struct{}

// AuthKeyForRef returns the credential-store key for an image reference's
// registry.
func AuthKeyForRef(ref string) (string, error) {
	named, err := reference.ParseNormalizedNamed(strings.TrimPrefix(ref, "docker://"))
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	domain := reference.Domain(named)
	if domain == "docker.io" {
		return dockerHubIndexServer, nil
	}
	return domain, nil
}

// EncodedAuthForRef resolves the stored credential for an image reference the
// way the docker CLI would, returned in the base64 form the engine API wants.
// No stored credential is not an error: public pulls run anonymously.
func (CredStore) EncodedAuthForRef(ref string) (string, error) {
	key, err := AuthKeyForRef(ref)
	if err != nil {
		return "", err
	}

	cf := dockerconfig.LoadDefaultConfigFile(io.Discard)
	auth, err := cf.GetAuthConfig(key)
	if err != nil {
		return "", fmt.Errorf("failed to read docker credentials for %s: %w", key, err)
	}
	if auth.Username == "" && auth.IdentityToken == "" && auth.Auth == "" {
		return "", nil
	}

	encoded, err := registry.EncodeAuthConfig(registry.AuthConfig{
		Username:      auth.Username,
		Password:      auth.Password,
		Auth:          auth.Auth,
		ServerAddress: auth.ServerAddress,
		IdentityToken: auth.IdentityToken,
		RegistryToken: auth.RegistryToken,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode registry auth: %w", err)
	}
	return encoded, nil
}

// ClearCredential removes the cached credential for a registry host, the
// docker logout equivalent the pull retry relies on when a token has expired.
func (CredStore) ClearCredential(registryHost string) error {
	cf := dockerconfig.LoadDefaultConfigFile(io.Discard)
	if err := cf.GetCredentialsStore(registryHost).Erase(registryHost); err != nil {
		return fmt.Errorf("failed to clear credentials for %s: %w", registryHost, err)
	}
	log.Debug("Cleared cached registry credential", "registry", registryHost)
	return nil
}
