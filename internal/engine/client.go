// Package engine talks to the Docker daemon: image pulls with the expired
// ECR token retry, image and container inspection, and the access probe
// commands run before touching the stack.
package engine

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/dagknows/dkproxyctl/internal/config"
)

// dockerAPI is the slice of the Docker engine client this package uses.
// *client.Client satisfies it; tests swap in fakes.
type dockerAPI interface {
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ImageInspect(ctx context.Context, imageRef string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	Ping(ctx context.Context) (types.Ping, error)
}

// AuthProvider supplies registry credentials for pulls and can drop a cached
// credential when the registry rejects it as expired.
type AuthProvider interface {
	EncodedAuthForRef(ref string) (string, error)
	ClearCredential(registryHost string) error
}

// Client wraps the Docker engine API for the proxy stack's needs.
type Client struct {
	api      dockerAPI
	auth     AuthProvider
	progress io.Writer
}

// New connects to the Docker daemon using the environment (DOCKER_HOST et al)
// unless cfg.Host pins an endpoint. The connection is lazy; CheckAccess
// verifies the daemon is actually reachable.
func New(cfg config.DockerConfig, auth AuthProvider) (*Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}
	api, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, auth: auth, progress: io.Discard}, nil
}

// NewWithAPI builds a client around an existing engine API, for tests.
func NewWithAPI(api dockerAPI, auth AuthProvider) *Client {
	return &Client{api: api, auth: auth, progress: io.Discard}
}

// SetProgress directs pull progress output to w (a terminal, typically).
func (c *Client) SetProgress(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	c.progress = w
}

// AccessError explains why the daemon is unreachable and how to fix it.
type AccessError struct {
	Reason string
	Hints  []string
	cause  error
}

func (e *AccessError) Error() string { return e.Reason }

func (e *AccessError) Unwrap() error { return e.cause }

// CheckAccess probes the Docker daemon and maps the two common failure modes
// to actionable errors: daemon down versus missing docker group membership.
func (c *Client) CheckAccess(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.api.Ping(ctx)
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"):
		return &AccessError{
			Reason: "Docker is running but you don't have permission to access it",
			Hints: []string{
				"Make sure your user is in the docker group: sudo usermod -aG docker $USER",
				"Then log out and back in, or run: newgrp docker",
				"Or set compose.elevated: true in dkproxyctl.yml to wrap docker commands with sg",
			},
			cause: err,
		}
	case strings.Contains(msg, "cannot connect"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such file or directory"):
		return &AccessError{
			Reason: "Docker daemon is not running",
			Hints:  []string{"Start Docker with: sudo systemctl start docker"},
			cause:  err,
		}
	}
	return &AccessError{Reason: "cannot reach the Docker daemon: " + err.Error(), cause: err}
}
