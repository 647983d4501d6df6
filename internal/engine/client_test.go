package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAccess_Reachable(t *testing.T) {
	c := NewWithAPI(&fakeDockerAPI{}, nil)
	assert.NoError(t, c.CheckAccess(context.Background()))
}

func TestCheckAccess_PermissionDenied(t *testing.T) {
	api := &fakeDockerAPI{pingErr: errors.New("permission denied while trying to connect to the Docker daemon socket")}
	c := NewWithAPI(api, nil)

	err := c.CheckAccess(context.Background())

	require.Error(t, err)
	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Contains(t, accessErr.Reason, "permission")
	require.NotEmpty(t, accessErr.Hints)
	assert.Contains(t, accessErr.Hints[0], "docker group")
}

func TestCheckAccess_DaemonDown(t *testing.T) {
	api := &fakeDockerAPI{pingErr: errors.New("Cannot connect to the Docker daemon at unix:///var/run/docker.sock. Is the docker daemon running?")}
	c := NewWithAPI(api, nil)

	err := c.CheckAccess(context.Background())

	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, "Docker daemon is not running", accessErr.Reason)
	assert.Contains(t, accessErr.Hints[0], "systemctl start docker")
}

func TestCheckAccess_UnknownErrorWrapped(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	api := &fakeDockerAPI{pingErr: cause}
	c := NewWithAPI(api, nil)

	err := c.CheckAccess(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}
