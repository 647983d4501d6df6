package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageDigest_FromRepoDigests(t *testing.T) {
	api := &fakeDockerAPI{inspectResp: map[string]image.InspectResponse{
		"public.ecr.aws/n5k3t9x2/outpost:1.43": {
			RepoDigests: []string{"public.ecr.aws/n5k3t9x2/outpost@sha256:11aa22bb"},
		},
	}}
	c := NewWithAPI(api, nil)

	digest, err := c.ImageDigest(context.Background(), "public.ecr.aws/n5k3t9x2/outpost:1.43")

	require.NoError(t, err)
	assert.Equal(t, "sha256:11aa22bb", digest)
}

func TestImageDigest_LocalImageHasNone(t *testing.T) {
	api := &fakeDockerAPI{inspectResp: map[string]image.InspectResponse{}}
	c := NewWithAPI(api, nil)

	digest, err := c.ImageDigest(context.Background(), "locally-built:dev")

	require.NoError(t, err)
	assert.Equal(t, "", digest)
}

func TestImageDigest_InspectError(t *testing.T) {
	api := &fakeDockerAPI{inspectErr: errors.New("no such image")}
	c := NewWithAPI(api, nil)

	_, err := c.ImageDigest(context.Background(), "public.ecr.aws/n5k3t9x2/outpost:1.43")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such image")
}

func runningInspect(health string) container.InspectResponse {
	state := &container.State{Status: "running"}
	if health != "" {
		state.Health = &container.Health{Status: health}
	}
	return container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{State: state},
		NetworkSettings: &container.NetworkSettings{
			NetworkSettingsBase: container.NetworkSettingsBase{
				Ports: nat.PortMap{
					"8080/tcp": []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: "8080"}},
				},
			},
		},
	}
}

func TestComposeContainers_MapsAndSorts(t *testing.T) {
	api := &fakeDockerAPI{
		listResp: []container.Summary{
			{
				ID:     "bbb",
				Names:  []string{"/dkproxy-vault-1"},
				Image:  "hashicorp/vault:latest",
				State:  "running",
				Labels: map[string]string{composeServiceLabel: "vault", composeProjectLabel: "dkproxy"},
			},
			{
				ID:     "aaa",
				Names:  []string{"/dkproxy-outpost-1"},
				Image:  "public.ecr.aws/n5k3t9x2/outpost:1.43",
				State:  "running",
				Labels: map[string]string{composeServiceLabel: "outpost", composeProjectLabel: "dkproxy"},
			},
		},
		containers: map[string]container.InspectResponse{
			"aaa": runningInspect("healthy"),
			"bbb": runningInspect(""),
		},
	}
	c := NewWithAPI(api, nil)

	statuses, err := c.ComposeContainers(context.Background(), "dkproxy")

	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "outpost", statuses[0].Service)
	assert.Equal(t, "vault", statuses[1].Service)
	assert.Equal(t, "dkproxy-outpost-1", statuses[0].Name)
	assert.Equal(t, "healthy", statuses[0].Health)
	assert.Equal(t, []string{"0.0.0.0:8080->8080/tcp"}, statuses[0].Ports)

	require.True(t, api.listOpts.All)
	assert.True(t, api.listOpts.Filters.ExactMatch("label", composeProjectLabel+"=dkproxy"))
}

func TestComposeContainers_InspectFailureKeepsListState(t *testing.T) {
	api := &fakeDockerAPI{
		listResp: []container.Summary{{
			ID:     "gone",
			Names:  []string{"/dkproxy-cmd-exec-1"},
			State:  "exited",
			Labels: map[string]string{composeServiceLabel: "cmd-exec"},
		}},
	}
	c := NewWithAPI(api, nil)

	statuses, err := c.ComposeContainers(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "exited", statuses[0].State)
	assert.Equal(t, "", statuses[0].Health)
}

func TestContainerStatus_Healthy(t *testing.T) {
	assert.True(t, ContainerStatus{State: "running", Health: "healthy"}.Healthy())
	assert.True(t, ContainerStatus{State: "running"}.Healthy(), "no healthcheck counts as healthy")
	assert.False(t, ContainerStatus{State: "running", Health: "unhealthy"}.Healthy())
	assert.False(t, ContainerStatus{State: "running", Health: "starting"}.Healthy())
	assert.False(t, ContainerStatus{State: "exited"}.Healthy())
}

func TestSummarize_EightyPercentThreshold(t *testing.T) {
	all := []ContainerStatus{
		{Service: "outpost", State: "running", Health: "healthy"},
		{Service: "cmd-exec", State: "running"},
		{Service: "vault", State: "running"},
	}
	assert.True(t, Summarize(all).OK())

	oneDown := []ContainerStatus{
		{Service: "outpost", State: "running", Health: "healthy"},
		{Service: "cmd-exec", State: "exited"},
		{Service: "vault", State: "running"},
	}
	summary := Summarize(oneDown)
	assert.Equal(t, HealthSummary{Total: 3, Healthy: 2}, summary)
	assert.False(t, summary.OK(), "2 of 3 is below the 80% bar")
}

func TestSummarize_IgnoresUnmanagedContainers(t *testing.T) {
	statuses := []ContainerStatus{
		{Service: "outpost", State: "running"},
		{Service: "some-sidecar", State: "exited"},
	}
	summary := Summarize(statuses)
	assert.Equal(t, HealthSummary{Total: 1, Healthy: 1}, summary)
	assert.True(t, summary.OK())
}

func TestSummarize_NoContainers(t *testing.T) {
	assert.True(t, Summarize(nil).OK())
}
