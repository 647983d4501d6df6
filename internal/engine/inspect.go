package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/go-connections/nat"

	"github.com/dagknows/dkproxyctl/internal/config"
)

// Compose attaches these labels to every container it manages.
const (
	composeServiceLabel = "com.docker.compose.service"
	composeProjectLabel = "com.docker.compose.project"
)

// ImageDigest returns the repo digest (sha256:...) of a locally present
// image, or "" when the image has no registry digest (built locally, never
// pushed).
func (c *Client) ImageDigest(ctx context.Context, ref string) (string, error) {
	inspect, err := c.api.ImageInspect(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", ref, err)
	}
	for _, repoDigest := range inspect.RepoDigests {
		if at := strings.LastIndex(repoDigest, "@"); at >= 0 {
			return repoDigest[at+1:], nil
		}
	}
	return "", nil
}

// ContainerStatus is the slice of container state the status and health
// checks care about.
type ContainerStatus struct {
	Service string // compose service name
	Name    string
	Image   string
	State   string // running, exited, restarting...
	Health  string // healthy, unhealthy, starting, or "" without a healthcheck
	Ports   []string
}

// Healthy reports whether the container counts as up: running, and either
// passing its healthcheck or not defining one.
func (s ContainerStatus) Healthy() bool {
	return s.State == "running" && (s.Health == "" || s.Health == "healthy")
}

// ComposeContainers lists the containers compose manages, filtered to the
// given project when set, sorted by service name.
func (c *Client) ComposeContainers(ctx context.Context, project string) ([]ContainerStatus, error) {
	filter := filters.NewArgs()
	filter.Add("label", composeServiceLabel)
	if project != "" {
		filter.Add("label", composeProjectLabel+"="+project)
	}

	list, err := c.api.ContainerList(ctx, container.ListOptions{All: true, Filters: filter})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	statuses := make([]ContainerStatus, 0, len(list))
	for _, summary := range list {
		status := ContainerStatus{
			Service: summary.Labels[composeServiceLabel],
			Image:   summary.Image,
			State:   summary.State,
		}
		if len(summary.Names) > 0 {
			status.Name = strings.TrimPrefix(summary.Names[0], "/")
		}

		// Health and port bindings only show up on inspect.
		if resp, err := c.api.ContainerInspect(ctx, summary.ID); err == nil {
			if resp.State != nil && resp.State.Health != nil {
				status.Health = resp.State.Health.Status
			}
			if resp.NetworkSettings != nil {
				for port, bindings := range resp.NetworkSettings.Ports {
					for _, binding := range bindings {
						if binding.HostPort == "" {
							continue
						}
						status.Ports = append(status.Ports, formatBinding(port, binding))
					}
				}
				sort.Strings(status.Ports)
			}
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Service < statuses[j].Service })
	return statuses, nil
}

func formatBinding(port nat.Port, binding nat.PortBinding) string {
	return fmt.Sprintf("%s:%s->%s/%s", binding.HostIP, binding.HostPort, port.Port(), port.Proto())
}

// HealthSummary tallies managed-service containers for the post-update check.
type HealthSummary struct {
	Total   int
	Healthy int
}

// OK allows a deployment to count as healthy at 80%, so one slow starter
// does not fail the whole update.
func (h HealthSummary) OK() bool {
	return float64(h.Healthy) >= float64(h.Total)*0.8
}

// Summarize counts health for the containers belonging to managed services,
// ignoring anything else compose happens to run alongside them.
func Summarize(statuses []ContainerStatus) HealthSummary {
	var summary HealthSummary
	for _, status := range statuses {
		if _, ok := config.ServiceFromCompose(status.Service); !ok {
			continue
		}
		summary.Total++
		if status.Healthy() {
			summary.Healthy++
		}
	}
	return summary
}
