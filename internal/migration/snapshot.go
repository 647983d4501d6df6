package migration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/distribution/reference"

	"github.com/dagknows/dkproxyctl/internal/config"
	"github.com/dagknows/dkproxyctl/internal/engine"
	"github.com/dagknows/dkproxyctl/internal/manifest"
	"github.com/dagknows/dkproxyctl/internal/registry"
)

// DetectedImage is what the snapshot learned about one service's running
// container.
type DetectedImage struct {
	Service config.Service
	Image   string
	Tag     string
	Digest  string
	Running bool
}

// Snapshot inspects the compose project and maps each managed service to the
// image and tag its container is actually running. Services without a
// container come back with Running false and tag "latest".
func Snapshot(ctx context.Context, eng *engine.Client, project string) (map[config.Service]DetectedImage, error) {
	detected := map[config.Service]DetectedImage{}

	statuses, err := eng.ComposeContainers(ctx, project)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		svc, ok := config.ServiceFromCompose(st.Service)
		if !ok {
			continue
		}
		detected[svc] = DetectedImage{
			Service: svc,
			Image:   st.Image,
			Tag:     imageTag(st.Image),
			Digest:  containerDigest(ctx, eng, st.Image),
			Running: true,
		}
	}

	for _, svc := range config.Services() {
		if _, ok := detected[svc]; !ok {
			detected[svc] = DetectedImage{Service: svc, Tag: "latest"}
		}
	}
	return detected, nil
}

// ResolveFloating replaces "latest" detections with the semantic tag the
// registry reports for the running digest. Non-ECR services and failed
// lookups keep "latest".
func ResolveFloating(ctx context.Context, resolver *registry.Resolver, detected map[config.Service]DetectedImage) int {
	resolved := 0
	for svc, d := range detected {
		if !d.Running || d.Tag != "latest" || !svc.ECRHosted() {
			continue
		}
		fmt.Println(infoLine(fmt.Sprintf("Detected 'latest' tag for %s, querying ECR for the actual version...", svc)))
		tag, err := resolver.Resolve(ctx, svc, d.Digest)
		if err != nil || tag == "" {
			log.Debug("Tag resolution failed during migration", "service", svc, "error", err)
			fmt.Println(warnLine(fmt.Sprintf("Could not resolve a version for %s, keeping 'latest'", svc)))
			continue
		}
		d.Tag = tag
		detected[svc] = d
		fmt.Println(successLine(fmt.Sprintf("Resolved %s: latest to %s", svc, tag)))
		resolved++
	}
	return resolved
}

// Identity carries the operator-provided deployment identity fields.
type Identity struct {
	CustomerID    string
	DeploymentID  string
	ProxyLocation string
}

// DefaultDeploymentID derives the deployment name from the host, matching
// what operators expect to see in support tickets.
func DefaultDeploymentID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return fmt.Sprintf("dkproxy-%s", time.Now().Format("20060102"))
	}
	return "dkproxy-" + host
}

// BuildManifest creates a fresh manifest from the snapshot: every service gets
// a single current history entry recorded by "migration".
func BuildManifest(detected map[config.Service]DetectedImage, id Identity) *manifest.Manifest {
	m := manifest.Default()
	if id.DeploymentID != "" {
		m.DeploymentID = id.DeploymentID
	} else {
		m.DeploymentID = DefaultDeploymentID()
	}
	m.CustomerID = id.CustomerID
	m.ProxyLocation = id.ProxyLocation

	for _, svc := range config.Services() {
		d := detected[svc]
		tag := d.Tag
		if tag == "" {
			tag = "latest"
		}
		m.Record(svc, tag, d.Digest, "migration", false)
	}
	return m
}

// imageTag extracts the tag from an image reference, defaulting to "latest"
// for untagged references.
func imageTag(image string) string {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		if i := strings.LastIndex(image, ":"); i > strings.LastIndex(image, "/") {
			return image[i+1:]
		}
		return "latest"
	}
	if tagged, ok := named.(reference.Tagged); ok {
		return tagged.Tag()
	}
	return "latest"
}

func containerDigest(ctx context.Context, eng *engine.Client, image string) string {
	digest, err := eng.ImageDigest(ctx, image)
	if err != nil {
		log.Debug("Could not read image digest", "image", image, "error", err)
		return ""
	}
	return digest
}
