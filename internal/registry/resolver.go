package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecrpublic"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dagknows/dkproxyctl/internal/config"
)

// ImageRecord describes one image in a repository: its digest and every tag
// pointing at it.
type ImageRecord struct {
	Digest   string
	Tags     []string
	PushedAt time.Time
}

// RegistryAPI is the query surface the resolver needs from ECR Public.
type RegistryAPI interface {
	// ListImages returns every image in the repository.
	ListImages(ctx context.Context, repository string) ([]ImageRecord, error)
	// Probe performs the cheapest possible authenticated call against the
	// repository, verifying API access.
	Probe(ctx context.Context, repository string) error
}

// Resolver maps a service's pulled digest back to the semantic tag the
// registry knows it by.
type Resolver struct {
	api RegistryAPI
}

func NewResolver(api RegistryAPI) *Resolver {
	return &Resolver{api: api}
}

// Resolve finds the semantic version tag for a service. The digest, when
// known, selects the exact image; otherwise the image currently tagged
// "latest" is used. Returns "" when nothing could be resolved, in which case
// callers keep the tag they have. Non-ECR services resolve to "" immediately,
// without a network call.
func (r *Resolver) Resolve(ctx context.Context, svc config.Service, digest string) (string, error) {
	if !svc.ECRHosted() {
		return "", nil
	}

	records, err := r.api.ListImages(ctx, svc.RepositoryName())
	if err != nil {
		return "", fmt.Errorf("failed to list images for %s: %w", svc.RepositoryName(), err)
	}

	// First pass: match the digest we actually pulled. Older manifests store
	// the digest in raw `docker inspect` form ([repo@sha256:...]), so the
	// match tolerates decoration in either direction.
	if clean := cleanDigest(digest); clean != "" {
		for _, rec := range records {
			if rec.Digest == "" {
				continue
			}
			if rec.Digest == clean || strings.Contains(rec.Digest, clean) || strings.Contains(clean, rec.Digest) {
				if tag := HighestSemanticTag(rec.Tags); tag != "" {
					return tag, nil
				}
			}
		}
	}

	// Fallback: whatever the registry currently calls "latest".
	for _, rec := range records {
		if slices.Contains(rec.Tags, "latest") {
			if tag := HighestSemanticTag(rec.Tags); tag != "" {
				return tag, nil
			}
		}
	}

	return "", nil
}

// LatestAvailable returns the highest semantic tag published for a service's
// repository, or "" when the repository carries no semantic tags. Non-ECR
// services return "" without a network call.
func (r *Resolver) LatestAvailable(ctx context.Context, svc config.Service) (string, error) {
	if !svc.ECRHosted() {
		return "", nil
	}
	records, err := r.api.ListImages(ctx, svc.RepositoryName())
	if err != nil {
		return "", fmt.Errorf("failed to list images for %s: %w", svc.RepositoryName(), err)
	}
	var tags []string
	for _, rec := range records {
		tags = append(tags, rec.Tags...)
	}
	return HighestSemanticTag(tags), nil
}

// CheckAccess verifies the ECR Public API is reachable with the current AWS
// credentials. The probe targets the outpost repository, the same one the
// pulls need.
func (r *Resolver) CheckAccess(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return r.api.Probe(ctx, config.ServiceOutpost.RepositoryName())
}

// cleanDigest strips `docker inspect` decoration from a stored digest,
// leaving the bare sha256:... part.
func cleanDigest(digest string) string {
	digest = strings.Trim(strings.TrimSpace(digest), "[]")
	if at := strings.LastIndex(digest, "@"); at >= 0 {
		digest = digest[at+1:]
	}
	return digest
}

// ECRPublicAPI implements RegistryAPI against the real ECR Public API. Calls
// are paced through a shared limiter: the public registry throttles
// low-privilege clients quickly when a resolve pass walks several
// repositories.
type ECRPublicAPI struct {
	client  *ecrpublic.Client
	limiter *rate.Limiter
}

// NewECRPublicAPI builds the production registry client. ECR Public only
// exists in us-east-1; region comes from configuration anyway so air-gapped
// mirrors can point elsewhere.
func NewECRPublicAPI(ctx context.Context, awsCfg config.AWSConfig) (*ECRPublicAPI, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.PublicRegion),
	}
	if awsCfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(awsCfg.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &ECRPublicAPI{
		client:  ecrpublic.NewFromConfig(cfg),
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 2),
	}, nil
}

func (a *ECRPublicAPI) ListImages(ctx context.Context, repository string) ([]ImageRecord, error) {
	var records []ImageRecord

	paginator := ecrpublic.NewDescribeImagesPaginator(a.client, &ecrpublic.DescribeImagesInput{
		RepositoryName: aws.String(repository),
	})
	for paginator.HasMorePages() {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range page.ImageDetails {
			records = append(records, ImageRecord{
				Digest:   aws.ToString(d.ImageDigest),
				Tags:     d.ImageTags,
				PushedAt: aws.ToTime(d.ImagePushedAt),
			})
		}
	}

	log.Debug("Listed repository images", "repository", repository, "count", len(records))
	return records, nil
}

func (a *ECRPublicAPI) Probe(ctx context.Context, repository string) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := a.client.DescribeImages(ctx, &ecrpublic.DescribeImagesInput{
		RepositoryName: aws.String(repository),
		MaxResults:     aws.Int32(1),
	})
	return err
}
