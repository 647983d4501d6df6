package registry

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecrpublic"
	"github.com/charmbracelet/log"
	dockerconfig "github.com/docker/cli/cli/config"
	configtypes "github.com/docker/cli/cli/config/types"

	"github.com/dagknows/dkproxyctl/internal/config"
)

// LoginPublic obtains an ECR Public authorization token and stores it in the
// Docker credential store under public.ecr.aws. Authenticated pulls from the
// public registry get far more generous rate limits than anonymous ones.
func LoginPublic(ctx context.Context, awsCfg config.AWSConfig) error {
	cfg, err := loadAWSConfig(ctx, awsCfg.PublicRegion, awsCfg.Profile)
	if err != nil {
		return err
	}

	out, err := ecrpublic.NewFromConfig(cfg).GetAuthorizationToken(ctx, &ecrpublic.GetAuthorizationTokenInput{})
	if err != nil {
		return fmt.Errorf("failed to get ECR Public authorization token: %w", err)
	}
	if out.AuthorizationData == nil {
		return fmt.Errorf("ECR Public returned no authorization data")
	}

	user, pass, err := decodeAuthToken(aws.ToString(out.AuthorizationData.AuthorizationToken))
	if err != nil {
		return err
	}
	return storeCredential(config.PublicRegistryHost, user, pass)
}

// LoginPrivate authenticates against a private ECR registry, as selected by
// the manifest's use_private configuration.
func LoginPrivate(ctx context.Context, registryURL, region, profile string) error {
	cfg, err := loadAWSConfig(ctx, region, profile)
	if err != nil {
		return err
	}

	out, err := ecr.NewFromConfig(cfg).GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return fmt.Errorf("failed to get ECR authorization token: %w", err)
	}
	if len(out.AuthorizationData) == 0 {
		return fmt.Errorf("ECR returned no authorization data")
	}

	user, pass, err := decodeAuthToken(aws.ToString(out.AuthorizationData[0].AuthorizationToken))
	if err != nil {
		return err
	}
	return storeCredential(registryURL, user, pass)
}

func loadAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// decodeAuthToken unpacks the base64 "user:password" payload ECR issues.
func decodeAuthToken(token string) (user, pass string, err error) {
	if token == "" {
		return "", "", fmt.Errorf("empty authorization token")
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode authorization token: %w", err)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed authorization token")
	}
	return parts[0], parts[1], nil
}

func storeCredential(registryHost, user, pass string) error {
	cf := dockerconfig.LoadDefaultConfigFile(io.Discard)
	err := cf.GetCredentialsStore(registryHost).Store(configtypes.AuthConfig{
		Username:      user,
		Password:      pass,
		ServerAddress: registryHost,
	})
	if err != nil {
		return fmt.Errorf("failed to store credentials for %s: %w", registryHost, err)
	}
	log.Debug("Stored registry credential", "registry", registryHost)
	return nil
}
