package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/dagknows/dkproxyctl/internal/config"
)

// expiredAuthMarkers are the phrases ECR returns when a cached login token
// has lapsed. Matching is case-insensitive against both the error and the
// pull output.
var expiredAuthMarkers = []string{
	"authorization token has expired",
	"reauthenticate",
}

func isExpiredAuth(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range expiredAuthMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Pull downloads an image, streaming progress to the configured writer and
// returning the captured output. ECR public tokens expire after a few hours;
// when the registry rejects the cached token, the stale credential is cleared
// and the pull retried once anonymously. Any other failure surfaces
// immediately.
func (c *Client) Pull(ctx context.Context, ref string) (string, error) {
	out, err := c.pullOnce(ctx, ref)
	if err == nil {
		return out, nil
	}

	if !strings.HasPrefix(ref, config.PublicRegistryHost+"/") || !isExpiredAuth(err.Error()+"\n"+out) {
		return out, err
	}

	log.Warn("ECR authorization token has expired, clearing cached credential and retrying",
		"image", ref, "registry", config.PublicRegistryHost)
	if c.auth != nil {
		if clearErr := c.auth.ClearCredential(config.PublicRegistryHost); clearErr != nil {
			log.Debug("Could not clear cached credential", "error", clearErr)
		}
	}
	return c.pullOnce(ctx, ref)
}

func (c *Client) pullOnce(ctx context.Context, ref string) (string, error) {
	var opts image.PullOptions
	if c.auth != nil {
		auth, err := c.auth.EncodedAuthForRef(ref)
		if err != nil {
			log.Debug("No registry credential resolved, pulling anonymously", "image", ref, "error", err)
		} else {
			opts.RegistryAuth = auth
		}
	}

	reader, err := c.api.ImagePull(ctx, ref, opts)
	if err != nil {
		return "", fmt.Errorf("failed to pull %s: %w", ref, err)
	}
	defer reader.Close()

	// The daemon reports pull failures inside the JSON stream, not on the
	// ImagePull call itself; decoding surfaces them as errors.
	var buf bytes.Buffer
	if err := jsonmessage.DisplayJSONMessagesStream(reader, io.MultiWriter(&buf, c.progress), 0, false, nil); err != nil {
		return buf.String(), fmt.Errorf("failed to pull %s: %w", ref, err)
	}
	return buf.String(), nil
}
