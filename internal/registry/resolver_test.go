package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagknows/dkproxyctl/internal/config"
)

type fakeRegistryAPI struct {
	records   []ImageRecord
	err       error
	listCalls int
	probeErr  error
}

func (f *fakeRegistryAPI) ListImages(ctx context.Context, repository string) ([]ImageRecord, error) {
	f.listCalls++
	return f.records, f.err
}

func (f *fakeRegistryAPI) Probe(ctx context.Context, repository string) error {
	return f.probeErr
}

func TestResolve_NonECRServiceSkipsNetwork(t *testing.T) {
	api := &fakeRegistryAPI{err: errors.New("must not be called")}
	r := NewResolver(api)

	tag, err := r.Resolve(context.Background(), config.ServiceVault, "sha256:abc")
	require.NoError(t, err)
	assert.Equal(t, "", tag)
	assert.Zero(t, api.listCalls)
}

func TestResolve_MatchesDigest(t *testing.T) {
	api := &fakeRegistryAPI{records: []ImageRecord{
		{Digest: "sha256:aaa", Tags: []string{"1.40", "latest"}},
		{Digest: "sha256:bbb", Tags: []string{"1.41", "1.42", "sha256bbb"}},
	}}
	r := NewResolver(api)

	tag, err := r.Resolve(context.Background(), config.ServiceOutpost, "sha256:bbb")
	require.NoError(t, err)
	assert.Equal(t, "1.42", tag)
}

func TestResolve_ToleratesInspectDecoratedDigest(t *testing.T) {
	api := &fakeRegistryAPI{records: []ImageRecord{
		{Digest: "sha256:bbb", Tags: []string{"1.42"}},
	}}
	r := NewResolver(api)

	// Raw `docker inspect .RepoDigests` output, brackets and all.
	decorated := "[public.ecr.aws/n5k3t9x2/outpost@sha256:bbb]"
	tag, err := r.Resolve(context.Background(), config.ServiceOutpost, decorated)
	require.NoError(t, err)
	assert.Equal(t, "1.42", tag)
}

func TestResolve_FallsBackToLatestTagged(t *testing.T) {
	api := &fakeRegistryAPI{records: []ImageRecord{
		{Digest: "sha256:old", Tags: []string{"1.40"}},
		{Digest: "sha256:new", Tags: []string{"latest", "1.47", "1.46"}},
	}}
	r := NewResolver(api)

	// Unknown digest: the latest-tagged image decides.
	tag, err := r.Resolve(context.Background(), config.ServiceOutpost, "sha256:gone")
	require.NoError(t, err)
	assert.Equal(t, "1.47", tag)

	// No digest at all behaves the same.
	tag, err = r.Resolve(context.Background(), config.ServiceCmdExec, "")
	require.NoError(t, err)
	assert.Equal(t, "1.47", tag)
}

func TestResolve_NoSemanticTagsAnywhere(t *testing.T) {
	api := &fakeRegistryAPI{records: []ImageRecord{
		{Digest: "sha256:aaa", Tags: []string{"latest", "sha256aaa"}},
	}}
	r := NewResolver(api)

	tag, err := r.Resolve(context.Background(), config.ServiceOutpost, "sha256:aaa")
	require.NoError(t, err)
	assert.Equal(t, "", tag, "digest matched but only floating tags exist")
}

func TestResolve_MatchedImageWithoutSemanticTagsFallsThrough(t *testing.T) {
	api := &fakeRegistryAPI{records: []ImageRecord{
		{Digest: "sha256:aaa", Tags: []string{"sha256aaa"}},
		{Digest: "sha256:bbb", Tags: []string{"latest", "1.50"}},
	}}
	r := NewResolver(api)

	tag, err := r.Resolve(context.Background(), config.ServiceOutpost, "sha256:aaa")
	require.NoError(t, err)
	assert.Equal(t, "1.50", tag)
}

func TestResolve_APIErrorSurfacesWithoutTag(t *testing.T) {
	api := &fakeRegistryAPI{err: errors.New("throttled")}
	r := NewResolver(api)

	tag, err := r.Resolve(context.Background(), config.ServiceOutpost, "sha256:abc")
	require.Error(t, err)
	assert.Equal(t, "", tag)
}

func TestCheckAccess(t *testing.T) {
	r := NewResolver(&fakeRegistryAPI{})
	assert.NoError(t, r.CheckAccess(context.Background()))

	r = NewResolver(&fakeRegistryAPI{probeErr: errors.New("AccessDeniedException")})
	assert.Error(t, r.CheckAccess(context.Background()))
}

func TestCleanDigest(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sha256:abc", "sha256:abc"},
		{"[repo@sha256:abc]", "sha256:abc"},
		{" [public.ecr.aws/x/outpost@sha256:abc] ", "sha256:abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanDigest(tt.in), tt.in)
	}
}
