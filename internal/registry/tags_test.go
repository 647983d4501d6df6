package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareTags(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.10", "1.9", 1},
		{"1.9", "1.10", -1},
		{"2.0", "1.10", 1},
		{"1.42", "1.42", 0},
		{"1.2.3", "1.2.2", 1},
		{"v1.2.3", "1.2.3", 0},
		// Prefix rule: the longer tag wins at an equal prefix.
		{"1.40-hotfix", "1.40", 1},
		// Numeric segments outrank words at the same position.
		{"1.2.3", "1.2-rc", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareTags(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestSortTagsDescending(t *testing.T) {
	tags := []string{"1.9", "2.0", "1.10", "1.42"}
	SortTagsDescending(tags)
	assert.Equal(t, []string{"2.0", "1.42", "1.10", "1.9"}, tags)
}

func TestIsSemanticTag(t *testing.T) {
	assert.True(t, IsSemanticTag("1.42"))
	assert.True(t, IsSemanticTag("v2.0.1"))
	assert.True(t, IsSemanticTag("1.40-hotfix"))

	assert.False(t, IsSemanticTag("latest"))
	assert.False(t, IsSemanticTag("sha256abc"))
	assert.False(t, IsSemanticTag("sha-12ab34"))
	assert.False(t, IsSemanticTag("stable"))
	assert.False(t, IsSemanticTag(""))
	assert.False(t, IsSemanticTag("v"))
}

func TestHighestSemanticTag_ExcludesFloatingAndDigestTags(t *testing.T) {
	got := HighestSemanticTag([]string{"1.9", "1.10", "2.0", "latest", "sha256abc"})
	assert.Equal(t, "2.0", got)

	assert.Equal(t, "", HighestSemanticTag([]string{"latest", "sha256abc"}))
	assert.Equal(t, "", HighestSemanticTag(nil))
}
