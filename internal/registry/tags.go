// Package registry resolves floating image tags against the DagKnows ECR
// Public registry and handles registry authentication. The resolver turns a
// pulled :latest image into the semantic tag the registry knows it by, so the
// manifest pins real versions instead of a moving target.
package registry

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// IsSemanticTag reports whether a tag names a comparable version. "latest",
// digest-style tags and tags that do not start with a version number are
// excluded from resolution entirely.
func IsSemanticTag(tag string) bool {
	if tag == "" || tag == "latest" || strings.HasPrefix(tag, "sha") {
		return false
	}
	t := strings.TrimPrefix(tag, "v")
	if t == "" {
		return false
	}
	return unicode.IsDigit(rune(t[0]))
}

// CompareTags orders two version tags, returning -1, 0 or 1. Tags that parse
// as strict semver compare by semver rules; everything else falls back to
// segment comparison: split on "." and "-", numeric segments compare as
// integers (so 1.10 > 1.9), a numeric segment outranks a word at the same
// position, and at an equal prefix the longer tag wins.
func CompareTags(a, b string) int {
	av, aerr := semver.StrictNewVersion(strings.TrimPrefix(a, "v"))
	bv, berr := semver.StrictNewVersion(strings.TrimPrefix(b, "v"))
	if aerr == nil && berr == nil {
		return av.Compare(bv)
	}
	return compareSegments(splitTag(a), splitTag(b))
}

func splitTag(tag string) []string {
	tag = strings.TrimPrefix(tag, "v")
	return strings.FieldsFunc(tag, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

func compareSegments(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		an, aErr := strconv.Atoi(a[i])
		bn, bErr := strconv.Atoi(b[i])
		switch {
		case aErr == nil && bErr == nil:
			if an != bn {
				if an > bn {
					return 1
				}
				return -1
			}
		case aErr == nil:
			return 1
		case bErr == nil:
			return -1
		default:
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	}
	return 0
}

// SortTagsDescending sorts tags highest-first in place.
func SortTagsDescending(tags []string) {
	sort.SliceStable(tags, func(i, j int) bool {
		return CompareTags(tags[i], tags[j]) > 0
	})
}

// HighestSemanticTag returns the highest comparable tag, or "" when none of
// the tags qualify.
func HighestSemanticTag(tags []string) string {
	best := ""
	for _, t := range tags {
		if !IsSemanticTag(t) {
			continue
		}
		if best == "" || CompareTags(t, best) > 0 {
			best = t
		}
	}
	return best
}
