package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagknows/dkproxyctl/internal/journal"
)

func TestIndent(t *testing.T) {
	assert.Equal(t, "  one\n  two", indent("one\ntwo\n", "  "))
	assert.Equal(t, "  only", indent("only", "  "))
}

func TestShortTimestamp(t *testing.T) {
	assert.Equal(t, "2026-08-22T10:15:04", shortTimestamp("2026-08-22T10:15:04+02:00", 19))
	assert.Equal(t, "2026-08-22", shortTimestamp("2026-08-22", 19))
	assert.Equal(t, "unknown", shortTimestamp("", 19))
}

func TestShortDigest(t *testing.T) {
	assert.Equal(t, "sha256:0123456789ab", shortDigest("sha256:0123456789abcdef0123456789abcdef"))
	assert.Equal(t, "sha256:abc", shortDigest("sha256:abc"))
	assert.Empty(t, shortDigest(""))
}

func TestJoinPorts(t *testing.T) {
	assert.Equal(t, "-", joinPorts(nil))
	assert.Equal(t, "8080->80/tcp", joinPorts([]string{"8080->80/tcp"}))
	assert.Equal(t, "8080->80/tcp, 8443->443/tcp", joinPorts([]string{"8080->80/tcp", "8443->443/tcp"}))
}

func TestRenderOutcome(t *testing.T) {
	for _, outcome := range []string{journal.OutcomeOK, journal.OutcomePartial, journal.OutcomeFailed, "unknown"} {
		assert.Contains(t, renderOutcome(outcome), outcome)
	}
}
