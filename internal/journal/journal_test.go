package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesStateDirAndSchema(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), ".dkproxyctl")

	j, err := Open(stateDir)
	require.NoError(t, err)
	defer j.Close()

	assert.FileExists(t, filepath.Join(stateDir, "journal.db"))

	entries, err := j.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecord_RoundTrip(t *testing.T) {
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	j.Record(Entry{Command: "pull", Service: "outpost", Tag: "1.43", Outcome: OutcomeOK, Detail: "digest sha256:11aa"})
	j.Record(Entry{Command: "rollback", Service: "outpost", Tag: "1.42", Outcome: OutcomeFailed, Detail: "compose stop failed"})

	entries, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.WithinDuration(t, time.Now(), entries[0].At, time.Minute)

	commands := []string{entries[0].Command, entries[1].Command}
	assert.ElementsMatch(t, []string{"pull", "rollback"}, commands)
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		j.Record(Entry{
			At:      base.Add(time.Duration(i) * time.Minute),
			Command: "pull",
			Tag:     "1.4" + string(rune('0'+i)),
			Outcome: OutcomeOK,
		})
	}

	entries, err := j.Recent(3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "1.44", entries[0].Tag)
	assert.Equal(t, "1.42", entries[2].Tag)
}

func TestJournal_NilIsSafe(t *testing.T) {
	var j *Journal

	j.Record(Entry{Command: "pull"})
	entries, err := j.Recent(5)

	assert.NoError(t, err)
	assert.Nil(t, entries)
	assert.NoError(t, j.Close())
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir)
	require.NoError(t, err)
	j.Record(Entry{Command: "set", Service: "vault", Tag: "1.15", Outcome: OutcomeOK})
	require.NoError(t, j.Close())

	j2, err := Open(dir)
	require.NoError(t, err)
	defer j2.Close()

	entries, err := j2.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "set", entries[0].Command)
	assert.Equal(t, "vault", entries[0].Service)
}
