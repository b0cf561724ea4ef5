package rundir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDir_WriteAndPlaceholder(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "a", "b"), nil)
	require.NoError(t, err)

	require.NoError(t, d.Write("0-specialists/security.txt", "x\n"))
	data, err := os.ReadFile(d.File("0-specialists/security.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))

	require.NoError(t, d.Write("1-critique.txt", "kept"))
	require.NoError(t, d.Placeholder("1-critique.txt"))
	require.NoError(t, d.Placeholder("2-defense.txt"))

	data, err = os.ReadFile(d.File("1-critique.txt"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
	assert.FileExists(t, d.File("2-defense.txt"))
}

func TestManifest_RoundTrip(t *testing.T) {
	d, err := Open(t.TempDir(), nil)
	require.NoError(t, err)

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := Manifest{
		RunID:     NewRunID(),
		Tool:      "crucible",
		Kind:      "review-protocol",
		Head:      "NO_GIT",
		State:     "Reported",
		Attempts:  map[string]int{"critique": 2},
		StartedAt: started,
	}
	require.NoError(t, d.WriteManifest(m))

	got, err := ReadManifest(d.Path)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	_, err = uuid.Parse(got.RunID)
	assert.NoError(t, err)
}

func TestOpen_WarnsOnReuse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("{}"), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	_, err := Open(dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("already used").Len())
}
