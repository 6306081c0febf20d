package repository

import (
	"os"
	"path/filepath"
	"testing"

	ledgerdomain "github.com/nutrilog/nutrilog/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmptySnapshot(t *testing.T) {
	repo := NewSnapshotFile(filepath.Join(t.TempDir(), "data.json"))

	snap, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	repo := NewSnapshotFile(path)

	snap := ledgerdomain.Snapshot{
		"12345": {
			"2026-09-01": {Calories: 95.5, Protein: 0.3, Fat: 0.2, Carbs: 25.1},
			"2026-08-31": {Calories: 2800},
		},
		"67890": {
			"2026-09-01": {},
		},
	}
	require.NoError(t, repo.Save(snap))

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	repo := NewSnapshotFile(path)

	require.NoError(t, repo.Save(ledgerdomain.Snapshot{"u": {"2026-09-01": {Calories: 1}}}))
	require.NoError(t, repo.Save(ledgerdomain.Snapshot{"u": {"2026-09-01": {Calories: 2}}}))

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(2), got["u"]["2026-09-01"].Calories)

	// No temp files left behind after the rename.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoad_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewSnapshotFile(path).Load()
	assert.Error(t, err)
}
