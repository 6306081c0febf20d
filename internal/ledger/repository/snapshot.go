package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ledgerdomain "github.com/nutrilog/nutrilog/internal/ledger/domain"
)

type snapshotFile struct {
	path string
}

// NewSnapshotFile persists ledger snapshots as a single JSON file at path.
// The layout is user -> date -> totals, so pre-existing data.json files load as-is.
func NewSnapshotFile(path string) ledgerdomain.Repository {
	return &snapshotFile{path: path}
}

func (r *snapshotFile) Load() (ledgerdomain.Snapshot, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledgerdomain.Snapshot{}, nil
		}
		return nil, fmt.Errorf("read ledger snapshot: %w", err)
	}

	var snap ledgerdomain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode ledger snapshot %s: %w", r.path, err)
	}
	if snap == nil {
		snap = ledgerdomain.Snapshot{}
	}
	return snap, nil
}

// Save writes the snapshot to a temp file in the same directory and renames it
// over the previous one, so a crash mid-write leaves the old snapshot intact.
func (r *snapshotFile) Save(snap ledgerdomain.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger snapshot: %w", err)
	}
	return nil
}
