package domain

// Repository persists whole ledger snapshots. Save must replace the previous
// snapshot atomically so a crashed write never corrupts committed totals.
type Repository interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}
