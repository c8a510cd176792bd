package migration

import (
	"cmp"
	"context"
	"slices"
	"time"
)

// Record is a ledger entry of an applied unit.
type Record struct {
	Timestamp int64     `json:"timestamp"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"appliedAt"`
}

// Ledger persists which units were applied.
type Ledger interface {
	// Init creates (or upgrades) the ledger storage. It is idempotent.
	Init(ctx context.Context) error

	// Applied returns records ordered by timestamp, then name.
	Applied(ctx context.Context) ([]Record, error)

	// Record stores a record, replacing one with the same name.
	Record(ctx context.Context, rec Record) error

	// Remove deletes a record by name. Removing a missing record is not
	// an error.
	Remove(ctx context.Context, name string) error

	// Replace deletes all records and stores recs in their place. The
	// ledger either keeps its old records or holds exactly recs.
	Replace(ctx context.Context, recs []Record) error
}

// ListPending returns units from all that have no record in applied,
// in strictly ascending timestamp order.
func ListPending(all []Unit, applied []Record) []Unit {
	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v.Name] = struct{}{}
	}
	var res []Unit
	for _, u := range all {
		if _, ok := done[u.Name()]; ok {
			continue
		}
		res = append(res, u)
	}
	slices.SortStableFunc(res, compareUnits)
	return res
}

// SortRecords orders records by timestamp, then name.
func SortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.Timestamp, b.Timestamp),
			cmp.Compare(a.Name, b.Name),
		)
	})
}
