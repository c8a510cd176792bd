package ioledger

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/vetcare/vetdb/pkg/migration"
)

// Memory is a ledger that lives as long as the process. Dry runs and
// tests use it.
type Memory struct {
	mu   sync.Mutex
	recs map[string]migration.Record

	// Fail, if set, is returned by every write.
	Fail error
}

// NewMemory creates an empty Memory ledger, optionally prefilled.
func NewMemory(recs ...migration.Record) *Memory {
	res := &Memory{recs: make(map[string]migration.Record)}
	for _, v := range recs {
		res.recs[v.Name] = v
	}
	return res
}

func (l *Memory) Init(context.Context) error { return nil }

func (l *Memory) Applied(context.Context) ([]migration.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := slices.Collect(maps.Values(l.recs))
	migration.SortRecords(res)
	return res, nil
}

func (l *Memory) Record(_ context.Context, rec migration.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail != nil {
		return WriteError(rec.Name, l.Fail)
	}
	l.recs[rec.Name] = rec
	return nil
}

func (l *Memory) Remove(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail != nil {
		return WriteError(name, l.Fail)
	}
	delete(l.recs, name)
	return nil
}

func (l *Memory) Replace(_ context.Context, recs []migration.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail != nil {
		return WriteError("*", l.Fail)
	}
	clear(l.recs)
	for _, v := range recs {
		l.recs[v.Name] = v
	}
	return nil
}
