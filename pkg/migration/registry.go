package migration

import (
	"cmp"
	"slices"
)

// Registry holds the ordered migration history plus standalone units.
// Standalone units never appear in the pending list, they can only be run
// by name (for example the unit that recreates the whole schema on the
// first deploy).
type Registry struct {
	history    []Unit
	standalone []Unit
	index      map[string]Unit
	stamps     map[int64]string
}

// NewRegistry validates unit names and returns a registry with the history
// sorted by timestamp. Names and timestamps must be unique across history
// and standalone units.
func NewRegistry(history []Unit, standalone ...Unit) (*Registry, error) {
	res := &Registry{
		index:  make(map[string]Unit),
		stamps: make(map[int64]string),
	}
	for _, u := range history {
		if err := res.add(u); err != nil {
			return nil, err
		}
		res.history = append(res.history, u)
	}
	for _, u := range standalone {
		if err := res.add(u); err != nil {
			return nil, err
		}
		res.standalone = append(res.standalone, u)
	}
	slices.SortFunc(res.history, compareUnits)
	return res, nil
}

func (r *Registry) add(u Unit) error {
	name := u.Name()
	ts, _, err := ParseName(name)
	if err != nil {
		return err
	}
	if _, ok := r.index[name]; ok {
		return DuplicateError(name)
	}
	if _, ok := r.stamps[ts]; ok {
		return DuplicateError(name)
	}
	r.index[name] = u
	r.stamps[ts] = name
	return nil
}

// History returns the history units in ascending timestamp order.
func (r *Registry) History() []Unit {
	return slices.Clone(r.history)
}

// Lookup finds a history or standalone unit by name.
func (r *Registry) Lookup(name string) (Unit, bool) {
	u, ok := r.index[name]
	return u, ok
}

// IsStandalone reports whether a name belongs to a standalone unit.
func (r *Registry) IsStandalone(name string) bool {
	for _, u := range r.standalone {
		if u.Name() == name {
			return true
		}
	}
	return false
}

// Names returns names of history units in order.
func (r *Registry) Names() []string {
	res := make([]string, len(r.history))
	for i, u := range r.history {
		res[i] = u.Name()
	}
	return res
}

func compareUnits(a, b Unit) int {
	return cmp.Or(
		cmp.Compare(Timestamp(a.Name()), Timestamp(b.Name())),
		cmp.Compare(a.Name(), b.Name()),
	)
}
