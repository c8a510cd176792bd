package migration

import (
	"context"
	"log/slog"
	"time"

	"github.com/vetcare/vetdb/pkg/errcode"
)

// Direction of a unit run.
type Direction string

const (
	Up       Direction = "up"
	Down     Direction = "down"
	Baseline Direction = "baseline"
)

// Result describes one unit run.
type Result struct {
	Name      string
	Direction Direction
	Started   time.Time
	Duration  time.Duration
	Err       error
}

// Observer receives every Result produced by a Runner.
type Observer interface {
	Observe(Result)
}

// UnitStatus is a row of the status view.
type UnitStatus struct {
	Name       string    `json:"name"`
	Timestamp  int64     `json:"timestamp"`
	Applied    bool      `json:"applied"`
	AppliedAt  time.Time `json:"appliedAt"`
	Known      bool      `json:"known"`
	Standalone bool      `json:"standalone,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithObserver adds an observer of unit results.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// Runner applies and reverts units against a Database, keeping the
// Ledger in sync. It is not safe for concurrent use.
type Runner struct {
	db        Database
	ledger    Ledger
	reg       *Registry
	log       *slog.Logger
	now       func() time.Time
	observers []Observer
	ready     bool
}

// NewRunner creates a Runner.
func NewRunner(db Database, ledger Ledger, reg *Registry, opts ...Option) *Runner {
	res := &Runner{
		db:     db,
		ledger: ledger,
		reg:    reg,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func (r *Runner) init(ctx context.Context) error {
	if r.ready {
		return nil
	}
	if err := r.ledger.Init(ctx); err != nil {
		return err
	}
	r.ready = true
	return nil
}

// Applied returns ledger records in ascending order.
func (r *Runner) Applied(ctx context.Context) ([]Record, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	res, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}
	SortRecords(res)
	return res, nil
}

// Pending returns history units without a ledger record, in ascending
// timestamp order.
func (r *Runner) Pending(ctx context.Context) ([]Unit, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	return ListPending(r.reg.History(), applied), nil
}

// RunPending applies every pending unit in order, recording each one
// before the next starts. It stops at the first failure. Units applied
// earlier in the batch stay applied.
func (r *Runner) RunPending(ctx context.Context) ([]Result, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	pending := ListPending(r.reg.History(), applied)
	if len(pending) == 0 {
		r.log.Info("No pending migrations")
		return nil, nil
	}
	r.warnOutOfOrder(applied, pending)

	res := make([]Result, 0, len(pending))
	for _, u := range pending {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		rs := r.apply(ctx, u)
		res = append(res, rs)
		if rs.Err != nil {
			return res, rs.Err
		}
	}
	return res, nil
}

// RunOne applies a single unit by name regardless of order.
func (r *Runner) RunOne(ctx context.Context, name string) (Result, error) {
	if err := r.init(ctx); err != nil {
		return Result{Name: name, Direction: Up, Err: err}, err
	}
	u, ok := r.reg.Lookup(name)
	if !ok {
		err := UnknownError(name)
		return Result{Name: name, Direction: Up, Err: err}, err
	}
	res := r.apply(ctx, u)
	return res, res.Err
}

// RevertLast reverts the last n applied units in descending order,
// removing each record after its revert succeeds.
func (r *Runner) RevertLast(ctx context.Context, n int) ([]Result, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(applied) {
		n = len(applied)
	}
	var res []Result
	for i := len(applied) - 1; i >= len(applied)-n; i-- {
		name := applied[i].Name
		u, ok := r.reg.Lookup(name)
		if !ok {
			err = UnknownError(name)
			res = append(res, Result{Name: name, Direction: Down, Err: err})
			return res, err
		}
		rs := r.revert(ctx, u)
		res = append(res, rs)
		if rs.Err != nil {
			return res, rs.Err
		}
	}
	return res, nil
}

// Bootstrap is the first-deploy path. It runs the designated unit that
// recreates the whole schema, then replaces the ledger with that unit and
// the history it supersedes, recorded as baselined. A failed unit leaves
// the ledger untouched.
func (r *Runner) Bootstrap(ctx context.Context, name string) ([]Result, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	u, ok := r.reg.Lookup(name)
	if !ok {
		return nil, UnknownError(name)
	}
	one := r.apply(ctx, u)
	res := []Result{one}
	if one.Err != nil {
		return res, one.Err
	}

	upTo := Timestamp(name)
	at := r.now()
	recs := []Record{{Timestamp: upTo, Name: name, AppliedAt: at}}
	var base []Result
	for _, v := range r.reg.History() {
		ts := Timestamp(v.Name())
		if ts > upTo {
			break
		}
		if v.Name() == name {
			continue
		}
		recs = append(recs, Record{Timestamp: ts, Name: v.Name(), AppliedAt: at})
		base = append(base, Result{Name: v.Name(), Direction: Baseline, Started: at})
	}
	if err := r.ledger.Replace(ctx, recs); err != nil {
		return res, err
	}
	for _, v := range base {
		r.notify(v)
		r.log.Info("Baselined migration", "name", v.Name)
	}
	return append(res, base...), nil
}

// Status lists history units with their ledger state, followed by
// standalone units and ledger entries unknown to the registry.
func (r *Runner) Status(ctx context.Context) ([]UnitStatus, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	recs := make(map[string]Record, len(applied))
	for _, v := range applied {
		recs[v.Name] = v
	}

	var res []UnitStatus
	seen := make(map[string]struct{})
	for _, u := range r.reg.History() {
		name := u.Name()
		seen[name] = struct{}{}
		rec, ok := recs[name]
		res = append(res, UnitStatus{
			Name:      name,
			Timestamp: Timestamp(name),
			Applied:   ok,
			AppliedAt: rec.AppliedAt,
			Known:     true,
		})
	}
	for _, v := range applied {
		if _, ok := seen[v.Name]; ok {
			continue
		}
		_, known := r.reg.Lookup(v.Name)
		res = append(res, UnitStatus{
			Name:       v.Name,
			Timestamp:  v.Timestamp,
			Applied:    true,
			AppliedAt:  v.AppliedAt,
			Known:      known,
			Standalone: r.reg.IsStandalone(v.Name),
		})
	}
	return res, nil
}

func (r *Runner) apply(ctx context.Context, u Unit) Result {
	name := u.Name()
	res := Result{Name: name, Direction: Up, Started: r.now()}
	r.log.Info("Applying migration", "name", name)

	err := r.exec(ctx, u, u.Apply)
	if err != nil {
		err = ApplyError(name, err)
	} else {
		err = r.ledger.Record(ctx, Record{
			Timestamp: Timestamp(name),
			Name:      name,
			AppliedAt: r.now(),
		})
	}
	res.Duration = r.now().Sub(res.Started)
	res.Err = err
	r.notify(res)

	if err != nil {
		r.log.Error("Migration failed", "name", name, "error", err)
		return res
	}
	r.log.Info("Applied migration", "name", name, "duration", res.Duration)
	return res
}

func (r *Runner) revert(ctx context.Context, u Unit) Result {
	name := u.Name()
	res := Result{Name: name, Direction: Down, Started: r.now()}
	r.log.Info("Reverting migration", "name", name)

	err := r.exec(ctx, u, u.Revert)
	if err != nil {
		if !hasCode(err, errcode.MigrationNoDownError) {
			err = RevertError(name, err)
		}
	} else {
		err = r.ledger.Remove(ctx, name)
	}
	res.Duration = r.now().Sub(res.Started)
	res.Err = err
	r.notify(res)

	if err != nil {
		r.log.Error("Revert failed", "name", name, "error", err)
		return res
	}
	r.log.Info("Reverted migration", "name", name, "duration", res.Duration)
	return res
}

func (r *Runner) exec(ctx context.Context, u Unit, fn Func) error {
	if !inTransaction(u) {
		return fn(ctx, r.db)
	}
	return r.db.InTx(ctx, func(c Conn) error {
		return fn(ctx, c)
	})
}

func (r *Runner) notify(res Result) {
	for _, o := range r.observers {
		o.Observe(res)
	}
}

// warnOutOfOrder logs pending units that are older than the newest
// applied history unit. They still run in ascending order.
func (r *Runner) warnOutOfOrder(applied []Record, pending []Unit) {
	var last int64
	for _, v := range applied {
		if _, ok := r.reg.Lookup(v.Name); !ok || r.reg.IsStandalone(v.Name) {
			continue
		}
		last = max(last, v.Timestamp)
	}
	names := make([]string, 0, len(pending))
	for _, u := range pending {
		if Timestamp(u.Name()) < last {
			names = append(names, u.Name())
		}
	}
	if len(names) > 0 {
		r.log.Warn("Pending migrations are older than the last applied one",
			"migrations", names)
	}
}
