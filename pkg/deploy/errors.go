package deploy

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// MissingUnitError is returned when the designated recreate unit is not
// registered.
func MissingUnitError(name string) error {
	msg := `Bootstrap migration <em>%s</em> is not registered

<em>How to fix:</em>
  1. Run <em>vetdb status</em> to list known migrations
  2. Set <em>deploy.bootstrap_unit</em> to a registered migration`

	return &gn.Error{
		Code: errcode.ValidationMissingUnitError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("bootstrap migration %s is not registered", name),
	}
}

// MarkersError lists statements missing from the recreate script.
func MarkersError(name string, missing []string) error {
	msg := `Bootstrap migration <em>%s</em> is incomplete

<em>Missing statements:</em>
  %s`

	list := strings.Join(missing, "\n  ")
	return &gn.Error{
		Code: errcode.ValidationMarkersError,
		Msg:  msg,
		Vars: []any{name, list},
		Err: fmt.Errorf("bootstrap migration %s misses %d statements: %s",
			name, len(missing), strings.Join(missing, "; ")),
	}
}

// StepError is returned when a deploy step fails. It names the failing
// step and the last one that succeeded.
type StepError struct {
	Step           Step
	LastSuccessful Step
	Err            error
}

func (e *StepError) Error() string {
	last := string(e.LastSuccessful)
	if last == "" {
		last = "none"
	}
	return fmt.Sprintf("deploy step %s failed (last successful: %s): %v",
		e.Step, last, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
