package iolock

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// AcquireLockError is returned when the advisory lock cannot be taken.
type AcquireLockError struct {
	error
	gnlib.MessageBase
}

// AcquireError creates a new lock acquisition error.
func AcquireError(key string, err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Acquire Deploy Lock</title>
<warn>Advisory lock <em>%s</em> is not available.</warn>

<em>How to fix:</em>
  1. Check whether another deploy is running
  2. Set <em>deploy.use_lock: false</em> if runs are coordinated elsewhere
`,
		Vars: []any{key},
	}

	return AcquireLockError{
		error:       fmt.Errorf("failed to acquire advisory lock %s: %w", key, err),
		MessageBase: msgBase,
	}
}

func (e AcquireLockError) Unwrap() error {
	return e.error
}
