package ioschema

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// TestNotConnectedError_Structure verifies error structure.
func TestNotConnectedError_Structure(t *testing.T) {
	err := NotConnectedError()
	require.NotNil(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	assert.NotEmpty(t, gnErr.Msg)
}

// TestWrappedErrors verifies that GORM errors keep their cause.
func TestWrappedErrors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
	}{
		{"gorm", GORMConnectionError(cause), errcode.SchemaGORMConnectionError},
		{"parse", ModelParseError("pets", cause), errcode.SchemaModelDriftError},
	}
	for _, v := range tests {
		gnErr, ok := v.err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, v.code, gnErr.Code, v.msg)
		assert.ErrorIs(t, gnErr.Err, cause, v.msg)
	}
}

func TestDriftError(t *testing.T) {
	err := DriftError([]string{"table pets: missing", "column users.phone: missing"})
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.SchemaModelDriftError, gnErr.Code)
	assert.Equal(t, []any{2}, gnErr.Vars)
	assert.Contains(t, gnErr.Err.Error(), "column users.phone")
}
