package iofs

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// TestErrors verifies codes, message variables, caller context and
// wrapping of file system errors.
func TestErrors(t *testing.T) {
	originalErr := errors.New("root cause")

	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		text string
	}{
		{
			msg:  "create dir",
			err:  CreateDirError("/dir", originalErr),
			code: errcode.CreateDirError,
			text: "cannot create",
		},
		{
			msg:  "copy file",
			err:  CopyFileError("/file", originalErr),
			code: errcode.CopyFileError,
			text: "cannot copy",
		},
		{
			msg:  "read file",
			err:  ReadFileError("/path", originalErr),
			code: errcode.ReadFileError,
			text: "cannot read /path",
		},
	}

	for _, v := range tests {
		gnErr, ok := v.err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, v.code, gnErr.Code, v.msg)
		assert.Contains(t, gnErr.Msg, "%s", v.msg)
		require.Len(t, gnErr.Vars, 1, v.msg)
		assert.Contains(t, gnErr.Err.Error(), "from ", v.msg)
		assert.Contains(t, gnErr.Err.Error(), v.text, v.msg)
		assert.ErrorIs(t, gnErr.Err, originalErr, v.msg)
	}
}
