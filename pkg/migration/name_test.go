package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vetcare/vetdb/pkg/migration"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		msg, name string
		ts        int64
		label     string
		err       bool
	}{
		{"ok", "1712300000000-RenameAppointmentDateTime", 1712300000000, "RenameAppointmentDateTime", false},
		{"short", "1-A", 1, "A", false},
		{"no ts", "RenameThings", 0, "", true},
		{"lower", "17-1abc", 0, "", true},
		{"space", "17-Add Things", 0, "", true},
	}
	for _, v := range tests {
		ts, label, err := migration.ParseName(v.name)
		if v.err {
			assert.Error(t, err, v.msg)
			continue
		}
		assert.NoError(t, err, v.msg)
		assert.Equal(t, v.ts, ts, v.msg)
		assert.Equal(t, v.label, label, v.msg)
	}
	assert.Equal(t, "42-Label", migration.FormatName(42, "Label"))
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"varchar(255)", "character varying"},
		{"INT", "integer"},
		{"timestamptz", "timestamp with time zone"},
		{"timestamp", "timestamp without time zone"},
		{"numeric(10, 2)", "numeric"},
		{"appointments_status_enum", "appointments_status_enum"},
	}
	for _, v := range tests {
		assert.Equal(t, v.out, migration.NormalizeType(v.in), v.in)
	}
	assert.True(t, migration.IsIntegerType("int4"))
	assert.True(t, migration.IsTextType("varchar(50)"))
	assert.False(t, migration.IsTextType("integer"))
}
