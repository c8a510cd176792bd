package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/schema"
)

// TestTableNames verifies the compatibility surface of table names.
func TestTableNames(t *testing.T) {
	assert.Equal(t, []string{
		"users", "clients", "veterinarians", "pets", "appointments",
		"medical_records", "prescriptions", "vaccinations",
		"ai_diagnoses", "attachments", "notifications",
	}, schema.TableNames())
}

// TestUserTableDDL verifies DDL generation from model tags.
func TestUserTableDDL(t *testing.T) {
	tbl := schema.TableDDL(schema.User{})
	assert.Equal(t, "users", tbl.Name)
	assert.Empty(t, tbl.ForeignKeys)

	sql := tbl.SQL()
	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "users"`)
	assert.Contains(t, sql, `"id" uuid PRIMARY KEY DEFAULT gen_random_uuid()`)
	assert.Contains(t, sql, `"email" varchar(255) NOT NULL UNIQUE`)
	assert.Contains(t, sql, `"role" users_role_enum NOT NULL DEFAULT 'CLIENT'`)
	assert.Contains(t, sql, `"phone" varchar(20),`)
}

// TestForeignKeyPolicies verifies explicit ON DELETE policies.
func TestForeignKeyPolicies(t *testing.T) {
	tests := []struct {
		msg    string
		model  schema.Model
		column string
		ref    string
		action ddl.Action
	}{
		{"pet owner", schema.Pet{}, "client_id", "clients", ddl.Cascade},
		{"appointment pet", schema.Appointment{}, "pet_id", "pets", ddl.Cascade},
		{"medical record appointment", schema.MedicalRecord{},
			"appointment_id", "appointments", ddl.Cascade},
		{"vaccination vet", schema.Vaccination{},
			"veterinarian_id", "veterinarians", ddl.Restrict},
		{"diagnosis appointment", schema.AIDiagnosis{},
			"appointment_id", "appointments", ddl.SetNull},
	}

	for _, v := range tests {
		tbl := schema.TableDDL(v.model)
		var found bool
		for _, fk := range tbl.ForeignKeys {
			if fk.Column != v.column {
				continue
			}
			found = true
			assert.Equal(t, v.ref, fk.RefTable, v.msg)
			assert.Equal(t, v.action, fk.OnDelete, v.msg)
			assert.Equal(t, "FK_"+tbl.Name+"_"+v.column, fk.Name, v.msg)
		}
		assert.True(t, found, v.msg)
	}
}

// TestDependencyOrder verifies every referenced table is created first.
func TestDependencyOrder(t *testing.T) {
	seen := make(map[string]bool)
	for _, tbl := range schema.Tables() {
		for _, fk := range tbl.ForeignKeys {
			assert.True(t, seen[fk.RefTable],
				"%s references %s before it is created", tbl.Name, fk.RefTable)
		}
		seen[tbl.Name] = true
	}
}

// TestEnums verifies enumerated types and their closed value sets.
func TestEnums(t *testing.T) {
	enums := make(map[string][]string)
	for _, v := range schema.Enums() {
		enums[v.Name] = v.Values
	}
	assert.Len(t, enums, 11)
	assert.Equal(t, []string{"CLIENT", "VET", "ADMIN"}, enums["users_role_enum"])
	assert.Equal(t, []string{
		"SCHEDULED", "CONFIRMED", "IN_PROGRESS", "COMPLETED", "CANCELLED", "MISSED",
	}, enums["appointments_status_enum"])
	assert.Equal(t, []string{"PENDING", "PROCESSING", "COMPLETED", "FAILED"},
		enums["ai_diagnoses_status_enum"])
	assert.Equal(t, []string{"ACTIVE", "COMPLETED", "DISCONTINUED", "SUSPENDED"},
		enums["prescriptions_status_enum"])
}

// TestRecreateScript verifies the first-deploy script drops before it
// creates and covers every table.
func TestRecreateScript(t *testing.T) {
	script := schema.RecreateScript()
	sql := script.SQL()

	lastDrop, firstCreate := -1, len(script)
	for i, stmt := range script {
		switch stmt.(type) {
		case ddl.DropIndex, ddl.DropTable, ddl.DropEnum:
			lastDrop = i
		case ddl.CreateEnum, ddl.CreateTable, ddl.CreateIndex:
			firstCreate = min(firstCreate, i)
		}
	}
	assert.Less(t, lastDrop, firstCreate)

	for _, name := range schema.TableNames() {
		assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "`+name+`"`)
		assert.Contains(t, sql, `DROP TABLE IF EXISTS "`+name+`" CASCADE`)
	}
	assert.Equal(t, 1, strings.Count(sql, "CREATE EXTENSION"))
}

// TestAvailabilityValue verifies jsonb encoding of veterinarian
// availability.
func TestAvailabilityValue(t *testing.T) {
	a := schema.Availability{
		"monday": {Open: "09:00", Close: "17:00", Enabled: true},
	}
	val, err := a.Value()
	require.NoError(t, err)
	s, ok := val.(string)
	require.True(t, ok)
	assert.Contains(t, s, `"open":"09:00"`)

	var b schema.Availability
	require.NoError(t, b.Scan([]byte(s)))
	assert.Equal(t, a, b)

	var empty schema.Availability
	val, err = empty.Value()
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.Error(t, b.Scan(42))
}
