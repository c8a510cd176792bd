package ddl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vetcare/vetdb/pkg/ddl"
)

func TestColumnDefinition(t *testing.T) {
	tests := []struct {
		msg string
		col ddl.Column
		res string
	}{
		{
			msg: "primary key",
			col: ddl.Column{Name: "id", Type: "uuid", PrimaryKey: true,
				Default: "gen_random_uuid()"},
			res: `"id" uuid PRIMARY KEY DEFAULT gen_random_uuid()`,
		},
		{
			msg: "not null unique",
			col: ddl.Column{Name: "email", Type: "varchar(255)",
				NotNull: true, Unique: true},
			res: `"email" varchar(255) NOT NULL UNIQUE`,
		},
		{
			msg: "nullable",
			col: ddl.Column{Name: "phone", Type: "varchar(20)"},
			res: `"phone" varchar(20)`,
		},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, v.col.Definition(), v.msg)
	}
}

func TestStatementSQL(t *testing.T) {
	tests := []struct {
		msg  string
		stmt ddl.Statement
		res  string
	}{
		{
			msg:  "add enum value",
			stmt: ddl.AddEnumValue{Enum: "appointments_status_enum", Value: "MISSED"},
			res:  `ALTER TYPE "appointments_status_enum" ADD VALUE IF NOT EXISTS 'MISSED';`,
		},
		{
			msg:  "drop enum",
			stmt: ddl.DropEnum{Name: "users_role_enum"},
			res:  `DROP TYPE IF EXISTS "users_role_enum" CASCADE;`,
		},
		{
			msg:  "drop table",
			stmt: ddl.DropTable{Name: "pets"},
			res:  `DROP TABLE IF EXISTS "pets" CASCADE;`,
		},
		{
			msg: "add column",
			stmt: ddl.AddColumn{Table: "medical_records",
				Column: ddl.Column{Name: "pet_id", Type: "uuid"}},
			res: `ALTER TABLE "medical_records" ADD COLUMN IF NOT EXISTS "pet_id" uuid;`,
		},
		{
			msg:  "drop column",
			stmt: ddl.DropColumn{Table: "veterinarians", Column: "availability"},
			res:  `ALTER TABLE "veterinarians" DROP COLUMN IF EXISTS "availability";`,
		},
		{
			msg:  "rename column",
			stmt: ddl.RenameColumn{Table: "appointments", From: "date_time", To: "scheduled_at"},
			res:  `ALTER TABLE "appointments" RENAME COLUMN "date_time" TO "scheduled_at";`,
		},
		{
			msg: "add foreign key",
			stmt: ddl.AddForeignKey{Table: "medical_records", Key: ddl.ForeignKey{
				Name: "FK_medical_records_pet_id", Column: "pet_id",
				RefTable: "pets", OnDelete: ddl.Cascade}},
			res: `ALTER TABLE "medical_records" ADD CONSTRAINT "FK_medical_records_pet_id" ` +
				`FOREIGN KEY ("pet_id") REFERENCES "pets"("id") ON DELETE CASCADE;`,
		},
		{
			msg:  "drop constraint",
			stmt: ddl.DropConstraint{Table: "medical_records", Name: "FK_medical_records_pet_id"},
			res:  `ALTER TABLE "medical_records" DROP CONSTRAINT IF EXISTS "FK_medical_records_pet_id";`,
		},
		{
			msg: "create index",
			stmt: ddl.CreateIndex{Name: "IDX_notifications_user_id_is_read",
				Table: "notifications", Columns: []string{"user_id", "is_read"}},
			res: `CREATE INDEX IF NOT EXISTS "IDX_notifications_user_id_is_read" ` +
				`ON "notifications" ("user_id", "is_read");`,
		},
		{
			msg: "create unique index",
			stmt: ddl.CreateIndex{Name: "IDX_x", Table: "t",
				Columns: []string{"a"}, Unique: true},
			res: `CREATE UNIQUE INDEX IF NOT EXISTS "IDX_x" ON "t" ("a");`,
		},
		{
			msg:  "drop index",
			stmt: ddl.DropIndex{Name: "IDX_pets_client_id"},
			res:  `DROP INDEX IF EXISTS "IDX_pets_client_id";`,
		},
		{
			msg:  "extension",
			stmt: ddl.CreateExtension{Name: "pgcrypto"},
			res:  `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
		},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, v.stmt.SQL(), v.msg)
	}
}

func TestCreateEnumSQL(t *testing.T) {
	stmt := ddl.CreateEnum{
		Name:   "users_role_enum",
		Values: []string{"CLIENT", "VET", "ADMIN"},
	}
	res := stmt.SQL()
	assert.Contains(t, res,
		`CREATE TYPE "users_role_enum" AS ENUM ('CLIENT', 'VET', 'ADMIN');`)
	assert.Contains(t, res, "WHEN duplicate_object THEN null;")
	assert.True(t, strings.HasPrefix(res, "DO $$"))
}

func TestCreateTableSQL(t *testing.T) {
	stmt := ddl.CreateTable{
		Name: "clients",
		Columns: []ddl.Column{
			{Name: "id", Type: "uuid", PrimaryKey: true},
			{Name: "user_id", Type: "uuid", NotNull: true, Unique: true},
		},
		ForeignKeys: []ddl.ForeignKey{
			{Name: "FK_clients_user_id", Column: "user_id",
				RefTable: "users", OnDelete: ddl.Cascade},
		},
	}
	exp := `CREATE TABLE IF NOT EXISTS "clients" (
	"id" uuid PRIMARY KEY,
	"user_id" uuid NOT NULL UNIQUE,
	CONSTRAINT "FK_clients_user_id" FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE
);`
	assert.Equal(t, exp, stmt.SQL())
}

func TestAlterColumnTypeSQL(t *testing.T) {
	stmt := ddl.AlterColumnType{
		Table:   "appointments",
		Column:  "duration",
		Type:    "varchar(50)",
		Using:   `"duration"::varchar(50)`,
		Default: "'30'",
	}
	exp := `ALTER TABLE "appointments"
	ALTER COLUMN "duration" DROP DEFAULT,
	ALTER COLUMN "duration" TYPE varchar(50) USING "duration"::varchar(50),
	ALTER COLUMN "duration" SET DEFAULT '30';`
	assert.Equal(t, exp, stmt.SQL())
}

func TestLiteralEscaping(t *testing.T) {
	stmt := ddl.AddEnumValue{Enum: "e", Value: "O'NEIL"}
	assert.Equal(t, `ALTER TYPE "e" ADD VALUE IF NOT EXISTS 'O''NEIL';`, stmt.SQL())
}

func TestScriptAndSummary(t *testing.T) {
	script := ddl.Script{
		ddl.DropIndex{Name: "IDX_a"},
		ddl.DropTable{Name: "a"},
	}
	assert.Equal(t,
		"DROP INDEX IF EXISTS \"IDX_a\";\nDROP TABLE IF EXISTS \"a\" CASCADE;",
		script.SQL())

	summary := ddl.Summary(ddl.CreateEnum{Name: "e", Values: []string{"A"}})
	assert.Equal(t, "DO $$ BEGIN", summary)

	long := ddl.Exec{Query: strings.Repeat("x", 100)}
	assert.Len(t, ddl.Summary(long), 80)
}
