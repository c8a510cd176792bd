package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vetcare/vetdb/pkg/ddl"
)

// TableDDL creates a CREATE TABLE statement from struct tags of a model.
func TableDDL(m Model) ddl.CreateTable {
	v := reflect.ValueOf(m)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()
	tableName := m.TableName()

	res := ddl.CreateTable{Name: tableName}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")
		if dbTag == "" || ddlTag == "" {
			continue
		}
		res.Columns = append(res.Columns, parseColumn(dbTag, ddlTag))

		if fkTag := field.Tag.Get("fk"); fkTag != "" {
			res.ForeignKeys = append(res.ForeignKeys,
				parseForeignKey(tableName, dbTag, fkTag))
		}
	}
	return res
}

// parseColumn reads a tag like "varchar(50) notnull unique default='30'".
func parseColumn(name, tag string) ddl.Column {
	fields := strings.Fields(tag)
	res := ddl.Column{Name: name, Type: fields[0]}
	for _, f := range fields[1:] {
		switch {
		case f == "pk":
			res.PrimaryKey = true
		case f == "notnull":
			res.NotNull = true
		case f == "unique":
			res.Unique = true
		case strings.HasPrefix(f, "default="):
			res.Default = strings.TrimPrefix(f, "default=")
		}
	}
	return res
}

var actions = map[string]ddl.Action{
	"cascade":  ddl.Cascade,
	"setnull":  ddl.SetNull,
	"restrict": ddl.Restrict,
	"noaction": ddl.NoAction,
}

// parseForeignKey reads a tag like "pets cascade".
func parseForeignKey(table, column, tag string) ddl.ForeignKey {
	fields := strings.Fields(tag)
	res := ddl.ForeignKey{
		Name:     ForeignKeyName(table, column),
		Column:   column,
		RefTable: fields[0],
	}
	if len(fields) > 1 {
		res.OnDelete = actions[fields[1]]
	}
	return res
}

// ForeignKeyName returns the constraint name of a foreign key column.
func ForeignKeyName(table, column string) string {
	return fmt.Sprintf("FK_%s_%s", table, column)
}

// IndexName returns the name of an index on table columns.
func IndexName(table string, columns ...string) string {
	return fmt.Sprintf("IDX_%s_%s", table, strings.Join(columns, "_"))
}

func indexes(table string, cols ...[]string) []Index {
	res := make([]Index, len(cols))
	for i, v := range cols {
		res[i] = Index{Name: IndexName(table, v...), Columns: v}
	}
	return res
}

// IndexDDL creates CREATE INDEX statements of a model.
func IndexDDL(m Model) []ddl.CreateIndex {
	idxs := m.Indexes()
	res := make([]ddl.CreateIndex, len(idxs))
	for i, v := range idxs {
		res[i] = ddl.CreateIndex{
			Name:    v.Name,
			Table:   m.TableName(),
			Columns: v.Columns,
		}
	}
	return res
}

func (User) TableName() string { return "users" }
func (User) Indexes() []Index  { return nil }

func (Client) TableName() string { return "clients" }
func (Client) Indexes() []Index  { return nil }

func (Veterinarian) TableName() string { return "veterinarians" }
func (Veterinarian) Indexes() []Index  { return nil }

func (Pet) TableName() string { return "pets" }
func (Pet) Indexes() []Index {
	return indexes("pets", []string{"client_id"})
}

func (Appointment) TableName() string { return "appointments" }
func (Appointment) Indexes() []Index {
	return indexes("appointments",
		[]string{"pet_id"},
		[]string{"veterinarian_id"},
		[]string{"scheduled_at"},
	)
}

func (MedicalRecord) TableName() string { return "medical_records" }
func (MedicalRecord) Indexes() []Index {
	return indexes("medical_records", []string{"pet_id"})
}

func (Prescription) TableName() string { return "prescriptions" }
func (Prescription) Indexes() []Index {
	return indexes("prescriptions", []string{"medical_record_id"})
}

func (Vaccination) TableName() string { return "vaccinations" }
func (Vaccination) Indexes() []Index {
	return indexes("vaccinations", []string{"pet_id"})
}

func (AIDiagnosis) TableName() string { return "ai_diagnoses" }
func (AIDiagnosis) Indexes() []Index {
	return indexes("ai_diagnoses", []string{"pet_id"})
}

func (Attachment) TableName() string { return "attachments" }
func (Attachment) Indexes() []Index {
	return indexes("attachments", []string{"medical_record_id"})
}

func (Notification) TableName() string { return "notifications" }
func (Notification) Indexes() []Index {
	return indexes("notifications", []string{"user_id", "is_read"})
}
