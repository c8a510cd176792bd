package schema

import (
	"database/sql/driver"
	"fmt"

	"github.com/gnames/gnfmt"
)

// AllModels returns all schema models in dependency order: every table
// comes after the tables it references.
func AllModels() []Model {
	return []Model{
		&User{},
		&Client{},
		&Veterinarian{},
		&Pet{},
		&Appointment{},
		&MedicalRecord{},
		&Prescription{},
		&Vaccination{},
		&AIDiagnosis{},
		&Attachment{},
		&Notification{},
	}
}

// TableNames returns names of all tables in dependency order.
func TableNames() []string {
	models := AllModels()
	res := make([]string, len(models))
	for i, m := range models {
		res[i] = m.TableName()
	}
	return res
}

// DaySchedule is the opening time of a veterinarian on one weekday.
type DaySchedule struct {
	Open    string `json:"open" yaml:"open"`
	Close   string `json:"close" yaml:"close"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Availability maps lowercase weekday names to schedules. It is stored
// as jsonb.
type Availability map[string]DaySchedule

// Value implements driver.Valuer.
func (a Availability) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return encodeJSON(a)
}

// Scan implements sql.Scanner.
func (a *Availability) Scan(src any) error {
	return decodeJSON(src, a)
}

// Payload is an arbitrary jsonb document.
type Payload map[string]any

// Value implements driver.Valuer.
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return encodeJSON(p)
}

// Scan implements sql.Scanner.
func (p *Payload) Scan(src any) error {
	return decodeJSON(src, p)
}

func encodeJSON(v any) (driver.Value, error) {
	enc := gnfmt.GNjson{}
	bs, err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

func decodeJSON(src any, v any) error {
	var bs []byte
	switch s := src.(type) {
	case nil:
		return nil
	case []byte:
		bs = s
	case string:
		bs = []byte(s)
	default:
		return fmt.Errorf("cannot scan %T into jsonb", src)
	}
	enc := gnfmt.GNjson{}
	return enc.Decode(bs, v)
}
