package history

import (
	"context"

	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/migration"
)

func initialObjects() []ddl.Statement {
	return []ddl.Statement{
		ddl.CreateEnum{Name: "users_role_enum", Values: []string{"CLIENT", "VET", "ADMIN"}},
		ddl.CreateEnum{Name: "pets_species_enum", Values: []string{
			"DOG", "CAT", "BIRD", "RABBIT", "HAMSTER", "FISH", "REPTILE", "OTHER",
		}},
		ddl.CreateEnum{Name: "pets_gender_enum", Values: []string{"MALE", "FEMALE", "UNKNOWN"}},
		ddl.CreateEnum{Name: "appointments_status_enum", Values: []string{
			"SCHEDULED", "CONFIRMED", "IN_PROGRESS", "COMPLETED", "CANCELLED",
		}},
		ddl.CreateEnum{Name: "appointments_type_enum", Values: []string{
			"CONSULTATION", "VACCINATION", "SURGERY", "CHECKUP",
			"EMERGENCY", "FOLLOW_UP", "GROOMING",
		}},
		ddl.CreateEnum{Name: "prescriptions_frequency_enum", Values: []string{
			"ONCE_DAILY", "TWICE_DAILY", "THREE_TIMES_DAILY", "FOUR_TIMES_DAILY",
			"EVERY_OTHER_DAY", "WEEKLY", "AS_NEEDED",
		}},
		ddl.CreateEnum{Name: "prescriptions_status_enum", Values: []string{
			"ACTIVE", "COMPLETED", "DISCONTINUED", "SUSPENDED",
		}},

		table("users", append([]ddl.Column{
			unique(required("email", "varchar(255)")),
			required("password", "varchar(255)"),
			required("first_name", "varchar(100)"),
			required("last_name", "varchar(100)"),
			col("phone", "varchar(20)"),
			withDefault(required("role", "users_role_enum"), "'CLIENT'"),
			withDefault(required("is_active", "boolean"), "true"),
			withDefault(required("is_verified", "boolean"), "false"),
		}, timestamps()...)),

		table("clients", append([]ddl.Column{
			unique(required("user_id", "uuid")),
			col("address", "text"),
			col("emergency_contact", "varchar(100)"),
			col("emergency_phone", "varchar(20)"),
		}, timestamps()...),
			fk("clients", "user_id", "users", ddl.Cascade)),

		table("veterinarians", append([]ddl.Column{
			unique(required("user_id", "uuid")),
			unique(required("license_number", "varchar(50)")),
			col("specialization", "varchar(100)"),
			withDefault(required("years_of_experience", "integer"), "0"),
		}, timestamps()...),
			fk("veterinarians", "user_id", "users", ddl.Cascade)),

		table("pets", append([]ddl.Column{
			required("client_id", "uuid"),
			required("name", "varchar(100)"),
			required("species", "pets_species_enum"),
			col("breed", "varchar(100)"),
			withDefault(required("gender", "pets_gender_enum"), "'UNKNOWN'"),
			col("birth_date", "date"),
			col("weight", "numeric(5,2)"),
			col("color", "varchar(50)"),
			unique(col("microchip_id", "varchar(50)")),
			col("allergies", "text"),
			col("medical_notes", "text"),
			withDefault(required("is_active", "boolean"), "true"),
		}, timestamps()...),
			fk("pets", "client_id", "clients", ddl.Cascade)),

		table("appointments", append([]ddl.Column{
			required("pet_id", "uuid"),
			required("veterinarian_id", "uuid"),
			required("date_time", "timestamp"),
			withDefault(required("duration", "integer"), "30"),
			withDefault(required("status", "appointments_status_enum"), "'SCHEDULED'"),
			withDefault(required("type", "appointments_type_enum"), "'CONSULTATION'"),
			col("reason", "text"),
			col("notes", "text"),
		}, timestamps()...),
			fk("appointments", "pet_id", "pets", ddl.Cascade),
			fk("appointments", "veterinarian_id", "veterinarians", ddl.Cascade)),

		table("medical_records", append([]ddl.Column{
			unique(required("appointment_id", "uuid")),
			col("diagnosis", "text"),
			col("symptoms", "text"),
			col("treatment", "text"),
			col("notes", "text"),
			col("weight", "numeric(5,2)"),
			col("temperature", "numeric(4,1)"),
			col("heart_rate", "integer"),
			col("follow_up_date", "date"),
		}, timestamps()...),
			fk("medical_records", "appointment_id", "appointments", ddl.Cascade)),

		table("prescriptions", append([]ddl.Column{
			required("medical_record_id", "uuid"),
			required("medication_name", "varchar(255)"),
			required("dosage", "varchar(100)"),
			required("frequency", "prescriptions_frequency_enum"),
			col("duration", "varchar(100)"),
			col("instructions", "text"),
			withDefault(required("status", "prescriptions_status_enum"), "'ACTIVE'"),
			required("start_date", "date"),
			col("end_date", "date"),
		}, timestamps()...),
			fk("prescriptions", "medical_record_id", "medical_records", ddl.Cascade)),

		table("vaccinations", append([]ddl.Column{
			required("pet_id", "uuid"),
			required("veterinarian_id", "uuid"),
			required("vaccine_name", "varchar(255)"),
			col("batch_number", "varchar(100)"),
			required("administration_date", "date"),
			col("expiration_date", "date"),
			col("next_due_date", "date"),
			col("notes", "text"),
		}, timestamps()...),
			fk("vaccinations", "pet_id", "pets", ddl.Cascade),
			fk("vaccinations", "veterinarian_id", "veterinarians", ddl.Restrict)),

		idx("pets", "client_id"),
		idx("appointments", "pet_id"),
		idx("appointments", "veterinarian_id"),
		idx("prescriptions", "medical_record_id"),
		idx("vaccinations", "pet_id"),
	}
}

func initialSchema() migration.Unit {
	return migration.New("1712000000000-InitialSchema",
		func(ctx context.Context, c migration.Conn) error {
			if err := c.Apply(ctx, ddl.CreateExtension{Name: "pgcrypto"}); err != nil {
				return err
			}
			return create(ctx, c, initialObjects()...)
		},
		func(ctx context.Context, c migration.Conn) error {
			return drop(ctx, c, initialObjects()...)
		},
	)
}

func aiDiagnosesObjects() []ddl.Statement {
	return []ddl.Statement{
		ddl.CreateEnum{Name: "ai_diagnoses_status_enum", Values: []string{
			"PENDING", "PROCESSING", "COMPLETED", "FAILED",
		}},
		table("ai_diagnoses", append([]ddl.Column{
			required("pet_id", "uuid"),
			col("appointment_id", "uuid"),
			col("symptoms", "text"),
			col("image_url", "varchar(500)"),
			col("result", "jsonb"),
			col("confidence_score", "numeric(5,4)"),
			withDefault(required("status", "ai_diagnoses_status_enum"), "'PENDING'"),
			col("error_message", "text"),
		}, timestamps()...),
			fk("ai_diagnoses", "pet_id", "pets", ddl.Cascade),
			fk("ai_diagnoses", "appointment_id", "appointments", ddl.SetNull)),
		idx("ai_diagnoses", "pet_id"),
	}
}

func addAIDiagnoses() migration.Unit {
	return migration.New("1712100000000-AddAIDiagnoses",
		func(ctx context.Context, c migration.Conn) error {
			return create(ctx, c, aiDiagnosesObjects()...)
		},
		func(ctx context.Context, c migration.Conn) error {
			return drop(ctx, c, aiDiagnosesObjects()...)
		},
	)
}

func attachmentsObjects() []ddl.Statement {
	return []ddl.Statement{
		table("attachments", []ddl.Column{
			required("medical_record_id", "uuid"),
			required("file_name", "varchar(255)"),
			required("file_url", "varchar(500)"),
			col("mime_type", "varchar(100)"),
			col("file_size", "integer"),
			col("description", "text"),
			ts("uploaded_at"),
		},
			fk("attachments", "medical_record_id", "medical_records", ddl.Cascade)),
		idx("attachments", "medical_record_id"),

		ddl.CreateEnum{Name: "notifications_type_enum", Values: []string{
			"APPOINTMENT_REMINDER", "APPOINTMENT_CONFIRMED", "APPOINTMENT_CANCELLED",
			"VACCINATION_DUE", "PRESCRIPTION_REFILL", "DIAGNOSIS_READY", "SYSTEM",
		}},
		ddl.CreateEnum{Name: "notifications_priority_enum", Values: []string{
			"LOW", "MEDIUM", "HIGH",
		}},
		table("notifications", []ddl.Column{
			required("user_id", "uuid"),
			required("type", "notifications_type_enum"),
			withDefault(required("priority", "notifications_priority_enum"), "'MEDIUM'"),
			required("title", "varchar(255)"),
			required("message", "text"),
			withDefault(required("is_read", "boolean"), "false"),
			col("data", "jsonb"),
			col("read_at", "timestamp"),
			ts("created_at"),
		},
			fk("notifications", "user_id", "users", ddl.Cascade)),
		idx("notifications", "user_id", "is_read"),
	}
}

func addAttachmentsAndNotifications() migration.Unit {
	return migration.New("1712200000000-AddAttachmentsAndNotifications",
		func(ctx context.Context, c migration.Conn) error {
			return create(ctx, c, attachmentsObjects()...)
		},
		func(ctx context.Context, c migration.Conn) error {
			return drop(ctx, c, attachmentsObjects()...)
		},
	)
}

func renameAppointmentDateTime() migration.Unit {
	scheduled := idx("appointments", "scheduled_at")
	return migration.New("1712300000000-RenameAppointmentDateTime",
		func(ctx context.Context, c migration.Conn) error {
			_, err := migration.RenameColumn(ctx, c, "appointments", "date_time", "scheduled_at")
			if err != nil {
				return err
			}
			_, err = migration.EnsureIndex(ctx, c, scheduled)
			return err
		},
		func(ctx context.Context, c migration.Conn) error {
			_, err := migration.DropIndexIfExists(ctx, c, scheduled.Name)
			if err != nil {
				return err
			}
			_, err = migration.RenameColumn(ctx, c, "appointments", "scheduled_at", "date_time")
			return err
		},
	)
}

// Duration values that are not plain numbers fall back to 30 minutes on
// revert.
func changeAppointmentDurationToText() migration.Unit {
	toText := ddl.AlterColumnType{
		Table:   "appointments",
		Column:  "duration",
		Type:    "varchar(50)",
		Using:   `"duration"::varchar(50)`,
		Default: "'30'",
	}
	toInteger := ddl.AlterColumnType{
		Table:   "appointments",
		Column:  "duration",
		Type:    "integer",
		Using:   `CASE WHEN "duration" ~ '^[0-9]+$' THEN "duration"::integer ELSE 30 END`,
		Default: "30",
	}
	return migration.New("1712400000000-ChangeAppointmentDurationToText",
		func(ctx context.Context, c migration.Conn) error {
			_, err := migration.AlterColumnTypeIf(ctx, c, toText, migration.IsIntegerType)
			return err
		},
		func(ctx context.Context, c migration.Conn) error {
			_, err := migration.AlterColumnTypeIf(ctx, c, toInteger, migration.IsTextType)
			return err
		},
	)
}

// backfillPetID copies pet_id from the appointment of each medical
// record. Rows that already have a pet are skipped, so the statement can
// run again.
const backfillPetID = `UPDATE "medical_records" mr
SET "pet_id" = a."pet_id"
FROM "appointments" a
WHERE mr."appointment_id" = a."id" AND mr."pet_id" IS NULL;`

func addPetToMedicalRecords() migration.Unit {
	petFK := ddl.AddForeignKey{
		Table: "medical_records",
		Key:   fk("medical_records", "pet_id", "pets", ddl.Cascade),
	}
	petIdx := idx("medical_records", "pet_id")
	return migration.New("1712500000000-AddPetToMedicalRecords",
		func(ctx context.Context, c migration.Conn) error {
			return migration.Steps(ctx, c,
				func(ctx context.Context, c migration.Conn) error {
					_, err := migration.EnsureColumn(ctx, c, "medical_records", col("pet_id", "uuid"))
					return err
				},
				func(ctx context.Context, c migration.Conn) error {
					return c.Apply(ctx, ddl.Exec{Query: backfillPetID})
				},
				migration.Guard(migration.EnsureForeignKey, petFK),
				migration.Guard(migration.EnsureIndex, petIdx),
			)
		},
		func(ctx context.Context, c migration.Conn) error {
			_, err := migration.DropIndexIfExists(ctx, c, petIdx.Name)
			if err != nil {
				return err
			}
			_, err = migration.DropConstraintIfExists(ctx, c, petFK.Table, petFK.Key.Name)
			if err != nil {
				return err
			}
			_, err = migration.DropColumnIfExists(ctx, c, "medical_records", "pet_id")
			return err
		},
	)
}

func addVeterinarianAvailability() migration.Unit {
	cols := []ddl.Column{
		col("availability", "jsonb"),
		col("consultation_fee", "numeric(10,2)"),
	}
	return migration.New("1712600000000-AddVeterinarianAvailability",
		func(ctx context.Context, c migration.Conn) error {
			for _, v := range cols {
				if _, err := migration.EnsureColumn(ctx, c, "veterinarians", v); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, c migration.Conn) error {
			for _, v := range cols {
				_, err := migration.DropColumnIfExists(ctx, c, "veterinarians", v.Name)
				if err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// PostgreSQL cannot remove a value from an enumerated type. The revert
// moves MISSED appointments to CANCELLED and keeps the value.
const unmarkMissed = `UPDATE "appointments"
SET "status" = 'CANCELLED'
WHERE "status" = 'MISSED';`

func addAppointmentPriorityAndMissedStatus() migration.Unit {
	priority := ddl.CreateEnum{
		Name:   "appointments_priority_enum",
		Values: []string{"LOW", "NORMAL", "HIGH", "URGENT"},
	}
	priorityCol := withDefault(required("priority", priority.Name), "'NORMAL'")
	missed := ddl.AddEnumValue{Enum: "appointments_status_enum", Value: "MISSED"}

	return migration.New("1712700000000-AddAppointmentPriorityAndMissedStatus",
		func(ctx context.Context, c migration.Conn) error {
			return migration.Steps(ctx, c,
				migration.Guard(migration.EnsureEnumValue, missed),
				migration.Guard(migration.EnsureEnum, priority),
				func(ctx context.Context, c migration.Conn) error {
					_, err := migration.EnsureColumn(ctx, c, "appointments", priorityCol)
					return err
				},
			)
		},
		func(ctx context.Context, c migration.Conn) error {
			_, err := migration.DropColumnIfExists(ctx, c, "appointments", priorityCol.Name)
			if err != nil {
				return err
			}
			if _, err = migration.DropEnumIfExists(ctx, c, priority.Name); err != nil {
				return err
			}
			if ok, err := c.TableExists(ctx, "appointments"); err != nil || !ok {
				return err
			}
			return c.Apply(ctx, ddl.Exec{Query: unmarkMissed})
		},
		migration.NoTransaction(),
	)
}
