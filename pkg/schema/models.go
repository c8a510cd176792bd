// Package schema describes the converged vetdb schema: the entities of
// the clinic, their enumerated types, tables and indexes.
//
// Models carry two kinds of tags. GORM uses field names for column
// names. The `db` and `ddl` tags drive DDL generation, `fk` declares a
// foreign key as "<table> <on-delete action>".
package schema

import (
	"time"

	"github.com/google/uuid"
)

// Model is a table of the schema.
type Model interface {
	// TableName returns the PostgreSQL table name.
	TableName() string

	// Indexes returns secondary indexes of the table.
	Indexes() []Index
}

// Index is a named secondary index.
type Index struct {
	Name    string
	Columns []string
}

// User is an account of a client, a veterinarian or an administrator.
type User struct {
	ID         uuid.UUID `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	Email      string    `db:"email" ddl:"varchar(255) notnull unique"`
	Password   string    `db:"password" ddl:"varchar(255) notnull"`
	FirstName  string    `db:"first_name" ddl:"varchar(100) notnull"`
	LastName   string    `db:"last_name" ddl:"varchar(100) notnull"`
	Phone      *string   `db:"phone" ddl:"varchar(20)"`
	Role       Role      `db:"role" ddl:"users_role_enum notnull default='CLIENT'"`
	IsActive   bool      `db:"is_active" ddl:"boolean notnull default=true"`
	IsVerified bool      `db:"is_verified" ddl:"boolean notnull default=false"`
	CreatedAt  time.Time `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt  time.Time `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// Client extends a User with the CLIENT role. A client owns pets.
type Client struct {
	ID               uuid.UUID `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	UserID           uuid.UUID `db:"user_id" ddl:"uuid notnull unique" fk:"users cascade"`
	Address          *string   `db:"address" ddl:"text"`
	EmergencyContact *string   `db:"emergency_contact" ddl:"varchar(100)"`
	EmergencyPhone   *string   `db:"emergency_phone" ddl:"varchar(20)"`
	CreatedAt        time.Time `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt        time.Time `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// Veterinarian extends a User with the VET role.
type Veterinarian struct {
	ID                uuid.UUID    `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	UserID            uuid.UUID    `db:"user_id" ddl:"uuid notnull unique" fk:"users cascade"`
	LicenseNumber     string       `db:"license_number" ddl:"varchar(50) notnull unique"`
	Specialization    *string      `db:"specialization" ddl:"varchar(100)"`
	YearsOfExperience int          `db:"years_of_experience" ddl:"integer notnull default=0"`
	Availability      Availability `db:"availability" ddl:"jsonb"`
	ConsultationFee   *float64     `db:"consultation_fee" ddl:"numeric(10,2)"`
	CreatedAt         time.Time    `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt         time.Time    `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// Pet belongs to exactly one client.
type Pet struct {
	ID           uuid.UUID  `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	ClientID     uuid.UUID  `db:"client_id" ddl:"uuid notnull" fk:"clients cascade"`
	Name         string     `db:"name" ddl:"varchar(100) notnull"`
	Species      Species    `db:"species" ddl:"pets_species_enum notnull"`
	Breed        *string    `db:"breed" ddl:"varchar(100)"`
	Gender       Gender     `db:"gender" ddl:"pets_gender_enum notnull default='UNKNOWN'"`
	BirthDate    *time.Time `db:"birth_date" ddl:"date"`
	Weight       *float64   `db:"weight" ddl:"numeric(5,2)"`
	Color        *string    `db:"color" ddl:"varchar(50)"`
	MicrochipID  *string    `db:"microchip_id" ddl:"varchar(50) unique"`
	Allergies    *string    `db:"allergies" ddl:"text"`
	MedicalNotes *string    `db:"medical_notes" ddl:"text"`
	IsActive     bool       `db:"is_active" ddl:"boolean notnull default=true"`
	CreatedAt    time.Time  `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt    time.Time  `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// Appointment is a visit of a pet to a veterinarian. Duration is free
// text ("30", "1h", "45 min").
type Appointment struct {
	ID             uuid.UUID           `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	PetID          uuid.UUID           `db:"pet_id" ddl:"uuid notnull" fk:"pets cascade"`
	VeterinarianID uuid.UUID           `db:"veterinarian_id" ddl:"uuid notnull" fk:"veterinarians cascade"`
	ScheduledAt    time.Time           `db:"scheduled_at" ddl:"timestamp notnull"`
	Duration       string              `db:"duration" ddl:"varchar(50) notnull default='30'"`
	Status         AppointmentStatus   `db:"status" ddl:"appointments_status_enum notnull default='SCHEDULED'"`
	Type           AppointmentType     `db:"type" ddl:"appointments_type_enum notnull default='CONSULTATION'"`
	Priority       AppointmentPriority `db:"priority" ddl:"appointments_priority_enum notnull default='NORMAL'"`
	Reason         *string             `db:"reason" ddl:"text"`
	Notes          *string             `db:"notes" ddl:"text"`
	CreatedAt      time.Time           `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt      time.Time           `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// MedicalRecord holds clinical observations of one appointment.
type MedicalRecord struct {
	ID            uuid.UUID  `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	AppointmentID uuid.UUID  `db:"appointment_id" ddl:"uuid notnull unique" fk:"appointments cascade"`
	PetID         *uuid.UUID `db:"pet_id" ddl:"uuid" fk:"pets cascade"`
	Diagnosis     *string    `db:"diagnosis" ddl:"text"`
	Symptoms      *string    `db:"symptoms" ddl:"text"`
	Treatment     *string    `db:"treatment" ddl:"text"`
	Notes         *string    `db:"notes" ddl:"text"`
	Weight        *float64   `db:"weight" ddl:"numeric(5,2)"`
	Temperature   *float64   `db:"temperature" ddl:"numeric(4,1)"`
	HeartRate     *int       `db:"heart_rate" ddl:"integer"`
	FollowUpDate  *time.Time `db:"follow_up_date" ddl:"date"`
	CreatedAt     time.Time  `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt     time.Time  `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// Prescription belongs to one medical record.
type Prescription struct {
	ID              uuid.UUID          `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	MedicalRecordID uuid.UUID          `db:"medical_record_id" ddl:"uuid notnull" fk:"medical_records cascade"`
	MedicationName  string             `db:"medication_name" ddl:"varchar(255) notnull"`
	Dosage          string             `db:"dosage" ddl:"varchar(100) notnull"`
	Frequency       Frequency          `db:"frequency" ddl:"prescriptions_frequency_enum notnull"`
	Duration        *string            `db:"duration" ddl:"varchar(100)"`
	Instructions    *string            `db:"instructions" ddl:"text"`
	Status          PrescriptionStatus `db:"status" ddl:"prescriptions_status_enum notnull default='ACTIVE'"`
	StartDate       time.Time          `db:"start_date" ddl:"date notnull"`
	EndDate         *time.Time         `db:"end_date" ddl:"date"`
	CreatedAt       time.Time          `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt       time.Time          `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// Vaccination of a pet administered by a veterinarian. A veterinarian
// with vaccination records cannot be deleted.
type Vaccination struct {
	ID                 uuid.UUID  `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	PetID              uuid.UUID  `db:"pet_id" ddl:"uuid notnull" fk:"pets cascade"`
	VeterinarianID     uuid.UUID  `db:"veterinarian_id" ddl:"uuid notnull" fk:"veterinarians restrict"`
	VaccineName        string     `db:"vaccine_name" ddl:"varchar(255) notnull"`
	BatchNumber        *string    `db:"batch_number" ddl:"varchar(100)"`
	AdministrationDate time.Time  `db:"administration_date" ddl:"date notnull"`
	ExpirationDate     *time.Time `db:"expiration_date" ddl:"date"`
	NextDueDate        *time.Time `db:"next_due_date" ddl:"date"`
	Notes              *string    `db:"notes" ddl:"text"`
	CreatedAt          time.Time  `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt          time.Time  `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// AIDiagnosis is a pre-diagnosis request and its result. Deleting the
// appointment keeps the diagnosis.
type AIDiagnosis struct {
	ID              uuid.UUID       `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	PetID           uuid.UUID       `db:"pet_id" ddl:"uuid notnull" fk:"pets cascade"`
	AppointmentID   *uuid.UUID      `db:"appointment_id" ddl:"uuid" fk:"appointments setnull"`
	Symptoms        *string         `db:"symptoms" ddl:"text"`
	ImageURL        *string         `db:"image_url" ddl:"varchar(500)"`
	Result          Payload         `db:"result" ddl:"jsonb"`
	ConfidenceScore *float64        `db:"confidence_score" ddl:"numeric(5,4)"`
	Status          DiagnosisStatus `db:"status" ddl:"ai_diagnoses_status_enum notnull default='PENDING'"`
	ErrorMessage    *string         `db:"error_message" ddl:"text"`
	CreatedAt       time.Time       `db:"created_at" ddl:"timestamp notnull default=now()"`
	UpdatedAt       time.Time       `db:"updated_at" ddl:"timestamp notnull default=now()"`
}

// Attachment is a file attached to a medical record.
type Attachment struct {
	ID              uuid.UUID `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	MedicalRecordID uuid.UUID `db:"medical_record_id" ddl:"uuid notnull" fk:"medical_records cascade"`
	FileName        string    `db:"file_name" ddl:"varchar(255) notnull"`
	FileURL         string    `db:"file_url" ddl:"varchar(500) notnull"`
	MimeType        *string   `db:"mime_type" ddl:"varchar(100)"`
	FileSize        *int      `db:"file_size" ddl:"integer"`
	Description     *string   `db:"description" ddl:"text"`
	UploadedAt      time.Time `db:"uploaded_at" ddl:"timestamp notnull default=now()"`
}

// Notification is a message to a user.
type Notification struct {
	ID        uuid.UUID            `db:"id" ddl:"uuid pk default=gen_random_uuid()"`
	UserID    uuid.UUID            `db:"user_id" ddl:"uuid notnull" fk:"users cascade"`
	Type      NotificationType     `db:"type" ddl:"notifications_type_enum notnull"`
	Priority  NotificationPriority `db:"priority" ddl:"notifications_priority_enum notnull default='MEDIUM'"`
	Title     string               `db:"title" ddl:"varchar(255) notnull"`
	Message   string               `db:"message" ddl:"text notnull"`
	IsRead    bool                 `db:"is_read" ddl:"boolean notnull default=false"`
	Data      Payload              `db:"data" ddl:"jsonb"`
	ReadAt    *time.Time           `db:"read_at" ddl:"timestamp"`
	CreatedAt time.Time            `db:"created_at" ddl:"timestamp notnull default=now()"`
}
