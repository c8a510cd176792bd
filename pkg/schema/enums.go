package schema

import "github.com/vetcare/vetdb/pkg/ddl"

// Role of a user account.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleVet    Role = "VET"
	RoleAdmin  Role = "ADMIN"
)

// Species of a pet.
type Species string

const (
	SpeciesDog     Species = "DOG"
	SpeciesCat     Species = "CAT"
	SpeciesBird    Species = "BIRD"
	SpeciesRabbit  Species = "RABBIT"
	SpeciesHamster Species = "HAMSTER"
	SpeciesFish    Species = "FISH"
	SpeciesReptile Species = "REPTILE"
	SpeciesOther   Species = "OTHER"
)

// Gender of a pet.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusMissed     AppointmentStatus = "MISSED"
)

// AppointmentType is the purpose of a visit.
type AppointmentType string

const (
	TypeConsultation AppointmentType = "CONSULTATION"
	TypeVaccination  AppointmentType = "VACCINATION"
	TypeSurgery      AppointmentType = "SURGERY"
	TypeCheckup      AppointmentType = "CHECKUP"
	TypeEmergency    AppointmentType = "EMERGENCY"
	TypeFollowUp     AppointmentType = "FOLLOW_UP"
	TypeGrooming     AppointmentType = "GROOMING"
)

// AppointmentPriority orders the waiting list.
type AppointmentPriority string

const (
	PriorityLow    AppointmentPriority = "LOW"
	PriorityNormal AppointmentPriority = "NORMAL"
	PriorityHigh   AppointmentPriority = "HIGH"
	PriorityUrgent AppointmentPriority = "URGENT"
)

// Frequency of a prescribed medication.
type Frequency string

const (
	OnceDaily       Frequency = "ONCE_DAILY"
	TwiceDaily      Frequency = "TWICE_DAILY"
	ThreeTimesDaily Frequency = "THREE_TIMES_DAILY"
	FourTimesDaily  Frequency = "FOUR_TIMES_DAILY"
	EveryOtherDay   Frequency = "EVERY_OTHER_DAY"
	Weekly          Frequency = "WEEKLY"
	AsNeeded        Frequency = "AS_NEEDED"
)

// PrescriptionStatus is the state of a prescription.
type PrescriptionStatus string

const (
	PrescriptionActive       PrescriptionStatus = "ACTIVE"
	PrescriptionCompleted    PrescriptionStatus = "COMPLETED"
	PrescriptionDiscontinued PrescriptionStatus = "DISCONTINUED"
	PrescriptionSuspended    PrescriptionStatus = "SUSPENDED"
)

// DiagnosisStatus is the state of an AI pre-diagnosis request.
type DiagnosisStatus string

const (
	DiagnosisPending    DiagnosisStatus = "PENDING"
	DiagnosisProcessing DiagnosisStatus = "PROCESSING"
	DiagnosisCompleted  DiagnosisStatus = "COMPLETED"
	DiagnosisFailed     DiagnosisStatus = "FAILED"
)

// NotificationType classifies notifications.
type NotificationType string

const (
	NotifyAppointmentReminder  NotificationType = "APPOINTMENT_REMINDER"
	NotifyAppointmentConfirmed NotificationType = "APPOINTMENT_CONFIRMED"
	NotifyAppointmentCancelled NotificationType = "APPOINTMENT_CANCELLED"
	NotifyVaccinationDue       NotificationType = "VACCINATION_DUE"
	NotifyPrescriptionRefill   NotificationType = "PRESCRIPTION_REFILL"
	NotifyDiagnosisReady       NotificationType = "DIAGNOSIS_READY"
	NotifySystem               NotificationType = "SYSTEM"
)

// NotificationPriority of a notification.
type NotificationPriority string

const (
	NotifyLow    NotificationPriority = "LOW"
	NotifyMedium NotificationPriority = "MEDIUM"
	NotifyHigh   NotificationPriority = "HIGH"
)

func values[T ~string](vals ...T) []string {
	res := make([]string, len(vals))
	for i, v := range vals {
		res[i] = string(v)
	}
	return res
}

// Enums returns the enumerated types of the schema. Value order is the
// order PostgreSQL keeps after the whole history is applied.
func Enums() []ddl.CreateEnum {
	return []ddl.CreateEnum{
		{Name: "users_role_enum", Values: values(RoleClient, RoleVet, RoleAdmin)},
		{Name: "pets_species_enum", Values: values(
			SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit,
			SpeciesHamster, SpeciesFish, SpeciesReptile, SpeciesOther,
		)},
		{Name: "pets_gender_enum", Values: values(
			GenderMale, GenderFemale, GenderUnknown,
		)},
		{Name: "appointments_status_enum", Values: values(
			StatusScheduled, StatusConfirmed, StatusInProgress,
			StatusCompleted, StatusCancelled, StatusMissed,
		)},
		{Name: "appointments_type_enum", Values: values(
			TypeConsultation, TypeVaccination, TypeSurgery, TypeCheckup,
			TypeEmergency, TypeFollowUp, TypeGrooming,
		)},
		{Name: "appointments_priority_enum", Values: values(
			PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent,
		)},
		{Name: "prescriptions_frequency_enum", Values: values(
			OnceDaily, TwiceDaily, ThreeTimesDaily, FourTimesDaily,
			EveryOtherDay, Weekly, AsNeeded,
		)},
		{Name: "prescriptions_status_enum", Values: values(
			PrescriptionActive, PrescriptionCompleted,
			PrescriptionDiscontinued, PrescriptionSuspended,
		)},
		{Name: "ai_diagnoses_status_enum", Values: values(
			DiagnosisPending, DiagnosisProcessing,
			DiagnosisCompleted, DiagnosisFailed,
		)},
		{Name: "notifications_type_enum", Values: values(
			NotifyAppointmentReminder, NotifyAppointmentConfirmed,
			NotifyAppointmentCancelled, NotifyVaccinationDue,
			NotifyPrescriptionRefill, NotifyDiagnosisReady, NotifySystem,
		)},
		{Name: "notifications_priority_enum", Values: values(
			NotifyLow, NotifyMedium, NotifyHigh,
		)},
	}
}

// EnumValues returns values of the named enumerated type, or nil if
// there is no such type.
func EnumValues(name string) []string {
	for _, v := range Enums() {
		if v.Name == name {
			return v.Values
		}
	}
	return nil
}
