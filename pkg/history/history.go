// Package history is the migration history of the vetdb schema.
//
// Units are frozen: each one carries its own statements instead of
// reading the current models, so applying the history always walks the
// same path. The standalone Recreate unit builds the current schema from
// scratch and is used on the first deploy instead of replaying history.
package history

import (
	"github.com/vetcare/vetdb/pkg/migration"
	"github.com/vetcare/vetdb/pkg/schema"
)

// BootstrapName is the name of the unit that recreates the full schema.
const BootstrapName = "1712800000000-RecreateFullSchema"

// Units returns the incremental history in ascending order.
func Units() []migration.Unit {
	return []migration.Unit{
		initialSchema(),
		addAIDiagnoses(),
		addAttachmentsAndNotifications(),
		renameAppointmentDateTime(),
		changeAppointmentDurationToText(),
		addPetToMedicalRecords(),
		addVeterinarianAvailability(),
		addAppointmentPriorityAndMissedStatus(),
	}
}

// Recreate returns the unit that drops and recreates every index, table
// and type of the schema. It has no down path.
func Recreate() migration.Unit {
	return migration.FromScript(BootstrapName, schema.RecreateScript(), nil)
}

// Registry returns the history with Recreate registered as a standalone
// unit.
func Registry() (*migration.Registry, error) {
	return migration.NewRegistry(Units(), Recreate())
}
