package lifecycle_test

import (
	"testing"

	"github.com/vetcare/vetdb/internal/iolock"
	"github.com/vetcare/vetdb/internal/ioschema"
	"github.com/vetcare/vetdb/internal/ioseed"
	"github.com/vetcare/vetdb/pkg/lifecycle"
)

// TestContracts ensures that the internal implementations satisfy the
// lifecycle interfaces. This is a compile-time check.
func TestContracts(t *testing.T) {
	var _ lifecycle.SchemaManager = (*ioschema.Manager)(nil)
	var _ lifecycle.Seeder = (*ioseed.Seeder)(nil)
	var _ lifecycle.Locker = iolock.NewNoop()
}
