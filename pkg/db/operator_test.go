package db_test

import (
	"testing"

	"github.com/vetcare/vetdb/internal/iodb"
	"github.com/vetcare/vetdb/pkg/db"
)

// TestPgxOperatorImplementsInterface verifies that the pgx operator
// implements the db.Operator interface.
func TestPgxOperatorImplementsInterface(t *testing.T) {
	var _ db.Operator = iodb.NewPgxOperator()
}
