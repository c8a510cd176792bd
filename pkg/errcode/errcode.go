package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	ConfigLoadError
	ConfigBoolValueError
	DeployFlagsError
	CLIArgumentError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError

	// Catalog errors
	CatalogIntrospectionError
	CatalogDDLError
	CatalogInspectError
	CatalogRowCountError

	// Schema errors
	SchemaGORMConnectionError
	SchemaModelDriftError

	// Migration errors
	MigrationNameError
	MigrationDuplicateError
	MigrationUnknownError
	MigrationApplyError
	MigrationRevertError
	MigrationNoDownError

	// Ledger errors
	LedgerInitError
	LedgerReadError
	LedgerWriteError

	// Validation errors
	ValidationMissingUnitError
	ValidationMarkersError

	// Seed errors
	SeedFixtureError
	SeedInsertError

	// Metrics errors
	MetricsWriteError
)
