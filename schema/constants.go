package schema

// Custom string types for type safety.
type (
	// OutputFormat represents the format of the report output.
	OutputFormat string

	// SourceKind represents where project snapshots come from.
	SourceKind string

	// DatabaseBackend represents the database backend for the snapshot cache.
	DatabaseBackend string
)

// All output formats supported.
const (
	CSVOut     OutputFormat = "csv" // default
	JSONOut    OutputFormat = "json"
	ParquetOut OutputFormat = "parquet"
	TextOut    OutputFormat = "text"
)

// All snapshot sources supported.
const (
	DTrackSource SourceKind = "dtrack" // default
	CacheSource  SourceKind = "cache"
	FileSource   SourceKind = "file"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// ValidOutputFormats lists all valid output formats.
var ValidOutputFormats = map[OutputFormat]struct{}{
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
	TextOut:    {},
}

// ValidSourceKinds lists all valid snapshot sources.
var ValidSourceKinds = map[SourceKind]struct{}{
	DTrackSource: {},
	CacheSource:  {},
	FileSource:   {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
