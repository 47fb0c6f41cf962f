// Package iocache caches fetched project snapshots in a SQL database.
package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
	"github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// snapshotTable is the name of the table holding cached snapshots.
const snapshotTable = "project_snapshots"

// snapshotColumns lists the stored columns in insert and select order.
var snapshotColumns = []string{
	"snapshot_key", "project_uuid", "project_name", "project_version", "imported_at",
	"risk_score", "critical", "high", "medium", "low", "unassigned", "fetched_at",
}

// SnapshotStoreImpl handles durable snapshot storage on the supported database backends.
type SnapshotStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// openDatabase opens (but does not ping) the database for the backend.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		// user:password@tcp(host:port)/dbname
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// NewSnapshotStore opens the cache database for the backend and migrates its schema to the latest version.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled caching
		return &SnapshotStoreImpl{backend: backend, connStr: connStr}, nil
	}

	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SnapshotStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// snapshotKey identifies a snapshot by project UUID, falling back to name and version.
func snapshotKey(s schema.ProjectSnapshot) string {
	if s.UUID != "" {
		return s.UUID
	}
	return s.Name + "@" + s.Version
}

// placeholders returns n parameter placeholders for the backend.
func (ss *SnapshotStoreImpl) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if ss.backend == schema.PostgreSQLBackend {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ss *SnapshotStoreImpl) getUpsertQuery() string {
	table := quoteTableName(snapshotTable, ss.backend)
	columns := strings.Join(snapshotColumns, ", ")
	values := ss.placeholders(len(snapshotColumns))
	updates := snapshotColumns[1:]

	switch ss.backend {
	case schema.MySQLBackend:
		sets := make([]string, len(updates))
		for i, c := range updates {
			sets[i] = fmt.Sprintf("%s = new.%s", c, c)
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) AS new ON DUPLICATE KEY UPDATE %s",
			table, columns, values, strings.Join(sets, ", "))

	case schema.PostgreSQLBackend:
		sets := make([]string, len(updates))
		for i, c := range updates {
			sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (snapshot_key) DO UPDATE SET %s",
			table, columns, values, strings.Join(sets, ", "))

	default: // SQLite
		return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", table, columns, values)
	}
}

// SaveSnapshots upserts the snapshots in a single transaction.
func (ss *SnapshotStoreImpl) SaveSnapshots(snapshots []schema.ProjectSnapshot, fetchedAt time.Time) error {
	if ss.backend == schema.NoneBackend || ss.db == nil || len(snapshots) == 0 {
		return nil
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(ss.getUpsertQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range snapshots {
		var importedAt sql.NullString
		if s.HasImport() {
			importedAt = sql.NullString{String: s.ImportedAt.Format(time.RFC3339Nano), Valid: true}
		}
		m := s.Metrics
		if _, err := stmt.Exec(snapshotKey(s), s.UUID, s.Name, s.Version, importedAt,
			m.RiskScore, m.Critical, m.High, m.Medium, m.Low, m.Unassigned, fetchedAt.Unix()); err != nil {
			return fmt.Errorf("failed to store snapshot %s: %w", snapshotKey(s), err)
		}
	}
	return tx.Commit()
}

// LoadSnapshots returns every cached snapshot ordered by project name and version.
func (ss *SnapshotStoreImpl) LoadSnapshots() ([]schema.ProjectSnapshot, error) {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY project_name, project_version, snapshot_key",
		strings.Join(snapshotColumns[1:len(snapshotColumns)-1], ", "), quoteTableName(snapshotTable, ss.backend))
	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []schema.ProjectSnapshot
	for rows.Next() {
		var s schema.ProjectSnapshot
		var importedAt sql.NullString
		if err := rows.Scan(&s.UUID, &s.Name, &s.Version, &importedAt,
			&s.Metrics.RiskScore, &s.Metrics.Critical, &s.Metrics.High,
			&s.Metrics.Medium, &s.Metrics.Low, &s.Metrics.Unassigned); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if importedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, importedAt.String)
			if err != nil {
				return nil, fmt.Errorf("invalid cached import time for %s: %w", s.Name, err)
			}
			s.ImportedAt = &t
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Close closes the underlying DB connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot cache.
func (ss *SnapshotStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return status, nil
	}

	table := quoteTableName(snapshotTable, ss.backend)

	row := ss.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT project_name) FROM %s", table))
	if err := row.Scan(&status.TotalSnapshots, &status.DistinctProjects); err != nil {
		return status, fmt.Errorf("failed to get total snapshots: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row = ss.db.QueryRow(fmt.Sprintf("SELECT MAX(fetched_at), MIN(fetched_at) FROM %s", table))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get fetch times: %w", err)
	}
	status.LastFetchTime = time.Unix(lastTs, 0)
	status.OldestFetchTime = time.Unix(oldestTs, 0)

	status.TableSizeBytes = ss.tableSize(int64(status.TotalSnapshots))
	return status, nil
}

// tableSize asks the backend for the table size, falling back to a rough per-row estimate.
func (ss *SnapshotStoreImpl) tableSize(rows int64) int64 {
	estimate := rows * 200
	var size int64

	switch ss.backend {
	case schema.SQLiteBackend:
		row := ss.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return estimate
		}

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		row := ss.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			cfg.DBName, snapshotTable)
		if err := row.Scan(&size); err != nil {
			return estimate
		}

	case schema.PostgreSQLBackend:
		row := ss.db.QueryRow("SELECT pg_total_relation_size($1)", snapshotTable)
		if err := row.Scan(&size); err != nil {
			return estimate
		}

	default:
		return estimate
	}
	return size
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("%q", name)
}
