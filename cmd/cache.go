package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/internal/iocache"
	"github.com/elomagic/dtreport/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheConfigSetup loads the cache backend settings without opening the cache.
func cacheConfigSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("cache-backend")))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("%w: invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", contract.ErrOption, backend)
	}
	connStr := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return fmt.Errorf("%w: %v", contract.ErrOption, err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetup loads the cache settings and opens the snapshot cache.
// Cache subcommands use this instead of the full sharedSetup, so no
// Dependency-Track settings are required.
func cacheSetup() error {
	if err := cacheConfigSetup(); err != nil {
		return err
	}
	if err := iocache.InitCaching(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheConfigSetupWrapper wraps cacheConfigSetup to provide PreRunE for cache commands.
func cacheConfigSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheConfigSetup()
}

// sqliteCachePath returns the SQLite file the cache lives in.
func sqliteCachePath() string {
	if cfg.CacheDBConnect != "" {
		return cfg.CacheDBConnect
	}
	return iocache.GetDBFilePath()
}

// cacheCmd focused on snapshot cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the project snapshot cache",
	Long: `Manage the cache of project snapshots fetched from Dependency-Track.

When a cache backend is configured, every report run against Dependency-Track
stores the fetched snapshots, so later runs can use --source cache offline.

Supported backends: SQLite, MySQL, PostgreSQL, or None (default)

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached snapshots
  migrate - Move the cache schema to a given version
  export  - Write all cached snapshots to a Parquet file

Examples:
  # Check cache status
  dtreport cache status --cache-backend sqlite

  # Clear a MySQL cache (set connection string via env variable)
  DTREPORT_CACHE_BACKEND=mysql DTREPORT_CACHE_DB_CONNECT="..." dtreport cache clear`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display cache statistics and connection details",
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := cacheManager.GetSnapshotStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("cache is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached snapshots",
	Long: `Delete all cached snapshots from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the snapshot and schema version tables`,
	PreRunE: cacheConfigSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, sqliteCachePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheMigrateCmd runs schema migrations.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the cache schema",
	Long: `Apply or roll back schema migrations of the snapshot cache.

Opening the cache always migrates to the latest version; use this command to
inspect upgrades ahead of time or to roll back.

Examples:
  # Migrate to the latest version
  dtreport cache migrate --cache-backend sqlite

  # Roll back everything
  dtreport cache migrate --cache-backend sqlite --target-version 0`,
	PreRunE: cacheConfigSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		target, err := cmd.Flags().GetInt("target-version")
		if err != nil {
			contract.LogFatal("Invalid target version", err)
		}
		connStr := cfg.CacheDBConnect
		if cfg.CacheBackend == schema.SQLiteBackend {
			connStr = sqliteCachePath()
		}
		if err := iocache.MigrateCache(cfg.CacheBackend, connStr, target); err != nil {
			contract.LogFatal("Failed to migrate cache", err)
		}
	},
}

// cacheExportCmd exports the cache to Parquet.
var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached snapshots to a Parquet file",
	Long: `Write every cached project snapshot to a Parquet file for use with
DuckDB, Pandas, Spark or any other Parquet-compatible tool.

Examples:
  dtreport cache export --cache-backend sqlite -o snapshots.parquet`,
	PreRunE: cacheSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		outputFile, err := cmd.Flags().GetString("output-file")
		if err != nil {
			contract.LogFatal("Invalid output file", err)
		}
		if err := iocache.ExecuteSnapshotExport(cacheManager, outputFile); err != nil {
			contract.LogFatal("Failed to export cache", err)
		}
	},
}
