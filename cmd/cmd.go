// Package cmd defines the command-line interface for dtreport.
package cmd

import (
	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)
	cacheCmd.AddCommand(cacheExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int("not-before-days", contract.DefaultNotBeforeDays, "Ignore BOM imports older than this many days")
	rootCmd.PersistentFlags().Int("not-after-days", contract.DefaultNotAfterDays, "Ignore BOM imports newer than this many days")
	rootCmd.PersistentFlags().String("project-filter", "", "Comma-separated project names or UUIDs (empty means all)")
	rootCmd.PersistentFlags().String("version-match", contract.DefaultVersionMatch, "Regular expression project versions must match (empty disables)")
	rootCmd.PersistentFlags().String("source", string(schema.DTrackSource), "Snapshot source: dtrack or cache or file")
	rootCmd.PersistentFlags().String("base-url", "", "Dependency-Track base URL (e.g., https://dtrack.example.com)")
	rootCmd.PersistentFlags().String("api-key", "", "Dependency-Track API key (prefer DTREPORT_API_KEY)")
	rootCmd.PersistentFlags().String("input-file", "", "JSON file with Dependency-Track project objects for --source file")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Snapshot cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().String("format", string(schema.CSVOut), "Output format: csv or json or parquet or text")
	reportCmd.Flags().StringP("output-file", "o", "", "Optional path to write output to (stdout when empty)")
	reportCmd.Flags().String("delimiter", contract.DefaultDelimiter, "CSV field delimiter")
	reportCmd.Flags().String("decimal-separator", contract.DefaultDecimalSeparator, "CSV decimal separator")
	reportCmd.Flags().Bool("fill-gaps", false, "Repeat the latest metrics for months without a BOM import")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Flags of cacheMigrateCmd and cacheExportCmd are read directly, not through Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	cacheExportCmd.Flags().StringP("output-file", "o", "", "Parquet file to write the cached snapshots to")
}
