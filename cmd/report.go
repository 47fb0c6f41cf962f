package cmd

import (
	"github.com/elomagic/dtreport/core"
	"github.com/elomagic/dtreport/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd builds the monthly report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write monthly averaged vulnerability metrics per project.",
	Long: `Fetch project snapshots, group them by the calendar month of their last BOM
import and write one row per month and project with the averaged metrics.

Rows are ordered by month, then project name. With --fill-gaps every project gets
a row for each month between its first import and the latest month in the report,
repeating its most recent known metrics.

Examples:
  # CSV report from a Dependency-Track server
  DTREPORT_API_KEY=... dtreport report --base-url https://dtrack.example.com -o report.csv

  # German spreadsheet style CSV
  dtreport report --base-url https://dtrack.example.com --delimiter ';' --decimal-separator ','

  # Offline report from the snapshot cache, gaps filled
  dtreport report --source cache --cache-backend sqlite --fill-gaps --format text

  # Report from an exported project list
  dtreport report --source file --input-file projects.json --format json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}
