package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/internal/parquet"
	"github.com/elomagic/dtreport/schema"
)

// PrintReportRows outputs the report rows, dispatching based on the output format configured.
// Rows must already be in report order.
func PrintReportRows(rows []schema.ReportRow, cfg *contract.Config) error {
	switch cfg.Format {
	case schema.CSVOut:
		if err := printCSVResultsForReport(rows, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.JSONOut:
		if err := printJSONResultsForReport(rows, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForReport(rows, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.TextOut:
		if err := printTextResultsForReport(rows, cfg); err != nil {
			return fmt.Errorf("error writing report table output: %w", err)
		}
	default:
		return fmt.Errorf("%w: unsupported format '%s'", contract.ErrOption, cfg.Format)
	}
	return nil
}

// PrintSnapshotsParquet exports snapshots to a Parquet file.
func PrintSnapshotsParquet(snapshots []schema.ProjectSnapshot, outputFile string) error {
	if outputFile == "" {
		return fmt.Errorf("%w: --output-file is required for export", contract.ErrOption)
	}
	return writeWithFile(outputFile, func(w io.Writer) error {
		return parquet.WriteSnapshots(w, snapshots)
	}, fmt.Sprintf("Exported %s snapshots", contract.Count(len(snapshots))))
}

// printCSVResultsForReport handles opening the file and calling the CSV writer.
func printCSVResultsForReport(rows []schema.ReportRow, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteCSVReport(w, rows, cfg.Delimiter, cfg.DecimalSeparator)
	}, successMessage(schema.CSVOut, len(rows)))
}

// printJSONResultsForReport handles opening the file and calling the JSON writer.
func printJSONResultsForReport(rows []schema.ReportRow, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteJSONReport(w, rows)
	}, successMessage(schema.JSONOut, len(rows)))
}

// printParquetResultsForReport handles opening the file and calling the Parquet writer.
func printParquetResultsForReport(rows []schema.ReportRow, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return parquet.WriteReportRows(w, rows)
	}, successMessage(schema.ParquetOut, len(rows)))
}

// printTextResultsForReport renders the table to stdout or the output file.
func printTextResultsForReport(rows []schema.ReportRow, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteTextReport(w, rows, cfg)
	}, successMessage(schema.TextOut, len(rows)))
}

func successMessage(format schema.OutputFormat, n int) string {
	return fmt.Sprintf("Wrote %s report (%s rows)", strings.ToUpper(string(format)), contract.Count(n))
}
