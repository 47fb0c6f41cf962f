// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport writes the ordered report rows using the configured output format.
func (ow *OutWriter) WriteReport(rows []schema.ReportRow, cfg *contract.Config) error {
	return PrintReportRows(rows, cfg)
}

// WriteSnapshots exports cached project snapshots to a Parquet file.
func (ow *OutWriter) WriteSnapshots(snapshots []schema.ProjectSnapshot, outputFile string) error {
	return PrintSnapshotsParquet(snapshots, outputFile)
}
