// Package parquet provides data structures and functions for exporting dtreport
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"time"

	"github.com/elomagic/dtreport/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRecord is one monthly report row.
type ReportRecord struct {
	// MonthKey is the "YYYY-MM" bucket
	MonthKey string `parquet:"month_key,snappy"`

	// ProjectName is the project the averages belong to
	ProjectName string `parquet:"project_name,snappy"`

	// GeneratedAt is when the report was produced (stored as TIMESTAMP with nanosecond precision)
	GeneratedAt time.Time `parquet:"generated_at,snappy"`

	AverageRiskScore  float64 `parquet:"average_risk_score,snappy"`
	AverageCritical   float64 `parquet:"average_critical,snappy"`
	AverageHigh       float64 `parquet:"average_high,snappy"`
	AverageMedium     float64 `parquet:"average_medium,snappy"`
	AverageLow        float64 `parquet:"average_low,snappy"`
	AverageUnassigned float64 `parquet:"average_unassigned,snappy"`
}

// SnapshotRecord is one cached project snapshot.
// This struct maps to the dtreport_snapshots database table.
type SnapshotRecord struct {
	ProjectUUID string `parquet:"project_uuid,snappy"`
	ProjectName string `parquet:"project_name,snappy"`
	Version     string `parquet:"version,snappy"`

	// ImportedAt is the last BOM import (nullable)
	ImportedAt *time.Time `parquet:"imported_at,optional,snappy"`

	RiskScore  float64 `parquet:"risk_score,snappy"`
	Critical   float64 `parquet:"critical,snappy"`
	High       float64 `parquet:"high,snappy"`
	Medium     float64 `parquet:"medium,snappy"`
	Low        float64 `parquet:"low,snappy"`
	Unassigned float64 `parquet:"unassigned,snappy"`
}

// ConvertReportRows converts report rows to ReportRecord for Parquet export.
func ConvertReportRows(rows []schema.ReportRow) []ReportRecord {
	result := make([]ReportRecord, len(rows))
	for i, row := range rows {
		result[i] = ReportRecord{
			MonthKey:          string(row.MonthKey),
			ProjectName:       row.ProjectName,
			GeneratedAt:       row.GeneratedAt,
			AverageRiskScore:  row.AverageRiskScore,
			AverageCritical:   row.AverageCritical,
			AverageHigh:       row.AverageHigh,
			AverageMedium:     row.AverageMedium,
			AverageLow:        row.AverageLow,
			AverageUnassigned: row.AverageUnassigned,
		}
	}
	return result
}

// ConvertSnapshots converts project snapshots to SnapshotRecord for Parquet export.
func ConvertSnapshots(snapshots []schema.ProjectSnapshot) []SnapshotRecord {
	result := make([]SnapshotRecord, len(snapshots))
	for i, s := range snapshots {
		result[i] = SnapshotRecord{
			ProjectUUID: s.UUID,
			ProjectName: s.Name,
			Version:     s.Version,
			ImportedAt:  s.ImportedAt,
			RiskScore:   s.Metrics.RiskScore,
			Critical:    s.Metrics.Critical,
			High:        s.Metrics.High,
			Medium:      s.Metrics.Medium,
			Low:         s.Metrics.Low,
			Unassigned:  s.Metrics.Unassigned,
		}
	}
	return result
}

// WriteReportRows writes report rows to w as a Parquet file.
func WriteReportRows(w io.Writer, rows []schema.ReportRow) error {
	return writeRecords(w, ConvertReportRows(rows))
}

// WriteSnapshots writes project snapshots to w as a Parquet file.
func WriteSnapshots(w io.Writer, snapshots []schema.ProjectSnapshot) error {
	return writeRecords(w, ConvertSnapshots(snapshots))
}

// writeRecords writes all records with a schema inferred from T's struct tags.
func writeRecords[T any](w io.Writer, records []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if len(records) > 0 {
		if _, err := writer.Write(records); err != nil {
			_ = writer.Close()
			return fmt.Errorf("failed to write data to parquet file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
