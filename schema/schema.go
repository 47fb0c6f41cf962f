// Package schema has the models and enums shared by all parts of dtreport.
package schema

import "time"

// MonthKey is a canonical "YYYY-MM" month bucket identifier.
// Lexical order of month keys is also chronological order.
type MonthKey string

// MetricsSet holds the risk metrics of a project snapshot. Counts are
// float64 because they get averaged.
type MetricsSet struct {
	RiskScore  float64 `json:"riskScore"`
	Critical   float64 `json:"critical"`
	High       float64 `json:"high"`
	Medium     float64 `json:"medium"`
	Low        float64 `json:"low"`
	Unassigned float64 `json:"unassigned"`
}

// ProjectSnapshot is one version of a project as delivered by the fetch layer.
type ProjectSnapshot struct {
	UUID       string     // Project UUID, may be empty for file inputs
	Name       string     // Project name, the grouping key of the report
	Version    string     // Project version
	ImportedAt *time.Time // Last BOM import; nil means no BOM was ever imported
	Metrics    MetricsSet // Risk metrics, zero when upstream had none
}

// HasImport reports whether the snapshot carries a BOM import timestamp.
func (p ProjectSnapshot) HasImport() bool {
	return p.ImportedAt != nil
}

// AggregatedMetrics is the averaged metrics of one project within one month.
type AggregatedMetrics struct {
	ProjectName string
	GeneratedAt time.Time  // Wall-clock time of the report run
	Average     MetricsSet // Arithmetic means of the contributing snapshots
}

// Buckets maps month key to project name to the aggregated metrics of that pair.
type Buckets map[MonthKey]map[string]AggregatedMetrics

// Clone returns a deep copy of the bucket map.
func (b Buckets) Clone() Buckets {
	out := make(Buckets, len(b))
	for month, projects := range b {
		inner := make(map[string]AggregatedMetrics, len(projects))
		for name, m := range projects {
			inner[name] = m
		}
		out[month] = inner
	}
	return out
}

// Count returns the total number of (month, project) entries.
func (b Buckets) Count() int {
	n := 0
	for _, projects := range b {
		n += len(projects)
	}
	return n
}

// ReportRow is one line of the monthly report.
type ReportRow struct {
	MonthKey          MonthKey  `json:"monthKey"`
	ProjectName       string    `json:"projectName"`
	GeneratedAt       time.Time `json:"generatedAt"`
	AverageRiskScore  float64   `json:"averageRiskScore"`
	AverageCritical   float64   `json:"averageCritical"`
	AverageHigh       float64   `json:"averageHigh"`
	AverageMedium     float64   `json:"averageMedium"`
	AverageLow        float64   `json:"averageLow"`
	AverageUnassigned float64   `json:"averageUnassigned"`
}

// NewReportRow builds a row from a bucket entry.
func NewReportRow(month MonthKey, m AggregatedMetrics) ReportRow {
	return ReportRow{
		MonthKey:          month,
		ProjectName:       m.ProjectName,
		GeneratedAt:       m.GeneratedAt,
		AverageRiskScore:  m.Average.RiskScore,
		AverageCritical:   m.Average.Critical,
		AverageHigh:       m.Average.High,
		AverageMedium:     m.Average.Medium,
		AverageLow:        m.Average.Low,
		AverageUnassigned: m.Average.Unassigned,
	}
}
