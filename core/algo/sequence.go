package algo

import (
	"cmp"
	"slices"

	"github.com/elomagic/dtreport/schema"
)

// Flatten turns the bucket map into report rows sorted by month key ascending,
// then project name ascending (case-sensitive, byte order). The same buckets
// always give the same sequence.
func Flatten(buckets schema.Buckets) []schema.ReportRow {
	rows := make([]schema.ReportRow, 0, buckets.Count())
	for month, projects := range buckets {
		for _, m := range projects {
			rows = append(rows, schema.NewReportRow(month, m))
		}
	}
	SortRows(rows)
	return rows
}

// SortRows sorts rows in place by month key, then project name.
func SortRows(rows []schema.ReportRow) {
	slices.SortFunc(rows, func(a, b schema.ReportRow) int {
		return cmp.Or(
			cmp.Compare(a.MonthKey, b.MonthKey),
			cmp.Compare(a.ProjectName, b.ProjectName),
		)
	})
}
