package outwriter

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// reportColumn is a named accessor for one CSV column.
type reportColumn struct {
	name  string
	value func(row schema.ReportRow, decimal rune) string
}

func decimalColumn(name string, field func(schema.ReportRow) float64) reportColumn {
	return reportColumn{name: name, value: func(row schema.ReportRow, decimal rune) string {
		return FormatDecimal(field(row), decimal)
	}}
}

// reportColumns fixes the CSV column order.
var reportColumns = []reportColumn{
	{name: "monthKey", value: func(row schema.ReportRow, _ rune) string { return string(row.MonthKey) }},
	{name: "projectName", value: func(row schema.ReportRow, _ rune) string { return row.ProjectName }},
	{name: "generatedAt", value: func(row schema.ReportRow, _ rune) string { return row.GeneratedAt.Format(time.RFC3339) }},
	decimalColumn("averageRiskScore", func(row schema.ReportRow) float64 { return row.AverageRiskScore }),
	decimalColumn("averageCritical", func(row schema.ReportRow) float64 { return row.AverageCritical }),
	decimalColumn("averageHigh", func(row schema.ReportRow) float64 { return row.AverageHigh }),
	decimalColumn("averageMedium", func(row schema.ReportRow) float64 { return row.AverageMedium }),
	decimalColumn("averageLow", func(row schema.ReportRow) float64 { return row.AverageLow }),
	decimalColumn("averageUnassigned", func(row schema.ReportRow) float64 { return row.AverageUnassigned }),
}

// CSVHeader returns the CSV column names in output order.
func CSVHeader() []string {
	header := make([]string, len(reportColumns))
	for i, c := range reportColumns {
		header[i] = c.name
	}
	return header
}

// WriteCSVReport writes a header line and one line per row. Fields holding the
// delimiter (e.g. "32,00" with a comma delimiter) are quoted, so columns stay aligned.
func WriteCSVReport(w io.Writer, rows []schema.ReportRow, delimiter, decimal rune) error {
	return writeCSVWithHeader(w, delimiter, CSVHeader(), func(cw *csv.Writer) error {
		record := make([]string, len(reportColumns))
		for _, row := range rows {
			for i, c := range reportColumns {
				record[i] = c.value(row, decimal)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteJSONReport writes rows as one JSON array. An empty report is "[]".
func WriteJSONReport(w io.Writer, rows []schema.ReportRow) error {
	if rows == nil {
		rows = []schema.ReportRow{}
	}
	return writeJSON(w, rows)
}

// WriteTextReport renders rows as a table with a severity label per row.
func WriteTextReport(w io.Writer, rows []schema.ReportRow, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)

	// --- 1. Define Headers ---
	headers := []string{"Month", "Project", "Risk", "Critical", "High", "Medium", "Low", "Unassigned", "Label"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		label := contract.GetPlainLabel(r)
		if cfg.UseColors {
			label = contract.GetColorLabel(r)
		}
		data = append(data, []string{
			string(r.MonthKey),
			contract.TruncateText(r.ProjectName, nameWidth),
			FormatDecimal(r.AverageRiskScore, '.'),
			FormatDecimal(r.AverageCritical, '.'),
			FormatDecimal(r.AverageHigh, '.'),
			FormatDecimal(r.AverageMedium, '.'),
			FormatDecimal(r.AverageLow, '.'),
			FormatDecimal(r.AverageUnassigned, '.'),
			label,
		})
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
