package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, 6, 1, 8, 30, 15, 123456789, time.FixedZone("CEST", 2*60*60))

func sampleRows() []schema.ReportRow {
	return []schema.ReportRow{
		{
			MonthKey: "2024-01", ProjectName: "Alpha", GeneratedAt: generatedAt,
			AverageRiskScore: 12.3456, AverageCritical: 1, AverageHigh: 3,
			AverageMedium: 0.5, AverageLow: 7.126, AverageUnassigned: 0,
		},
		{
			MonthKey: "2024-01", ProjectName: "Beta; the second", GeneratedAt: generatedAt,
			AverageRiskScore: 100, AverageCritical: 32, AverageHigh: 0.333333333,
		},
		{
			MonthKey: "2024-02", ProjectName: `Gamma "quoted"`, GeneratedAt: generatedAt,
			AverageRiskScore: 0.004, AverageLow: 2.675,
		},
	}
}

// parseCSVReport reads a report written by WriteCSVReport back into rows.
func parseCSVReport(t *testing.T, data []byte, delimiter, decimal rune) []schema.ReportRow {
	t.Helper()
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	require.Equal(t, CSVHeader(), records[0])

	number := func(s string) float64 {
		v, err := strconv.ParseFloat(strings.Replace(s, string(decimal), ".", 1), 64)
		require.NoError(t, err, s)
		return v
	}

	rows := make([]schema.ReportRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		require.Len(t, rec, len(CSVHeader()))
		ts, err := time.Parse(time.RFC3339, rec[2])
		require.NoError(t, err)
		rows = append(rows, schema.ReportRow{
			MonthKey:          schema.MonthKey(rec[0]),
			ProjectName:       rec[1],
			GeneratedAt:       ts,
			AverageRiskScore:  number(rec[3]),
			AverageCritical:   number(rec[4]),
			AverageHigh:       number(rec[5]),
			AverageMedium:     number(rec[6]),
			AverageLow:        number(rec[7]),
			AverageUnassigned: number(rec[8]),
		})
	}
	return rows
}

func TestCSVHeaderOrder(t *testing.T) {
	assert.Equal(t, []string{
		"monthKey", "projectName", "generatedAt",
		"averageRiskScore", "averageCritical", "averageHigh",
		"averageMedium", "averageLow", "averageUnassigned",
	}, CSVHeader())
}

func TestWriteCSVReportDefaults(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSVReport(&buf, sampleRows()[:1], ';', '.')
	require.NoError(t, err)

	assert.Equal(t,
		"monthKey;projectName;generatedAt;averageRiskScore;averageCritical;averageHigh;averageMedium;averageLow;averageUnassigned\n"+
			"2024-01;Alpha;2024-06-01T08:30:15+02:00;12.35;1.00;3.00;0.50;7.13;0.00\n",
		buf.String())
}

func TestWriteCSVReportCommaDecimalWithCommaDelimiter(t *testing.T) {
	row := []schema.ReportRow{{MonthKey: "2024-03", ProjectName: "Delta", GeneratedAt: generatedAt, AverageCritical: 32.0}}

	var semicolon, comma bytes.Buffer
	require.NoError(t, WriteCSVReport(&semicolon, row, ';', ','))
	require.NoError(t, WriteCSVReport(&comma, row, ',', ','))

	lines := strings.Split(strings.TrimSuffix(comma.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `,"32,00",`)

	semiRecords, err := readAll(semicolon.Bytes(), ';')
	require.NoError(t, err)
	commaRecords, err := readAll(comma.Bytes(), ',')
	require.NoError(t, err)

	// Same column layout regardless of the delimiter.
	assert.Equal(t, semiRecords, commaRecords)
	assert.Equal(t, "32,00", commaRecords[1][4])
	assert.Len(t, commaRecords[1], 9)
}

func readAll(data []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	return r.ReadAll()
}

func TestWriteCSVReportRoundTrip(t *testing.T) {
	for _, symbols := range []struct{ delimiter, decimal rune }{
		{';', '.'},
		{',', ','},
		{',', '.'},
		{'\t', ','},
		{'|', '.'},
	} {
		t.Run(string(symbols.delimiter)+string(symbols.decimal), func(t *testing.T) {
			rows := sampleRows()
			var buf bytes.Buffer
			require.NoError(t, WriteCSVReport(&buf, rows, symbols.delimiter, symbols.decimal))

			parsed := parseCSVReport(t, buf.Bytes(), symbols.delimiter, symbols.decimal)
			require.Len(t, parsed, len(rows))
			for i, want := range rows {
				got := parsed[i]
				assert.Equal(t, want.MonthKey, got.MonthKey)
				assert.Equal(t, want.ProjectName, got.ProjectName)
				assert.True(t, want.GeneratedAt.Truncate(time.Second).Equal(got.GeneratedAt))
				// Two decimals on output bound the round-trip error by half a cent.
				const tolerance = 0.005 + 1e-9
				assert.InDelta(t, want.AverageRiskScore, got.AverageRiskScore, tolerance)
				assert.InDelta(t, want.AverageCritical, got.AverageCritical, tolerance)
				assert.InDelta(t, want.AverageHigh, got.AverageHigh, tolerance)
				assert.InDelta(t, want.AverageMedium, got.AverageMedium, tolerance)
				assert.InDelta(t, want.AverageLow, got.AverageLow, tolerance)
				assert.InDelta(t, want.AverageUnassigned, got.AverageUnassigned, tolerance)
			}
		})
	}
}

func TestWriteCSVReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSVReport(&buf, nil, ';', '.'))
	assert.Equal(t, strings.Join(CSVHeader(), ";")+"\n", buf.String())
}

func TestWriteCSVReportInvalidDelimiter(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSVReport(&buf, sampleRows(), '"', '.')
	assert.Error(t, err)
}

func TestWriteJSONReport(t *testing.T) {
	rows := sampleRows()
	var buf bytes.Buffer
	require.NoError(t, WriteJSONReport(&buf, rows))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw, len(rows))
	for _, key := range CSVHeader() {
		assert.Contains(t, raw[0], key)
	}
	assert.Equal(t, "2024-01", raw[0]["monthKey"])
	assert.Equal(t, 12.3456, raw[0]["averageRiskScore"], "numbers stay JSON numbers")
	assert.Equal(t, "2024-06-01T08:30:15.123456789+02:00", raw[0]["generatedAt"])

	var decoded []schema.ReportRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, len(rows))
	for i := range rows {
		assert.True(t, rows[i].GeneratedAt.Equal(decoded[i].GeneratedAt))
		decoded[i].GeneratedAt = rows[i].GeneratedAt
	}
	assert.Equal(t, rows, decoded)
}

func TestWriteJSONReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONReport(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteTextReport(t *testing.T) {
	cfg := &contract.Config{Format: schema.TextOut, UseColors: false, Width: 200}

	var buf bytes.Buffer
	require.NoError(t, WriteTextReport(&buf, sampleRows(), cfg))

	output := buf.String()
	assert.Contains(t, output, "2024-01")
	assert.Contains(t, output, "Alpha")
	assert.Contains(t, output, "12.35")
	assert.Contains(t, output, "32.00")
	assert.Contains(t, output, contract.CriticalValue)
	assert.Contains(t, output, contract.LowValue)
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		separator rune
		expected  string
	}{
		{"integer", 32, '.', "32.00"},
		{"comma", 32, ',', "32,00"},
		{"rounding", 3.14159, '.', "3.14"},
		{"negative", -42.567, ',', "-42,57"},
		{"zero", 0, ',', "0,00"},
		{"large", 1234567.891, '.', "1234567.89"},
		{"multibyte separator", 1.5, '·', "1·50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDecimal(tt.value, tt.separator))
		})
	}
}
