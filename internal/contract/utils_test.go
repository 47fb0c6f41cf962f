package contract

import (
	"os"
	"strings"
	"testing"

	"github.com/elomagic/dtreport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    schema.ReportRow
		expected string
	}{
		{
			name:     "no findings",
			input:    schema.ReportRow{},
			expected: CleanValue,
		},
		{
			name:     "only unassigned",
			input:    schema.ReportRow{AverageUnassigned: 0.5},
			expected: LowValue,
		},
		{
			name:     "medium beats low",
			input:    schema.ReportRow{AverageMedium: 1, AverageLow: 10},
			expected: ModerateValue,
		},
		{
			name:     "high beats medium",
			input:    schema.ReportRow{AverageHigh: 0.25, AverageMedium: 3},
			expected: HighValue,
		},
		{
			name:     "critical wins",
			input:    schema.ReportRow{AverageCritical: 1, AverageHigh: 5},
			expected: CriticalValue,
		},
		{
			name:     "risk score alone is not a finding",
			input:    schema.ReportRow{AverageRiskScore: 42},
			expected: CleanValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.input))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	row := schema.ReportRow{AverageCritical: 2}
	label := GetColorLabel(row)
	assert.Contains(t, label, CriticalValue)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", []string{}},
		{"single", "Alpha", []string{"Alpha"}},
		{"trims blanks", " Alpha , Beta ", []string{"Alpha", "Beta"}},
		{"drops empty parts", "Alpha,,Beta,", []string{"Alpha", "Beta"}},
		{"drops duplicates", "Alpha,Beta,Alpha", []string{"Alpha", "Beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "1,234,567", Count(1234567))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abcdef...", TruncateText("abcdefghijklmnop", 9))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3), "tiny widths leave text alone")
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestGetDBFilePath(t *testing.T) {
	path := GetDBFilePath()

	// Should not be empty
	assert.NotEmpty(t, path)

	// Should contain the database name
	assert.Contains(t, path, ".dtreport_cache.db")

	// Should be in home directory
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}
