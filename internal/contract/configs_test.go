package contract

import (
	"testing"
	"time"

	"github.com/elomagic/dtreport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw inputs that pass validation; tests mutate a copy.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Format:           "csv",
		Delimiter:        ";",
		DecimalSeparator: ".",
		NotBeforeDays:    DefaultNotBeforeDays,
		NotAfterDays:     DefaultNotAfterDays,
		VersionMatch:     DefaultVersionMatch,
		Source:           "dtrack",
		BaseURL:          "https://dtrack.example.com/",
		CacheBackend:     "none",
		Color:            "no",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "json ignores csv symbols", mutate: func(in *ConfigRawInput) {
			in.Format = "json"
			in.Delimiter = ","
			in.DecimalSeparator = ","
		}},
		{name: "uppercase format", mutate: func(in *ConfigRawInput) { in.Format = "PARQUET" }},
		{name: "empty values take defaults", mutate: func(in *ConfigRawInput) {
			in.Format = ""
			in.Delimiter = ""
			in.DecimalSeparator = ""
			in.CacheBackend = ""
			in.Color = ""
		}},
		{name: "unknown format", mutate: func(in *ConfigRawInput) { in.Format = "xml" }, expectError: true},
		{name: "long delimiter", mutate: func(in *ConfigRawInput) { in.Delimiter = ";;" }, expectError: true},
		{name: "quote delimiter", mutate: func(in *ConfigRawInput) { in.Delimiter = `"` }, expectError: true},
		{name: "newline delimiter", mutate: func(in *ConfigRawInput) { in.Delimiter = "\n" }, expectError: true},
		{name: "digit separator", mutate: func(in *ConfigRawInput) { in.DecimalSeparator = "5" }, expectError: true},
		{name: "minus separator", mutate: func(in *ConfigRawInput) { in.DecimalSeparator = "-" }, expectError: true},
		{name: "bad color", mutate: func(in *ConfigRawInput) { in.Color = "rainbow" }, expectError: true},
		{name: "negative days", mutate: func(in *ConfigRawInput) { in.NotAfterDays = -1 }, expectError: true},
		{name: "inverted window", mutate: func(in *ConfigRawInput) {
			in.NotBeforeDays = 10
			in.NotAfterDays = 20
		}, expectError: true},
		{name: "bad version regex", mutate: func(in *ConfigRawInput) { in.VersionMatch = "([" }, expectError: true},
		{name: "unknown source", mutate: func(in *ConfigRawInput) { in.Source = "ftp" }, expectError: true},
		{name: "dtrack without url", mutate: func(in *ConfigRawInput) { in.BaseURL = " " }, expectError: true},
		{name: "file without input", mutate: func(in *ConfigRawInput) { in.Source = "file" }, expectError: true},
		{name: "file with input", mutate: func(in *ConfigRawInput) {
			in.Source = "file"
			in.BaseURL = ""
			in.InputFile = "projects.json"
		}},
		{name: "cache without backend", mutate: func(in *ConfigRawInput) { in.Source = "cache" }, expectError: true},
		{name: "cache with sqlite", mutate: func(in *ConfigRawInput) {
			in.Source = "cache"
			in.CacheBackend = "sqlite"
		}},
		{name: "unknown backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: true},
		{name: "mysql with dsn", mutate: func(in *ConfigRawInput) {
			in.CacheBackend = "mysql"
			in.CacheDBConnect = "user:pass@tcp(localhost:3306)/dtreport"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrOption)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateValues(t *testing.T) {
	input := validInput()
	input.Format = "CSV"
	input.Delimiter = ","
	input.DecimalSeparator = ","
	input.FillGaps = true
	input.ProjectFilter = "Alpha, Beta,,Alpha"
	input.OutputFile = "out/report.csv"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.CSVOut, cfg.Format)
	assert.Equal(t, ',', cfg.Delimiter)
	assert.Equal(t, ',', cfg.DecimalSeparator)
	assert.True(t, cfg.FillGaps)
	assert.Equal(t, []string{"Alpha", "Beta"}, cfg.ProjectFilter)
	assert.Equal(t, "out/report.csv", cfg.OutputFile)
	assert.Equal(t, "https://dtrack.example.com", cfg.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.False(t, cfg.UseColors)
	require.NotNil(t, cfg.VersionMatch)
	assert.True(t, cfg.VersionMatch.MatchString("1.2.3"))
	assert.True(t, cfg.VersionMatch.MatchString("4.0-Final"))
	assert.False(t, cfg.VersionMatch.MatchString("1.2.3-SNAPSHOT"))
}

func TestProcessAndValidateEmptyVersionMatch(t *testing.T) {
	input := validInput()
	input.VersionMatch = ""
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Nil(t, cfg.VersionMatch)
}

func TestCompileVersionMatchWholeString(t *testing.T) {
	tests := []struct {
		pattern string
		version string
		want    bool
	}{
		{`\d+\.\d+`, "1.0", true},
		{`\d+\.\d+`, "1.0-SNAPSHOT", false},
		{`\d+\.\d+`, "v1.0", false},
		{`1|2`, "1", true},
		{`1|2`, "12", false},
		{DefaultVersionMatch, "2.0-Final", true},
	}

	for _, tt := range tests {
		re, err := CompileVersionMatch(tt.pattern)
		require.NoError(t, err)
		assert.Equal(t, tt.want, re.MatchString(tt.version), "%s on %s", tt.pattern, tt.version)
	}

	re, err := CompileVersionMatch("")
	require.NoError(t, err)
	assert.Nil(t, re)
}

func TestConfigTimeWindow(t *testing.T) {
	cfg := &Config{NotBeforeDays: 30, NotAfterDays: 1}
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	notBefore, notAfter := cfg.TimeWindow(now)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), notBefore)
	assert.Equal(t, time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC), notAfter)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ProjectFilter: []string{"Alpha"}, FillGaps: true}
	clone := cfg.Clone()
	clone.ProjectFilter[0] = "Beta"
	clone.FillGaps = false
	assert.Equal(t, "Alpha", cfg.ProjectFilter[0])
	assert.True(t, cfg.FillGaps)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite without conn", schema.SQLiteBackend, "", false},
		{"none without conn", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/db", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=db", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=db", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "dtreport"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "dtreport", profile.Prefix)
}

func TestRevalidateFilters(t *testing.T) {
	cfg := &Config{NotBeforeDays: 100, ProjectFilter: []string{"Old"}}

	require.NoError(t, RevalidateFilters(cfg, "Alpha, Beta", `1\.\d+`, 60, 10))
	assert.Equal(t, []string{"Alpha", "Beta"}, cfg.ProjectFilter)
	assert.Equal(t, 60, cfg.NotBeforeDays)
	assert.Equal(t, 10, cfg.NotAfterDays)
	require.NotNil(t, cfg.VersionMatch)
	assert.True(t, cfg.VersionMatch.MatchString("1.2"))
	assert.False(t, cfg.VersionMatch.MatchString("1.2-SNAPSHOT"))

	err := RevalidateFilters(cfg, "", "(", 60, 10)
	assert.ErrorIs(t, err, ErrOption)

	err = RevalidateFilters(cfg, "", "", 5, 10)
	assert.ErrorIs(t, err, ErrOption)
}
