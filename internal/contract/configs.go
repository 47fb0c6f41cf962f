package contract

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/elomagic/dtreport/schema"
)

// Default values for configuration.
const (
	DefaultNotBeforeDays    = 365 * 12
	DefaultNotAfterDays     = 0
	DefaultDelimiter        = ";"
	DefaultDecimalSeparator = "."
	DefaultVersionMatch     = `^\d+(\.\d+)*(\-Final)?$`
	DefaultPageSize         = 1000
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for one report run.
// This struct is the "final, validated" config and is passed explicitly to the engine.
type Config struct {
	Format           schema.OutputFormat
	OutputFile       string
	Delimiter        rune // CSV only
	DecimalSeparator rune // CSV only
	FillGaps         bool

	NotBeforeDays int
	NotAfterDays  int
	ProjectFilter []string       // Names or UUIDs, empty means all
	VersionMatch  *regexp.Regexp // nil means all versions

	Source    schema.SourceKind
	BaseURL   string
	APIKey    string // Please use env var as this is plaintext
	InputFile string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	Width     int // Terminal width override (0 = auto-detect)
	UseColors bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from reportCmd.Flags() ---
	Format           string `mapstructure:"format"`
	OutputFile       string `mapstructure:"output-file"`
	Delimiter        string `mapstructure:"delimiter"`
	DecimalSeparator string `mapstructure:"decimal-separator"`
	FillGaps         bool   `mapstructure:"fill-gaps"`

	// --- Fields from rootCmd.PersistentFlags() ---
	NotBeforeDays  int    `mapstructure:"not-before-days"`
	NotAfterDays   int    `mapstructure:"not-after-days"`
	ProjectFilter  string `mapstructure:"project-filter"`
	VersionMatch   string `mapstructure:"version-match"`
	Source         string `mapstructure:"source"`
	BaseURL        string `mapstructure:"base-url"`
	APIKey         string `mapstructure:"api-key"`
	InputFile      string `mapstructure:"input-file"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ProjectFilter = slices.Clone(c.ProjectFilter)
	return &clone
}

// TimeWindow returns the open interval (notBefore, notAfter) relative to now.
func (c *Config) TimeWindow(now time.Time) (time.Time, time.Time) {
	notBefore := now.AddDate(0, 0, -c.NotBeforeDays)
	notAfter := now.AddDate(0, 0, -c.NotAfterDays)
	return notBefore, notAfter
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Every failure wraps ErrOption.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateReportInputs(cfg, input); err != nil {
		return err
	}
	if err := validateFilterInputs(cfg, input); err != nil {
		return err
	}
	if err := validateSourceInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateReportInputs handles format, CSV symbols and presentation fields.
func validateReportInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.FillGaps = input.FillGaps
	cfg.Width = input.Width

	format := input.Format
	if format == "" {
		format = string(schema.CSVOut)
	}
	cfg.Format = schema.OutputFormat(strings.ToLower(format))
	if _, ok := schema.ValidOutputFormats[cfg.Format]; !ok {
		return fmt.Errorf("%w: invalid format '%s'. must be csv, json, parquet, text", ErrOption, input.Format)
	}

	delimiter, err := parseSymbol("delimiter", input.Delimiter, DefaultDelimiter)
	if err != nil {
		return err
	}
	if delimiter == '"' || delimiter == '\r' || delimiter == '\n' || delimiter == utf8.RuneError {
		return fmt.Errorf("%w: delimiter %q is not allowed", ErrOption, delimiter)
	}
	cfg.Delimiter = delimiter

	separator, err := parseSymbol("decimal-separator", input.DecimalSeparator, DefaultDecimalSeparator)
	if err != nil {
		return err
	}
	if unicode.IsDigit(separator) || strings.ContainsRune("-\"\r\n", separator) || separator == utf8.RuneError {
		return fmt.Errorf("%w: decimal separator %q is not allowed", ErrOption, separator)
	}
	cfg.DecimalSeparator = separator

	color := input.Color
	if color == "" {
		color = "yes"
	}
	colors, err := ParseBoolString(color)
	if err != nil {
		return fmt.Errorf("%w: invalid --color value: %v", ErrOption, err)
	}
	cfg.UseColors = colors

	return nil
}

// validateFilterInputs handles the time window, project filter and version regex.
func validateFilterInputs(cfg *Config, input *ConfigRawInput) error {
	if input.NotBeforeDays < 0 || input.NotAfterDays < 0 {
		return fmt.Errorf("%w: day offsets cannot be negative (not-before-days=%d, not-after-days=%d)",
			ErrOption, input.NotBeforeDays, input.NotAfterDays)
	}
	if input.NotBeforeDays < input.NotAfterDays {
		return fmt.Errorf("%w: not-before-days (%d) cannot be smaller than not-after-days (%d)",
			ErrOption, input.NotBeforeDays, input.NotAfterDays)
	}
	cfg.NotBeforeDays = input.NotBeforeDays
	cfg.NotAfterDays = input.NotAfterDays

	cfg.ProjectFilter = SplitList(input.ProjectFilter)

	re, err := CompileVersionMatch(input.VersionMatch)
	if err != nil {
		return fmt.Errorf("%w: invalid --version-match: %v", ErrOption, err)
	}
	cfg.VersionMatch = re
	return nil
}

// CompileVersionMatch compiles a version pattern that must match the whole version
// string, not a substring of it. An empty pattern returns nil (all versions).
func CompileVersionMatch(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile("^(?:" + pattern + ")$")
}

// RevalidateFilters re-applies the filter options on an already validated config,
// e.g. for per-call arguments of an MCP tool.
func RevalidateFilters(cfg *Config, projectFilter, versionMatch string, notBeforeDays, notAfterDays int) error {
	return validateFilterInputs(cfg, &ConfigRawInput{
		ProjectFilter: projectFilter,
		VersionMatch:  versionMatch,
		NotBeforeDays: notBeforeDays,
		NotAfterDays:  notAfterDays,
	})
}

// validateSourceInputs handles the snapshot source and the cache backend.
func validateSourceInputs(cfg *Config, input *ConfigRawInput) error {
	source := input.Source
	if source == "" {
		source = string(schema.DTrackSource)
	}
	cfg.Source = schema.SourceKind(strings.ToLower(source))
	if _, ok := schema.ValidSourceKinds[cfg.Source]; !ok {
		return fmt.Errorf("%w: invalid source '%s'. must be dtrack, cache, file", ErrOption, input.Source)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(input.BaseURL), "/")
	cfg.APIKey = input.APIKey
	cfg.InputFile = input.InputFile

	switch cfg.Source {
	case schema.DTrackSource:
		if cfg.BaseURL == "" {
			return fmt.Errorf("%w: --base-url is required when using the dtrack source", ErrOption)
		}
	case schema.FileSource:
		if cfg.InputFile == "" {
			return fmt.Errorf("%w: --input-file is required when using the file source", ErrOption)
		}
	}

	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if cfg.Source == schema.CacheSource && cfg.CacheBackend == schema.NoneBackend {
		return fmt.Errorf("%w: the cache source needs a cache backend other than none", ErrOption)
	}
	return nil
}

// validateBackendConfigs validates the snapshot cache backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := input.CacheBackend
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("%w: invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", ErrOption, input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("%w: %v", ErrOption, err)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// parseSymbol turns a one-character option into a rune. An empty value takes the default.
func parseSymbol(name, value, fallback string) (rune, error) {
	if value == "" {
		value = fallback
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("%w: %s must be exactly one character (received %q)", ErrOption, name, value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}
