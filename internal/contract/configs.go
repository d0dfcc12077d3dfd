package contract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/stepviz/schema"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultThreshold   = schema.DownsampleThreshold
	MaxThreshold       = 100_000
	DefaultPrecision   = 4
	DefaultQueueSize   = 16
	DefaultSourceTable = "experiment_metrics"
	DefaultAddr        = "127.0.0.1:8080"
	DefaultLogLevel    = "warn"
	DefaultRenderDir   = "charts"
)

// Config holds the runtime configuration for stepviz.
// This struct remains the "final, validated" config.
type Config struct {
	InputPaths      []string
	SourceBackend   schema.SourceBackend
	SourceDBConnect string // Please use env var as this is plaintext
	SourceTable     string

	Selected  []string // Experiment ids to chart, in color order (empty = all)
	Threshold int
	QueueSize int

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Render    schema.RenderFormat
	RenderDir string

	Addr          string
	LogLevel      logrus.Level
	TargetVersion int
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathArgs []string

	Input           string `mapstructure:"input"`
	SourceBackend   string `mapstructure:"source-backend"`
	SourceDBConnect string `mapstructure:"source-db-connect"`
	SourceTable     string `mapstructure:"source-table"`
	Select          string `mapstructure:"select"`
	Threshold       int    `mapstructure:"threshold"`
	QueueSize       int    `mapstructure:"queue-size"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Precision       int    `mapstructure:"precision"`
	Width           int    `mapstructure:"width"`
	Color           string `mapstructure:"color"`
	Render          string `mapstructure:"render"`
	RenderDir       string `mapstructure:"render-dir"`
	Addr            string `mapstructure:"addr"`
	LogLevel        string `mapstructure:"log-level"`
	TargetVersion   int    `mapstructure:"target-version"`
}

// Clone returns a deep copy of the config so callers like the MCP handlers can
// override fields per request.
func (c *Config) Clone() *Config {
	clone := *c
	if c.InputPaths != nil {
		clone.InputPaths = append([]string(nil), c.InputPaths...)
	}
	if c.Selected != nil {
		clone.Selected = append([]string(nil), c.Selected...)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := ValidateSourceConfig(cfg, input); err != nil {
		return err
	}
	if cfg.SourceBackend == schema.FileBackend && len(cfg.InputPaths) == 0 {
		return fmt.Errorf("at least one input file is required for the %s backend", schema.FileBackend)
	}
	return nil
}

// ProcessAndValidateSource validates the settings of the source subcommands,
// which only work against a SQL backend and never read input files.
func ProcessAndValidateSource(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := ValidateSourceConfig(cfg, input); err != nil {
		return err
	}
	if !cfg.SourceBackend.IsDatabase() {
		return fmt.Errorf("source commands need a database backend (sqlite, mysql, postgresql), got %s", cfg.SourceBackend)
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs transfers and checks the scalar settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	cfg.TargetVersion = input.TargetVersion
	cfg.Selected = SplitList(input.Select)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Threshold Validation ---
	if input.Threshold <= 0 || input.Threshold > MaxThreshold {
		return fmt.Errorf("threshold must be greater than 0 and cannot exceed %d (received %d)", MaxThreshold, input.Threshold)
	}
	cfg.Threshold = input.Threshold

	// --- 2. Queue Validation ---
	if input.QueueSize <= 0 {
		return fmt.Errorf("queue-size must be greater than 0 (received %d)", input.QueueSize)
	}
	cfg.QueueSize = input.QueueSize

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 1 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 4. Render Validation ---
	render := strings.ToLower(input.Render)
	if render == "" {
		render = string(schema.NoRender)
	}
	cfg.Render = schema.RenderFormat(render)
	if _, ok := schema.ValidRenderFormats[cfg.Render]; !ok {
		return fmt.Errorf("invalid render format '%s'. must be none, html, png, svg", input.Render)
	}
	cfg.RenderDir = input.RenderDir
	if cfg.RenderDir == "" {
		cfg.RenderDir = DefaultRenderDir
	}

	// --- 5. Log Level Validation ---
	level := input.LogLevel
	if level == "" {
		level = DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}
	cfg.LogLevel = lvl

	return nil
}

// ValidateSourceConfig resolves the record source settings. It is also used on its
// own by the source subcommands, which do not need the charting settings.
func ValidateSourceConfig(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(input.SourceBackend)
	if backend == "" {
		backend = string(schema.FileBackend)
	}
	cfg.SourceBackend = schema.SourceBackend(backend)
	if _, ok := schema.ValidSourceBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source backend '%s'. must be file, sqlite, mysql, postgresql", input.SourceBackend)
	}

	cfg.SourceDBConnect = input.SourceDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SourceBackend, cfg.SourceDBConnect); err != nil {
		return err
	}

	cfg.SourceTable = input.SourceTable
	if cfg.SourceTable == "" {
		cfg.SourceTable = DefaultSourceTable
	}

	paths := append([]string(nil), input.InputPathArgs...)
	paths = append(paths, SplitList(input.Input)...)
	cfg.InputPaths = cfg.InputPaths[:0]
	for _, p := range paths {
		cfg.InputPaths = append(cfg.InputPaths, filepath.Clean(p))
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.SourceBackend, connStr string) error {
	switch backend {
	case schema.FileBackend, schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		dsn, err := mysql.ParseDSN(connStr)
		if err != nil {
			return fmt.Errorf("invalid MySQL connection string: %w", err)
		}
		if dsn.DBName == "" {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
		if _, err := pgx.ParseConfig(connStr); err != nil {
			return fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
	}
	return nil
}
