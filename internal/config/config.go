package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/flujo-dev/flujo/internal/importer"
	"github.com/flujo-dev/flujo/internal/projection"
	"github.com/flujo-dev/flujo/internal/reconcile"
	"github.com/flujo-dev/flujo/internal/rules"
)

// FileName is the config file at the root of a flujo project.
const FileName = "flujo.yaml"

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Environment overrides, applied after flujo.yaml.
const (
	EnvLogLevel     = "FLUJO_LOG_LEVEL"
	EnvRulesVariant = "FLUJO_RULES_VARIANT"
	EnvExportFormat = "FLUJO_EXPORT_FORMAT"
)

// Config represents the top-level flujo.yaml configuration.
type Config struct {
	Business   BusinessConfig   `yaml:"business"`
	Rules      RulesConfig      `yaml:"rules"`
	Columns    ColumnsConfig    `yaml:"columns"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Export     ExportConfig     `yaml:"export"`
	Git        GitConfig        `yaml:"git"`
	Log        LogConfig        `yaml:"log"`
}

// BusinessConfig identifies the business whose statements are processed.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// RulesConfig selects the rule table. Path wins over Variant when the file
// exists.
type RulesConfig struct {
	Variant string `yaml:"variant"`
	Path    string `yaml:"path"`
}

// ColumnsConfig names the statement and projection columns.
type ColumnsConfig struct {
	Date           string `yaml:"date"`
	Description    string `yaml:"description"`
	Credit         string `yaml:"credit"`
	Debit          string `yaml:"debit"`
	Balance        string `yaml:"balance"`
	DecimalComma   bool   `yaml:"decimal_comma"`
	Classification string `yaml:"classification"` // projection matrix
}

// ThresholdsConfig sets the variance ratios below which a month is flagged.
type ThresholdsConfig struct {
	Attention float64 `yaml:"attention"`
	Critical  float64 `yaml:"critical"`
}

// ExportConfig controls where and how reports are written.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig sets the default log level; --log-level overrides it.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a flujo.yaml file from disk. Fields the file omits keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", rules.VariantComparativo)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadDir loads dir/flujo.yaml, falling back to defaults when the project
// has none, then applies dir/.env and the process environment.
func LoadDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default("", rules.VariantComparativo), nil
	}
	if err != nil {
		return nil, err
	}
	if err := LoadEnvFile(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, variant string) *Config {
	cols := importer.DefaultColumns()
	th := reconcile.DefaultThresholds()
	return &Config{
		Business: BusinessConfig{Name: businessName},
		Rules: RulesConfig{
			Variant: variant,
			Path:    rules.DefaultPath,
		},
		Columns: ColumnsConfig{
			Date:           cols.Date,
			Description:    cols.Description,
			Credit:         cols.Credit,
			Debit:          cols.Debit,
			Balance:        cols.Balance,
			Classification: projection.DefaultClassificationColumn,
		},
		Thresholds: ThresholdsConfig{
			Attention: th.Attention.InexactFloat64(),
			Critical:  th.Critical.InexactFloat64(),
		},
		Export: ExportConfig{
			Dir:    "exports",
			Format: FormatCSV,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "flujo",
			AuthorEmail: "flujo@localhost",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the FLUJO_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvRulesVariant); ok && v != "" {
		c.Rules.Variant = v
	}
	if v, ok := lookup(EnvExportFormat); ok && v != "" {
		c.Export.Format = strings.ToLower(v)
	}
}

// Validate checks the values commands depend on.
func (c *Config) Validate() error {
	var problems []string
	if c.Rules.Variant != "" && !rules.IsVariant(c.Rules.Variant) {
		problems = append(problems, fmt.Sprintf("unknown rules variant %q (want %s)", c.Rules.Variant, strings.Join(rules.Variants(), " or ")))
	}
	if c.Export.Format != FormatCSV && c.Export.Format != FormatXLSX {
		problems = append(problems, fmt.Sprintf("unknown export format %q (want csv or xlsx)", c.Export.Format))
	}
	if c.Thresholds.Critical > c.Thresholds.Attention {
		problems = append(problems, fmt.Sprintf("critical threshold %v is above attention threshold %v", c.Thresholds.Critical, c.Thresholds.Attention))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// StatementColumns returns the statement parser column mapping. Blank
// fields fall back to the defaults.
func (c *Config) StatementColumns() importer.Columns {
	cols := importer.DefaultColumns()
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&cols.Date, c.Columns.Date)
	set(&cols.Description, c.Columns.Description)
	set(&cols.Credit, c.Columns.Credit)
	set(&cols.Debit, c.Columns.Debit)
	set(&cols.Balance, c.Columns.Balance)
	return cols
}

// StatementParser returns a parser for the configured statement layout.
func (c *Config) StatementParser() *importer.StatementParser {
	p := importer.NewStatementParser(c.StatementColumns())
	p.DecimalComma = c.Columns.DecimalComma
	return p
}

// ProjectionOptions returns the projection reader settings. Amounts use the
// same decimal convention as the statement.
func (c *Config) ProjectionOptions() projection.Options {
	return projection.Options{
		Column:       c.ClassificationColumn(),
		DecimalComma: c.Columns.DecimalComma,
	}
}

// ClassificationColumn returns the projection label column.
func (c *Config) ClassificationColumn() string {
	if strings.TrimSpace(c.Columns.Classification) == "" {
		return projection.DefaultClassificationColumn
	}
	return c.Columns.Classification
}

// SeverityThresholds converts the configured ratios for the evaluator.
func (c *Config) SeverityThresholds() reconcile.Thresholds {
	return reconcile.Thresholds{
		Attention: decimal.NewFromFloat(c.Thresholds.Attention),
		Critical:  decimal.NewFromFloat(c.Thresholds.Critical),
	}
}
