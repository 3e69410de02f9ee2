package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file at the project root.
const FileName = "duesbook.yaml"

// Config represents the top-level duesbook.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Database     DatabaseConfig     `yaml:"database"`
	Invoices     InvoicesConfig     `yaml:"invoices"`
	Import       ImportConfig       `yaml:"import"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// OrganizationConfig is printed on reports and invoices.
type OrganizationConfig struct {
	Name         string `yaml:"name"`
	Address      string `yaml:"address,omitempty"`
	CityStateZip string `yaml:"city_state_zip,omitempty"`
}

// DatabaseConfig locates the ledger database. Relative paths resolve against the project root.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// InvoicesConfig controls invoice defaults.
type InvoicesConfig struct {
	PaymentTermsDays int `yaml:"payment_terms_days"`
}

// ImportConfig controls CSV transaction import.
type ImportConfig struct {
	InboxDir      string `yaml:"inbox_dir"`
	PaymentMethod string `yaml:"payment_method"`
	Notes         string `yaml:"notes"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load reads a duesbook.yaml file from disk, then applies environment overrides.
// A .env file beside the config is loaded first if present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envPath, err)
	}
	cfg.applyEnv()
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
func Default(orgName string) *Config {
	return &Config{
		Organization: OrganizationConfig{
			Name: orgName,
		},
		Database: DatabaseConfig{
			Path: "duesbook.db",
		},
		Invoices: InvoicesConfig{
			PaymentTermsDays: 30,
		},
		Import: ImportConfig{
			InboxDir:      "import",
			PaymentMethod: "bank_import",
			Notes:         "Imported from CSV",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DatabasePath resolves the database path against the project root.
func (c *Config) DatabasePath(root string) string {
	return resolve(root, c.Database.Path)
}

// InboxPath resolves the import inbox against the project root.
func (c *Config) InboxPath(root string) string {
	return resolve(root, c.Import.InboxDir)
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Organization.Name) == "" {
		problems = append(problems, "organization name cannot be empty")
	}
	if c.Database.Path == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if c.Invoices.PaymentTermsDays < 0 || c.Invoices.PaymentTermsDays > 365 {
		problems = append(problems, fmt.Sprintf("invalid payment terms %d: must be between 0 and 365 days", c.Invoices.PaymentTermsDays))
	}
	if c.Import.InboxDir == "" {
		problems = append(problems, "import inbox directory cannot be empty")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of [console json]", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.Path = getEnv("DUESBOOK_DB_PATH", c.Database.Path)
	c.Logging.Level = getEnv("DUESBOOK_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("DUESBOOK_LOG_FORMAT", c.Logging.Format)
	c.Invoices.PaymentTermsDays = getEnvInt("DUESBOOK_PAYMENT_TERMS_DAYS", c.Invoices.PaymentTermsDays)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
