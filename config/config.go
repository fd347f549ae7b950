package config

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"clover" validate:"required"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// Files
	PrimaryPath   string `env:"PRIMARY_PATH" env-default:"VIRGINIA AtoZ CORRECTED ADDRESSES 11.28.2024.csv" validate:"required"`
	SecondaryPath string `env:"SECONDARY_PATH" env-default:"EFGH CORRECTED ADDRESSES.csv" validate:"required"`
	OutputPath    string `env:"OUTPUT_PATH" env-default:"output.csv" validate:"required"`
	CSVDelimiter  string `env:"CSV_DELIMITER" env-default:""` // empty selects by file extension
	ColumnMapping string `env:"COLUMN_MAPPING_PATH" env-default:""`

	// Matching
	AddressMatchThreshold float64 `env:"ADDRESS_MATCH_THRESHOLD" env-default:"80" validate:"gte=0,lte=100"`
	NameMatchThreshold    float64 `env:"NAME_MATCH_THRESHOLD" env-default:"80" validate:"gte=0,lte=100"`
	SimilarityMetric      string  `env:"SIMILARITY_METRIC" env-default:"indel" validate:"oneof=indel levenshtein"`
	MatchWorkerCount      int     `env:"MATCH_WORKER_COUNT" env-default:"4" validate:"gte=1"`
	MatchWindowSize       int     `env:"MATCH_WINDOW_SIZE" env-default:"512" validate:"gte=1"`

	// Output
	FlushBatchSize int `env:"FLUSH_BATCH_SIZE" env-default:"100" validate:"gte=1"`

	TracingEnabled bool `env:"TRACING_ENABLED" env-default:"false"`
}

var validate = validator.New()

// Load reads the given .env files (or ./.env when none are given) and then the environment.
// Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Delimiter(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Delimiter returns the configured field separator, or 0 when it should follow the file extension.
// "tab" and "\t" both select a tab.
func (c *Config) Delimiter() (rune, error) {
	switch c.CSVDelimiter {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}

	r, size := utf8.DecodeRuneInString(c.CSVDelimiter)
	if size != len(c.CSVDelimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("delimiter %q must be a single character other than a quote or newline", c.CSVDelimiter)
	}
	return r, nil
}
