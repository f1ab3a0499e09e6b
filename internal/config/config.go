package config

import (
	"os"
	"strconv"
	"strings"

	"riskhypo/adapters/tabular"
	domainDataset "riskhypo/domain/dataset"
	"riskhypo/domain/hypothesis"
	"riskhypo/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig
	Analysis  AnalysisConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Profiling ProfilingConfig
	LogLevel  string `validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE"`
}

// DataConfig describes the input file
type DataConfig struct {
	File        string `validate:"omitempty,file"`
	Delimiter   string `validate:"required"`
	Sheet       string `validate:"required"`
	DateColumns []string
}

// AnalysisConfig tunes hypothesis evaluation
type AnalysisConfig struct {
	MinGroupSize   int    `validate:"gte=2"`
	HypothesesFile string `validate:"omitempty,file"`
	ParallelTests  bool
	MaxWorkers     int `validate:"gte=1,lte=64"`
	AddDateParts   bool
}

// DatabaseConfig holds database connection settings. An empty URL disables persistence.
type DatabaseConfig struct {
	URL string `validate:"omitempty,url"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string `validate:"required,numeric"`
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string `validate:"required_if=Enabled true"`
	Enabled bool
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			File:        getEnvOrDefault("DATA_FILE", ""),
			Delimiter:   getEnvOrDefault("DATA_DELIMITER", "|"),
			Sheet:       getEnvOrDefault("DATA_SHEET", "Sheet1"),
			DateColumns: getEnvListOrDefault("DATE_COLUMNS", []string{domainDataset.FieldTransactionMonth, domainDataset.FieldVehicleIntroDate}),
		},
		Analysis: AnalysisConfig{
			MinGroupSize:   getEnvIntOrDefault("MIN_GROUP_SIZE", hypothesis.DefaultMinGroupSize),
			HypothesesFile: getEnvOrDefault("HYPOTHESES_FILE", ""),
			ParallelTests:  getEnvBoolOrDefault("PARALLEL_TESTS", false),
			MaxWorkers:     getEnvIntOrDefault("MAX_WORKERS", 4),
			AddDateParts:   getEnvBoolOrDefault("ADD_DATE_PARTS", false),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if _, ok := tabular.ParseDelimiter(c.Data.Delimiter); !ok {
		return errors.ConfigInvalid("DATA_DELIMITER must be a single character or one of tab, pipe, comma")
	}
	return nil
}

// ReaderConfig builds the tabular reader configuration for the data file
func (c *Config) ReaderConfig() tabular.ReaderConfig {
	rc := tabular.DefaultReaderConfig()
	rc.FilePath = c.Data.File
	if d, ok := tabular.ParseDelimiter(c.Data.Delimiter); ok {
		rc.Delimiter = d
	}
	rc.Sheet = c.Data.Sheet
	return rc
}

// Hypotheses returns the configured hypothesis list: the YAML file when set,
// otherwise the defaults
func (c *Config) Hypotheses() ([]hypothesis.Hypothesis, error) {
	if c.Analysis.HypothesesFile == "" {
		return hypothesis.DefaultHypotheses(), nil
	}
	return LoadHypothesesFile(c.Analysis.HypothesesFile)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
