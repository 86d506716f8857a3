// Package config loads the graphviz server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	HTTPAddr  string `yaml:"http_addr" validate:"required"`
	AuthToken string `yaml:"auth_token"`

	DataDir  string `yaml:"data_dir" validate:"required"`
	Filename string `yaml:"filename" validate:"required,excludesall=/\\"`

	// AutoSave writes the default graph file once both limits are met.
	// Zero in either field disables it.
	AutoSaveInterval  time.Duration `yaml:"autosave_interval" validate:"min=0"`
	AutoSaveThreshold int64         `yaml:"autosave_threshold" validate:"min=0"`

	Layout string `yaml:"layout" validate:"oneof=spring circular"`

	// MCP serves the MCP tools over stdio instead of HTTP.
	MCP bool `yaml:"mcp"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`

	// File enables a rotating log file instead of stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
}

// DefaultConfig returns a working configuration for a local session.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:          ":9191",
		DataDir:           "graphviz_data",
		Filename:          "graph.json",
		AutoSaveInterval:  30 * time.Second,
		AutoSaveThreshold: 1,
		Layout:            "spring",
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxAgeDays: 28,
			MaxBackups: 3,
		},
	}
}

var validate = validator.New()

// LoadConfig reads the YAML configuration file using strict parsing.
// Fields missing from the file keep their defaults. An empty path returns
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig() // Start with defaults

	if path == "" {
		return cfg, nil
	}

	// 1. Open File
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	// 2. Setup Strict Decoder
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	// 3. Decode (an empty file is not an error)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("YAML syntax error in config: %w", err)
	}

	// 4. Validate
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the field constraints declared in the struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "excludesall":
		return fmt.Sprintf("%s must be a bare file name", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
