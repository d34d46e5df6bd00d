// =============================================================================
// Sales Dashboard - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration from
// a YAML file. Every setting has a default, so the file is optional: when
// the default path does not exist the defaults are used as-is.
//
// CONFIGURATION FILE (config.yaml):
//
//   output_dir: ./reports
//   output_name_format: "{source}_{timestamp}_{uuid}"
//   log_level: info
//   log_format: console
//   csv_delimiter: ","
//   date_layouts:
//     - "02/01/2006"
//   server:
//     addr: ":8080"
//     max_upload_mb: 20
//     max_datasets: 32
//     allowed_origins: ["*"]
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory where report files are written.
	// Default: "./reports"
	OutputDir string `yaml:"output_dir"`

	// OutputNameFormat defines the report file name (without extension).
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {source}    - Uploaded file name without extension
	// Default: "{source}_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects "console" (human readable) or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// PARSING SETTINGS
	// =========================================================================

	// DateLayouts are extra Go time layouts accepted for the Date column.
	// They are tried before the built-in layouts.
	DateLayouts []string `yaml:"date_layouts"`

	// CSVDelimiter is the field separator for CSV uploads.
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadMB limits the size of an uploaded file.
	// Default: 20
	MaxUploadMB int64 `yaml:"max_upload_mb"`

	// MaxDatasets bounds how many uploaded datasets are kept in memory.
	// The oldest dataset is evicted first.
	// Default: 32
	MaxDatasets int `yaml:"max_datasets"`

	// AllowedOrigins lists CORS origins. "*" allows any origin.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or a value is invalid.
//
// A missing file at DefaultPath is not an error; defaults are returned.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && configPath == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration document.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./reports"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{source}_{timestamp}"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.CSVDelimiter == "" {
		config.CSVDelimiter = ","
	}
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.MaxUploadMB == 0 {
		config.Server.MaxUploadMB = 20
	}
	if config.Server.MaxDatasets == 0 {
		config.Server.MaxDatasets = 32
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", config.LogLevel)
	}

	switch strings.ToLower(config.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json (got %q)", config.LogFormat)
	}

	if config.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	if config.Server.MaxDatasets < 0 {
		return fmt.Errorf("server.max_datasets must be positive")
	}

	for _, origin := range config.Server.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("server.allowed_origins entries must be \"*\" or start with http:// or https:// (got %q)", origin)
		}
	}

	for _, layout := range config.DateLayouts {
		if strings.TrimSpace(layout) == "" {
			return fmt.Errorf("date_layouts must not contain empty entries")
		}
	}

	return nil
}
