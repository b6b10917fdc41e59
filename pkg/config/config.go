package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the wallet-lens configuration
type Config struct {
	Extract Extract `yaml:"extract"`
	Output  Output  `yaml:"output"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Extract contains engine options
type Extract struct {
	Strategy           string `yaml:"strategy"`
	Format             string `yaml:"format"`
	SecurityLevel      int    `yaml:"security_level"`
	AutomatedDetection bool   `yaml:"automated_detection"`
	Marker             string `yaml:"marker"`
	MarkerHex          string `yaml:"marker_hex"`
	WindowLen          int    `yaml:"window_len"`
	KeyLen             int    `yaml:"key_len"`
	Workers            int    `yaml:"workers"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

// Output contains report rendering options
type Output struct {
	Path    string `yaml:"path"`
	JSON    bool   `yaml:"json"`
	NoColor bool   `yaml:"no_color"`
	Verbose bool   `yaml:"verbose"`
}

// Server contains web front end options
type Server struct {
	Bind           string `yaml:"bind"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Extract: Extract{
			Strategy:       "",
			Format:         "auto",
			SecurityLevel:  2,
			Marker:         "mkey",
			WindowLen:      5,
			KeyLen:         5,
			Workers:        1,
			TimeoutSeconds: 30,
		},
		Server: Server{
			Bind:           "127.0.0.1",
			Port:           3000,
			MaxUploadBytes: 64 << 20,
		},
		Logging: Logging{
			Level: "warn",
		},
	}
}

// LoadConfig loads configuration from the specified path on top of the
// defaults, so a file only needs the keys it changes.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration as YAML
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
