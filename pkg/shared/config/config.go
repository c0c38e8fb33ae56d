package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigPath is used when neither --config nor CODESHIELD_CONFIG is set.
const DefaultConfigPath = "config.yml"

type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Model      Model      `yaml:"model"`
	Server     Server     `yaml:"server"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Model describes the hosted chat-completions gateway the analysis is delegated to.
type Model struct {
	Endpoint    string   `yaml:"endpoint"`
	Name        string   `yaml:"name"`
	Temperature *float64 `yaml:"temperature"`
	APIKeyEnv   string   `yaml:"api_key_env"`
}

type Server struct {
	Address         string        `yaml:"address"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the YAML configuration from configPath.
// A missing file at the default location yields an empty configuration so that
// every value falls back to its built-in default; a missing explicit path is an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	explicit := true
	if configPath == "" {
		configPath = os.Getenv("CODESHIELD_CONFIG")
	}
	if configPath == "" {
		configPath = DefaultConfigPath
		explicit = false
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return cfg, nil
}
