package config

import (
	"crypto/tls"
	"time"
)

const (
	DefaultModelEndpoint   = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultModelName       = "google/gemini-2.5-flash"
	DefaultTemperature     = 0.3
	DefaultAPIKeyEnv       = "CODESHIELD_API_KEY"
	DefaultServerAddress   = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int           // Number of retries for failed requests
	RetryWaitTime    time.Duration // Wait time between retries
	RetryMaxWaitTime time.Duration // Maximum wait time for retries
	Timeout          time.Duration // Timeout for requests
	TLSClientConfig  *tls.Config   // TLS configuration
	Proxy            string        // Proxy address
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool // Flag to enable Resty debug mode
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
// Model calls are not retried unless retry_count is set explicitly.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       0,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          60 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: false,
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client, extending the base HTTP configuration.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
		Debug:          false,
	}
}

// ResolvedModel is the model section with every default applied.
type ResolvedModel struct {
	Endpoint    string
	Name        string
	Temperature float64
	APIKeyEnv   string
}

// ModelSettings applies defaults to the model section.
func ModelSettings(cfg *Config) ResolvedModel {
	resolved := ResolvedModel{
		Endpoint:    DefaultModelEndpoint,
		Name:        DefaultModelName,
		Temperature: DefaultTemperature,
		APIKeyEnv:   DefaultAPIKeyEnv,
	}
	if cfg == nil {
		return resolved
	}
	resolved.Endpoint = SetThen(cfg.Model.Endpoint, resolved.Endpoint)
	resolved.Name = SetThen(cfg.Model.Name, resolved.Name)
	resolved.APIKeyEnv = SetThen(cfg.Model.APIKeyEnv, resolved.APIKeyEnv)
	if cfg.Model.Temperature != nil {
		resolved.Temperature = *cfg.Model.Temperature
	}
	return resolved
}

// ServerSettings applies defaults to the server section.
func ServerSettings(cfg *Config) Server {
	if cfg == nil {
		return Server{
			Address:         DefaultServerAddress,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
		}
	}
	return Server{
		Address:         SetThen(cfg.Server.Address, DefaultServerAddress),
		MaxBodyBytes:    SetThen(cfg.Server.MaxBodyBytes, int64(DefaultMaxBodyBytes)),
		ShutdownTimeout: SetThen(cfg.Server.ShutdownTimeout, DefaultShutdownTimeout),
	}
}
