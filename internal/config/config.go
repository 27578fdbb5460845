package config

import "time"

type Config interface {
	BackendConfig
	StorageConfig
	GatewayConfig
}

// BackendConfig describes how to reach the external marketplace API.
type BackendConfig interface {
	GetBackendBaseURL() string
	GetHTTPTimeout() time.Duration
}

// StorageConfig describes where the token pair is persisted.
type StorageConfig interface {
	GetCredentialsPath() string
	GetCredentialsSecret() string
}

// GatewayConfig configures the local companion gateway.
type GatewayConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

// New loads configuration from the environment, an optional .env file in the
// working directory, and an optional YAML file pointed at by SPOTDESK_CONFIG.
// Environment variables always win over file values.
func New() Config {
	loadDotEnv()
	return mainConfig{EnvVars{file: loadFileValues()}}
}
