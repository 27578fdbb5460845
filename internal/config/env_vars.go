package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	backendURLVar  = "SPOTDESK_BACKEND_URL"
	httpTimeoutVar = "SPOTDESK_HTTP_TIMEOUT"
	credsPathVar   = "SPOTDESK_CREDENTIALS"
	credsSecretVar = "SPOTDESK_CREDENTIALS_SECRET"
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
)

const defaultHTTPTimeout = 15 * time.Second

type EnvVars struct {
	file *FileValues
}

var _ Config = EnvVars{}

func (e EnvVars) GetBackendBaseURL() string {
	return e.get(backendURLVar, e.fileBackendURL(), "http://localhost:4000/api")
}

// GetHTTPTimeout returns the deadline applied to every backend call. A
// malformed value falls back to the default rather than disabling timeouts.
func (e EnvVars) GetHTTPTimeout() time.Duration {
	raw := e.get(httpTimeoutVar, e.fileHTTPTimeout(), "")
	if raw == "" {
		return defaultHTTPTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultHTTPTimeout
	}
	return d
}

func (e EnvVars) GetCredentialsPath() string {
	if v := e.get(credsPathVar, e.fileCredentialsPath(), ""); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".spotdesk", "credentials.json")
	}
	return filepath.Join(home, ".spotdesk", "credentials.json")
}

func (e EnvVars) GetCredentialsSecret() string {
	return e.get(credsSecretVar, e.fileCredentialsSecret(), "")
}

func (e EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "7180")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Spotdesk")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// get resolves a setting: environment first, then the YAML file, then default.
func (e EnvVars) get(envVar, fileValue, defaultValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
