package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const configFileVar = "SPOTDESK_CONFIG"

// FileValues mirrors the optional YAML config file. All fields are optional;
// anything unset falls through to environment variables or defaults.
type FileValues struct {
	BackendURL        string `yaml:"backendUrl"`
	HTTPTimeout       string `yaml:"httpTimeout"`
	CredentialsPath   string `yaml:"credentialsPath"`
	CredentialsSecret string `yaml:"credentialsSecret"`
}

func loadDotEnv() {
	// Missing .env is the normal case, only log unexpected failures.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Msg("skipping .env")
	}
}

func loadFileValues() *FileValues {
	path := os.Getenv(configFileVar)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config file unreadable")
		return nil
	}
	var fv FileValues
	if err := yaml.Unmarshal(data, &fv); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config file invalid")
		return nil
	}
	return &fv
}

func (e EnvVars) fileBackendURL() string {
	if e.file == nil {
		return ""
	}
	return e.file.BackendURL
}

func (e EnvVars) fileHTTPTimeout() string {
	if e.file == nil {
		return ""
	}
	return e.file.HTTPTimeout
}

func (e EnvVars) fileCredentialsPath() string {
	if e.file == nil {
		return ""
	}
	return e.file.CredentialsPath
}

func (e EnvVars) fileCredentialsSecret() string {
	if e.file == nil {
		return ""
	}
	return e.file.CredentialsSecret
}
