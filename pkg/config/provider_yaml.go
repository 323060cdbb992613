package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	envFile  string
}

// NewYAMLProvider creates a new YAML configuration provider. Environment
// overrides are read from the process and from a .env file in the working
// directory, if one exists.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
		envFile:  ".env",
	}
}

// WithEnvFile sets the dotenv file consulted before reading the environment
func (y *YAMLProvider) WithEnvFile(path string) *YAMLProvider {
	y.envFile = path
	return y
}

// LoadConfig loads the complete configuration from the YAML file. A missing
// file yields the defaults.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	config := Defaults()

	cfgFile, err := os.ReadFile(y.filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, &ConfigError{Field: y.filename, Msg: "unable to read config file", Err: err}
	default:
		if err := yaml.Unmarshal(cfgFile, config); err != nil {
			return nil, &ConfigError{Field: y.filename, Msg: "invalid YAML", Err: err}
		}
	}

	if err := loadEnv(config, y.envFile); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
