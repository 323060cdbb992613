package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings
const (
	EnvToken     = "API_TOKEN"
	EnvBaseURL   = "MESONET_BASE_URL"
	EnvOutputDir = "MESONET_OUTPUT_DIR"
	EnvWorkers   = "MESONET_WORKERS"
)

// loadEnv applies environment overrides to config. Variables already set in
// the process take precedence over the dotenv file.
func loadEnv(config *ConfigData, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &ConfigError{Field: envFile, Msg: "unable to load env file", Err: err}
		}
	}

	config.API.Token = os.Getenv(EnvToken)

	if v := os.Getenv(EnvBaseURL); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		config.Output.Dir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: EnvWorkers, Msg: "must be an integer", Err: err}
		}
		config.API.Workers = n
	}
	return nil
}
