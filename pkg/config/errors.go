package config

import "fmt"

// ConfigError reports a configuration problem that prevents startup
type ConfigError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Field, e.Msg, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Field, e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
