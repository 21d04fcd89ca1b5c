package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig marks a configuration that loaded but failed Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, env or decoding failure.
	ErrLoadConfig = errors.New("load config failed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
