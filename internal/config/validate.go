package config

import (
	"fmt"
	"os"
	"time"
)

const (
	MinSampleRate = 8000
	MaxSampleRate = 48000
	MinAPITimeout = 1 * time.Second
	MaxAPITimeout = 30 * time.Second
)

type check func(Config) *ConfigError

// startupChecks run in order; numeric checks precede the filesystem check.
var startupChecks = []check{
	checkSampleRate,
	checkPinConflicts,
	checkAPITimeout,
	checkEnvFile,
}

// Validate enforces the startup invariants and returns the first violation.
// The returned error is a *ConfigError.
func Validate(cfg Config) error {
	for _, c := range startupChecks {
		if err := c(cfg); err != nil {
			return err
		}
	}
	return nil
}

func checkSampleRate(cfg Config) *ConfigError {
	rate := cfg.Audio.SampleRate
	if rate < MinSampleRate || rate > MaxSampleRate {
		return &ConfigError{
			Kind:    KindSampleRateOutOfRange,
			Field:   "audio.sample_rate",
			Message: fmt.Sprintf("audio.sample_rate must be between %d and %d Hz, got %d", MinSampleRate, MaxSampleRate, rate),
		}
	}
	return nil
}

func checkPinConflicts(cfg Config) *ConfigError {
	owner := make(map[int]string)
	for _, r := range cfg.Pins.Roles() {
		if first, taken := owner[r.Pin]; taken {
			return &ConfigError{
				Kind:    KindPinConflict,
				Field:   "gpio_pins." + r.Role,
				Roles:   []string{first, r.Role},
				Message: fmt.Sprintf("gpio pin conflict: %s and %s both use pin %d", first, r.Role, r.Pin),
			}
		}
		owner[r.Pin] = r.Role
	}
	return nil
}

func checkAPITimeout(cfg Config) *ConfigError {
	timeout := cfg.API.Timeout
	if timeout < MinAPITimeout || timeout > MaxAPITimeout {
		return &ConfigError{
			Kind:    KindTimeoutOutOfRange,
			Field:   "api.timeout",
			Message: fmt.Sprintf("api.timeout must be between %s and %s, got %s", MinAPITimeout, MaxAPITimeout, timeout),
		}
	}
	return nil
}

func checkEnvFile(cfg Config) *ConfigError {
	return requireFile("paths.env_file", cfg.Paths.EnvFile)
}

// requireFile fails unless path exists and is not a directory.
func requireFile(field string, path string) *ConfigError {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("%s is a directory", path)
	}
	return &ConfigError{
		Kind:    KindMissingRequiredFile,
		Field:   field,
		Path:    path,
		Message: fmt.Sprintf("required file missing: %s", path),
		Err:     err,
	}
}
