package config

import (
	"fmt"
	"slices"
)

var validBitDepths = []int{8, 16, 24, 32}

// Audit reports every violated invariant instead of stopping at the first.
// It covers the startup checks plus group invariants that do not gate startup.
// Startup must use Validate; Audit is for operator diagnostics.
func Audit(cfg Config) []error {
	var errs []error
	for _, c := range startupChecks {
		if err := c(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range advisoryChecks {
		errs = append(errs, c(cfg)...)
	}
	return errs
}

var advisoryChecks = []func(Config) []error{
	auditAudio,
	auditPins,
	auditI2C,
	auditAPI,
	auditPerformance,
}

func invalid(field string, format string, args ...any) error {
	return &ConfigError{
		Kind:    KindInvalidValue,
		Field:   field,
		Message: field + " " + fmt.Sprintf(format, args...),
	}
}

func auditAudio(cfg Config) []error {
	a := cfg.Audio
	var errs []error
	if a.Channels <= 0 {
		errs = append(errs, invalid("audio.channels", "must be > 0, got %d", a.Channels))
	}
	if !slices.Contains(validBitDepths, a.BitDepth) {
		errs = append(errs, invalid("audio.bit_depth", "must be one of %v, got %d", validBitDepths, a.BitDepth))
	}
	if a.HotwordWindow <= 0 {
		errs = append(errs, invalid("audio.hotword_window", "must be > 0, got %s", a.HotwordWindow))
	}
	if a.HotwordWindow > a.QueryWindow {
		errs = append(errs, invalid("audio.hotword_window", "must not exceed audio.query_window (%s > %s)", a.HotwordWindow, a.QueryWindow))
	}
	if a.QueryWindow > a.MaxRecording {
		errs = append(errs, invalid("audio.query_window", "must not exceed audio.max_recording (%s > %s)", a.QueryWindow, a.MaxRecording))
	}
	if a.NoiseThresholdDB >= 0 {
		errs = append(errs, invalid("audio.noise_threshold_db", "must be negative, got %g", a.NoiseThresholdDB))
	}
	if a.VADAggressiveness < 0 || a.VADAggressiveness > 3 {
		errs = append(errs, invalid("audio.vad_aggressiveness", "must be between 0 and 3, got %d", a.VADAggressiveness))
	}
	return errs
}

func auditPins(cfg Config) []error {
	var errs []error
	for _, r := range cfg.Pins.Roles() {
		if r.Pin < 0 {
			errs = append(errs, invalid("gpio_pins."+r.Role, "must be a non-negative BCM pin, got %d", r.Pin))
		}
	}
	return errs
}

func auditI2C(cfg Config) []error {
	var errs []error
	owner := make(map[uint8]string)
	for _, d := range cfg.I2C.Devices() {
		// 0x00-0x07 and 0x78-0x7F are reserved on a 7-bit bus.
		if d.Address < 0x08 || d.Address > 0x77 {
			errs = append(errs, invalid("i2c_devices."+d.Name, "address 0x%02X outside 0x08-0x77", d.Address))
		}
		if first, taken := owner[d.Address]; taken {
			errs = append(errs, invalid("i2c_devices."+d.Name, "shares address 0x%02X with %s", d.Address, first))
			continue
		}
		owner[d.Address] = d.Name
	}
	return errs
}

func auditAPI(cfg Config) []error {
	api := cfg.API
	var errs []error
	if api.Model == "" {
		errs = append(errs, invalid("api.model", "must not be empty"))
	}
	if api.Temperature < 0 || api.Temperature > 2 {
		errs = append(errs, invalid("api.temperature", "must be between 0.0 and 2.0, got %g", api.Temperature))
	}
	if api.MaxOutputTokens <= 0 {
		errs = append(errs, invalid("api.max_tokens", "must be > 0, got %d", api.MaxOutputTokens))
	}
	if api.MaxRetries < 0 {
		errs = append(errs, invalid("api.max_retries", "must be >= 0, got %d", api.MaxRetries))
	}
	if api.RetryDelay < 0 {
		errs = append(errs, invalid("api.retry_delay", "must be >= 0, got %s", api.RetryDelay))
	}
	if api.BackoffMultiplier < 1 {
		errs = append(errs, invalid("api.backoff_factor", "must be >= 1.0, got %g", api.BackoffMultiplier))
	}
	if api.RequestsPerMinute <= 0 {
		errs = append(errs, invalid("api.requests_per_minute", "must be > 0, got %d", api.RequestsPerMinute))
	}
	if api.Cooldown < 0 {
		errs = append(errs, invalid("api.cooldown_period", "must be >= 0, got %s", api.Cooldown))
	}
	return errs
}

func auditPerformance(cfg Config) []error {
	p := cfg.Performance
	positive := []struct {
		field string
		value int
	}{
		{"performance.worker_threads", p.WorkerThreads},
		{"performance.queue_size", p.QueueSize},
		{"performance.max_cache_size", p.MaxCacheEntries},
		{"performance.audio_buffer_size", p.AudioBufferSamples},
		{"performance.max_memory_mb", p.MaxMemoryMB},
	}

	var errs []error
	for _, v := range positive {
		if v.value <= 0 {
			errs = append(errs, invalid(v.field, "must be > 0, got %d", v.value))
		}
	}
	if p.CacheTTL <= 0 {
		errs = append(errs, invalid("performance.cache_ttl", "must be > 0, got %s", p.CacheTTL))
	}
	return errs
}
