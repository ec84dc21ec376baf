// Package config declares vesta's device configuration groups, bootstraps the
// data directories they reference, and validates startup invariants.
package config

import "time"

// Config is the full set of device configuration groups.
type Config struct {
	Audio       AudioSettings       `yaml:"audio"`
	Pins        PinAssignment       `yaml:"gpio_pins"`
	I2C         DeviceAddresses     `yaml:"i2c_devices"`
	API         RemoteAPISettings   `yaml:"api"`
	Paths       PathLayout          `yaml:"paths"`
	Performance PerformanceSettings `yaml:"performance"`
	Features    FeatureFlags        `yaml:"features"`
	Errors      ErrorCatalog        `yaml:"error_responses"`
}

// AudioSettings controls capture format, recording windows, and ALSA devices.
type AudioSettings struct {
	SampleRate        int           `yaml:"sample_rate"`
	Channels          int           `yaml:"channels"`
	BitDepth          int           `yaml:"bit_depth"`
	HotwordWindow     time.Duration `yaml:"hotword_window"`
	QueryWindow       time.Duration `yaml:"query_window"`
	MaxRecording      time.Duration `yaml:"max_recording"`
	InputDevice       string        `yaml:"input_device"`
	OutputDevice      string        `yaml:"output_device"`
	NoiseThresholdDB  float64       `yaml:"noise_threshold_db"`
	VADAggressiveness int           `yaml:"vad_aggressiveness"`
}

// PinAssignment maps board functions to BCM GPIO numbers.
// Values must match the PCB revision; two roles may never share a pin.
type PinAssignment struct {
	I2SBitClock  int `yaml:"i2s_bclk"`
	I2SWordClock int `yaml:"i2s_lrclk"`
	I2SData      int `yaml:"i2s_data"`
	I2CData      int `yaml:"i2c_sda"`
	I2CClock     int `yaml:"i2c_scl"`
	LEDData      int `yaml:"led_data"`
	LEDEnable    int `yaml:"led_enable"`
}

// PinRole is one named pin assignment.
type PinRole struct {
	Role string
	Pin  int
}

// Roles returns every assignment in declaration order.
func (p PinAssignment) Roles() []PinRole {
	return []PinRole{
		{Role: "i2s_bclk", Pin: p.I2SBitClock},
		{Role: "i2s_lrclk", Pin: p.I2SWordClock},
		{Role: "i2s_data", Pin: p.I2SData},
		{Role: "i2c_sda", Pin: p.I2CData},
		{Role: "i2c_scl", Pin: p.I2CClock},
		{Role: "led_data", Pin: p.LEDData},
		{Role: "led_enable", Pin: p.LEDEnable},
	}
}

// DeviceAddresses holds 7-bit I2C addresses of attached peripherals.
type DeviceAddresses struct {
	TouchSensor uint8 `yaml:"touch_sensor"`
	TempSensor  uint8 `yaml:"temp_sensor"`
}

// I2CDevice is one named bus peripheral.
type I2CDevice struct {
	Name    string
	Address uint8
}

// Devices returns every peripheral in declaration order.
func (d DeviceAddresses) Devices() []I2CDevice {
	return []I2CDevice{
		{Name: "touch_sensor", Address: d.TouchSensor},
		{Name: "temp_sensor", Address: d.TempSensor},
	}
}

// RemoteAPISettings controls completion requests, retries, and rate limiting.
type RemoteAPISettings struct {
	Model             string        `yaml:"model"`
	Temperature       float64       `yaml:"temperature"`
	MaxOutputTokens   int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	BackoffMultiplier float64       `yaml:"backoff_factor"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Cooldown          time.Duration `yaml:"cooldown_period"`
}

// PathLayout is the on-disk layout rooted at BaseDir.
type PathLayout struct {
	BaseDir string `yaml:"base_dir"`

	CacheDir  string `yaml:"cache_dir"`
	LogsDir   string `yaml:"logs_dir"`
	AudioDir  string `yaml:"audio_dir"`
	ConfigDir string `yaml:"config_dir"`

	EnvFile      string `yaml:"env_file"`
	PromptFile   string `yaml:"prompt_file"`
	HotwordsFile string `yaml:"hotwords_file"`
}

// NamedPath is one role in a PathLayout.
type NamedPath struct {
	Role string
	Path string
}

// Directories returns the directory roles created by EnsureDirectories.
func (l PathLayout) Directories() []NamedPath {
	return []NamedPath{
		{Role: "cache_dir", Path: l.CacheDir},
		{Role: "logs_dir", Path: l.LogsDir},
		{Role: "audio_dir", Path: l.AudioDir},
		{Role: "config_dir", Path: l.ConfigDir},
	}
}

// Files returns the provisioned file roles. Only the env file is required at startup.
func (l PathLayout) Files() []NamedPath {
	return []NamedPath{
		{Role: "env_file", Path: l.EnvFile},
		{Role: "prompt_file", Path: l.PromptFile},
		{Role: "hotwords_file", Path: l.HotwordsFile},
	}
}

// PerformanceSettings bounds worker concurrency, caching, and memory use.
type PerformanceSettings struct {
	WorkerThreads      int           `yaml:"worker_threads"`
	QueueSize          int           `yaml:"queue_size"`
	CacheEnabled       bool          `yaml:"cache_enabled"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	MaxCacheEntries    int           `yaml:"max_cache_size"`
	AudioBufferSamples int           `yaml:"audio_buffer_size"`
	MaxMemoryMB        int           `yaml:"max_memory_mb"`
}

// FeatureFlags toggles optional device behavior.
type FeatureFlags struct {
	TouchSensor    bool `yaml:"touch_sensor"`
	LEDFeedback    bool `yaml:"led_feedback"`
	OfflineMode    bool `yaml:"offline_mode"`
	DebugMode      bool `yaml:"debug_mode"`
	SaveRecordings bool `yaml:"save_recordings"`
}
