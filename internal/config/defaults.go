package config

import (
	"os"
	"strings"
	"time"
)

// DebugEnv is the only environment variable read during construction.
const DebugEnv = "DEBUG"

// Default builds the shipped configuration rooted at baseDir, reading DEBUG from the process env.
func Default(baseDir string) Config {
	return New(baseDir, os.Getenv)
}

// New builds the shipped configuration rooted at baseDir.
// getenv is consulted once, for DEBUG; nil is treated as an empty environment.
func New(baseDir string, getenv func(string) string) Config {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	return Config{
		Audio: AudioSettings{
			SampleRate:        44100,
			Channels:          1,
			BitDepth:          16,
			HotwordWindow:     2 * time.Second,
			QueryWindow:       4 * time.Second,
			MaxRecording:      10 * time.Second,
			InputDevice:       "plughw:1,0",
			OutputDevice:      "plughw:1",
			NoiseThresholdDB:  -45,
			VADAggressiveness: 2,
		},
		// PCB revision 3.1, BCM numbering.
		Pins: PinAssignment{
			I2SBitClock:  18,
			I2SWordClock: 19,
			I2SData:      20,
			I2CData:      2,
			I2CClock:     3,
			LEDData:      21,
			LEDEnable:    22,
		},
		I2C: DeviceAddresses{
			TouchSensor: 0x5A, // MPR121
			TempSensor:  0x48,
		},
		API: RemoteAPISettings{
			Model:             "gpt-4o-mini",
			Temperature:       0.7,
			MaxOutputTokens:   150,
			Timeout:           8 * time.Second,
			MaxRetries:        3,
			RetryDelay:        time.Second,
			BackoffMultiplier: 2.0,
			RequestsPerMinute: 20,
			Cooldown:          3 * time.Second,
		},
		Paths: NewPathLayout(baseDir),
		Performance: PerformanceSettings{
			WorkerThreads:      2,
			QueueSize:          10,
			CacheEnabled:       true,
			CacheTTL:           24 * time.Hour,
			MaxCacheEntries:    1000,
			AudioBufferSamples: 4096,
			MaxMemoryMB:        300,
		},
		Features: FeatureFlags{
			TouchSensor:    true,
			LEDFeedback:    true,
			OfflineMode:    false,
			DebugMode:      debugEnabled(getenv(DebugEnv)),
			SaveRecordings: false,
		},
		Errors: newErrorCatalog(map[ErrorCode]string{
			ErrorMissingAPIKey:   "I need an API key to function. Please check the configuration.",
			ErrorAudioSystem:     "I'm having trouble with the audio system. Please check the connections.",
			ErrorNetwork:         "I can't connect to the internet right now. Please check the network.",
			ErrorHighTemperature: "I'm experiencing high temperature. Please check ventilation.",
			ErrorLowMemory:       "Memory is running low. A restart might help.",
		}, "I encountered an error. Please check the logs for details."),
	}
}

// debugEnabled accepts only "true", case-insensitively. Surrounding whitespace is not trimmed.
func debugEnabled(raw string) bool {
	return strings.EqualFold(raw, "true")
}
