// Package doctor runs device readiness diagnostics for config, files, host resources, and audio.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/rbright/vesta/internal/audio"
	"github.com/rbright/vesta/internal/config"
)

// APIKeyVar is the variable the API client reads from the env file.
const APIKeyVar = "OPENAI_API_KEY"

// fallbackCriticalCelsius applies when a sensor reports no critical threshold.
const fallbackCriticalCelsius = 80.0

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// probes are the host-facing lookups doctor depends on.
type probes struct {
	procRoot     string
	availableMem func() (uint64, error)
	temperatures func() ([]sensors.TemperatureStat, error)
	listDevices  func(context.Context) ([]audio.Device, error)
	dial         dialFunc
}

func hostProbes() probes {
	return probes{
		procRoot: audio.DefaultProcRoot,
		availableMem: func() (uint64, error) {
			vm, err := mem.VirtualMemory()
			if err != nil {
				return 0, err
			}
			return vm.Available, nil
		},
		temperatures: sensors.SensorsTemperatures,
		listDevices:  audio.ListDevices,
		dial:         (&net.Dialer{}).DialContext,
	}
}

// Run executes every check against cfg. Unlike startup validation it never
// stops early, so one report lists all problems.
func Run(ctx context.Context, cfg config.Config) Report {
	return run(ctx, cfg, hostProbes())
}

func run(ctx context.Context, cfg config.Config, p probes) Report {
	checks := []Check{{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("base dir %q (debug=%t)", cfg.Paths.BaseDir, cfg.Features.DebugMode),
	}}

	checks = append(checks, checkInvariants(cfg)...)
	checks = append(checks, checkDirectories(cfg.Paths)...)
	checks = append(checks, checkFiles(cfg.Paths)...)
	checks = append(checks, checkAPIKey(cfg.Paths.EnvFile))
	checks = append(checks, checkHotwords(cfg.Paths.HotwordsFile))
	checks = append(checks, checkMemory(cfg.Performance, p.availableMem))
	checks = append(checks, checkTemperature(p.temperatures))
	checks = append(checks, checkALSA("audio.input", p.procRoot, cfg.Audio.InputDevice, audio.Capture))
	checks = append(checks, checkALSA("audio.output", p.procRoot, cfg.Audio.OutputDevice, audio.Playback))
	checks = append(checks, checkAudioServer(ctx, p.listDevices))
	checks = append(checks, checkNetwork(ctx, cfg, p.dial))

	return Report{Checks: checks}
}

// checkInvariants reports each violated group invariant as its own failure.
func checkInvariants(cfg config.Config) []Check {
	errs := config.Audit(cfg)
	if len(errs) == 0 {
		return []Check{{Name: "invariants", Pass: true, Message: "all configuration invariants hold"}}
	}

	checks := make([]Check, 0, len(errs))
	for _, err := range errs {
		name := "invariants"
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Field != "" {
			name = cfgErr.Field
		}
		checks = append(checks, Check{Name: name, Pass: false, Message: err.Error()})
	}
	return checks
}

func checkDirectories(layout config.PathLayout) []Check {
	checks := make([]Check, 0, len(layout.Directories()))
	for _, dir := range layout.Directories() {
		info, err := os.Stat(dir.Path)
		switch {
		case err != nil:
			checks = append(checks, Check{Name: dir.Role, Pass: false, Message: fmt.Sprintf("%s missing (run bootstrap)", dir.Path)})
		case !info.IsDir():
			checks = append(checks, Check{Name: dir.Role, Pass: false, Message: fmt.Sprintf("%s is not a directory", dir.Path)})
		default:
			checks = append(checks, Check{Name: dir.Role, Pass: true, Message: dir.Path})
		}
	}
	return checks
}

func checkFiles(layout config.PathLayout) []Check {
	checks := make([]Check, 0, len(layout.Files()))
	for _, file := range layout.Files() {
		info, err := os.Stat(file.Path)
		switch {
		case err != nil:
			checks = append(checks, Check{Name: file.Role, Pass: false, Message: fmt.Sprintf("%s not provisioned", file.Path)})
		case info.IsDir():
			checks = append(checks, Check{Name: file.Role, Pass: false, Message: fmt.Sprintf("%s is a directory", file.Path)})
		default:
			checks = append(checks, Check{Name: file.Role, Pass: true, Message: fmt.Sprintf("%s (%d bytes)", file.Path, info.Size())})
		}
	}
	return checks
}

// checkAPIKey parses the env file without exporting it into the process environment.
func checkAPIKey(envFile string) Check {
	name := "api.key"
	values, err := godotenv.Read(envFile)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("read %s: %v", envFile, err)}
	}
	if strings.TrimSpace(values[APIKeyVar]) == "" {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is not set in %s", APIKeyVar, envFile)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s present", APIKeyVar)}
}

func checkMemory(perf config.PerformanceSettings, available func() (uint64, error)) Check {
	name := "memory"
	bytes, err := available()
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("read memory stats: %v", err)}
	}

	availableMB := bytes / (1024 * 1024)
	if availableMB < uint64(perf.MaxMemoryMB) {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%d MB available, below max_memory_mb=%d", availableMB, perf.MaxMemoryMB)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%d MB available (max_memory_mb=%d)", availableMB, perf.MaxMemoryMB)}
}

// checkTemperature fails when any sensor is at or above its critical point.
// Hosts without sensors pass; gopsutil may return readings alongside a partial error.
func checkTemperature(read func() ([]sensors.TemperatureStat, error)) Check {
	name := "temperature"
	temps, err := read()
	if len(temps) == 0 {
		if err != nil {
			return Check{Name: name, Pass: true, Message: fmt.Sprintf("no sensors readable (%v)", err)}
		}
		return Check{Name: name, Pass: true, Message: "no temperature sensors reported"}
	}

	hottest := temps[0]
	for _, t := range temps {
		critical := t.Critical
		if critical <= 0 {
			critical = fallbackCriticalCelsius
		}
		if t.Temperature >= critical {
			return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s at %.1f°C (critical %.1f°C)", t.SensorKey, t.Temperature, critical)}
		}
		if t.Temperature > hottest.Temperature {
			hottest = t
		}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("hottest %s at %.1f°C", hottest.SensorKey, hottest.Temperature)}
}

func checkALSA(name, procRoot, id string, dir audio.Direction) Check {
	card, err := audio.ProbeALSA(procRoot, id, dir)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s on card %q", id, card)}
}

func checkAudioServer(ctx context.Context, list func(context.Context) ([]audio.Device, error)) Check {
	name := "audio.server"
	devices, err := list(ctx)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	dev, err := audio.DefaultUsable(devices)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%d sources, capturing from %q", len(devices), dev.ID)}
}
