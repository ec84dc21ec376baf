package startup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbright/vesta/internal/config"
	"github.com/rbright/vesta/internal/fsm"
)

func resetInit(t *testing.T) {
	t.Helper()

	reset := func() {
		initOnce = sync.Once{}
		initCfg = config.Config{}
		initErr = nil
		phase = atomic.Value{}
		current.Store(nil)
	}
	reset()
	t.Cleanup(reset)
}

func provisionEnvFile(t *testing.T, base string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(base, "env.env"), []byte("OPENAI_API_KEY=test\n"), 0o600))
}

func noEnv(string) string { return "" }

func TestRunLibraryModeBootstrapsAndValidates(t *testing.T) {
	base := t.TempDir()
	provisionEnvFile(t, base)

	var logs bytes.Buffer
	cfg, err := Run(Options{
		Mode:    ModeLibrary,
		BaseDir: base,
		Getenv:  noEnv,
		Logger:  slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)
	require.Equal(t, base, cfg.Paths.BaseDir)

	for _, dir := range cfg.Paths.Directories() {
		require.DirExists(t, dir.Path)
	}
	require.Contains(t, logs.String(), `"msg":"bootstrap complete"`)
	require.Contains(t, logs.String(), `"msg":"configuration ready"`)
}

func TestRunLibraryModeFailsWithoutEnvFile(t *testing.T) {
	base := t.TempDir()

	cfg, err := Run(Options{Mode: ModeLibrary, BaseDir: base, Getenv: noEnv})
	require.Error(t, err)
	require.ErrorIs(t, err, config.ErrMissingRequiredFile)
	require.Contains(t, err.Error(), filepath.Join(base, "env.env"))
	require.Empty(t, cfg.Paths.BaseDir, "no partially valid config is returned")

	// Bootstrap ran before validation failed.
	require.DirExists(t, filepath.Join(base, "data", "logs"))
}

func TestRunLibraryModeSurfacesBootstrapFailure(t *testing.T) {
	base := t.TempDir()
	provisionEnvFile(t, base)
	require.NoError(t, os.WriteFile(filepath.Join(base, "data"), nil, 0o600))

	_, err := Run(Options{Mode: ModeLibrary, BaseDir: base, Getenv: noEnv})
	require.Error(t, err)

	var bootErr *config.BootstrapError
	require.ErrorAs(t, err, &bootErr)
	require.Contains(t, err.Error(), "bootstrap:")
}

func TestRunDiagnosticModeHasNoSideEffects(t *testing.T) {
	base := filepath.Join(t.TempDir(), "device")

	cfg, err := Run(Options{Mode: ModeDiagnostic, BaseDir: base, Getenv: noEnv})
	require.NoError(t, err)
	require.Equal(t, base, cfg.Paths.BaseDir)
	require.NoDirExists(t, base)
}

func TestRunUsesInjectedEnvironment(t *testing.T) {
	cfg, err := Run(Options{
		Mode:    ModeDiagnostic,
		BaseDir: t.TempDir(),
		Getenv: func(key string) string {
			if key == config.DebugEnv {
				return "TRUE"
			}
			return ""
		},
	})
	require.NoError(t, err)
	require.True(t, cfg.Features.DebugMode)
}

func TestInitRunsOnce(t *testing.T) {
	resetInit(t)

	_, ok := Current()
	require.False(t, ok)
	require.Equal(t, fsm.StatePending, Phase())

	first := t.TempDir()
	provisionEnvFile(t, first)
	cfg, err := Init(Options{Mode: ModeLibrary, BaseDir: first, Getenv: noEnv})
	require.NoError(t, err)

	current, ok := Current()
	require.True(t, ok)
	require.Equal(t, fsm.StateReady, Phase())
	require.Equal(t, cfg.Paths, current.Paths)

	second := filepath.Join(t.TempDir(), "ignored")
	again, err := Init(Options{Mode: ModeLibrary, BaseDir: second, Getenv: noEnv})
	require.NoError(t, err)
	require.Equal(t, first, again.Paths.BaseDir)
	require.NoDirExists(t, second)
}

func TestInitFailureIsSticky(t *testing.T) {
	resetInit(t)

	base := t.TempDir()
	_, err := Init(Options{Mode: ModeLibrary, BaseDir: base, Getenv: noEnv})
	require.ErrorIs(t, err, config.ErrMissingRequiredFile)

	provisionEnvFile(t, base)
	_, err = Init(Options{Mode: ModeLibrary, BaseDir: base, Getenv: noEnv})
	require.ErrorIs(t, err, config.ErrMissingRequiredFile)

	_, ok := Current()
	require.False(t, ok)
	require.Equal(t, fsm.StateFailed, Phase())
}

func TestInitConcurrentCallersShareResult(t *testing.T) {
	resetInit(t)

	base := t.TempDir()
	provisionEnvFile(t, base)

	var wg sync.WaitGroup
	results := make(chan time.Duration, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := Init(Options{Mode: ModeLibrary, BaseDir: base, Getenv: noEnv})
			if err == nil {
				results <- cfg.API.Timeout
			}
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for timeout := range results {
		require.Equal(t, 8*time.Second, timeout)
		count++
	}
	require.Equal(t, 8, count)
}

func TestInitDiagnosticModeIsNotReady(t *testing.T) {
	resetInit(t)

	_, err := Init(Options{Mode: ModeDiagnostic, BaseDir: t.TempDir(), Getenv: noEnv})
	require.NoError(t, err)
	require.Equal(t, fsm.StateConstructed, Phase())

	_, ok := Current()
	require.False(t, ok)
}

func TestRunReportsLifecycleStates(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		provision bool
		want      []fsm.State
	}{
		{
			name:      "library ready",
			mode:      ModeLibrary,
			provision: true,
			want:      []fsm.State{fsm.StateConstructed, fsm.StateBootstrapped, fsm.StateReady},
		},
		{
			name: "library validation failure",
			mode: ModeLibrary,
			want: []fsm.State{fsm.StateConstructed, fsm.StateBootstrapped, fsm.StateFailed},
		},
		{
			name: "diagnostic",
			mode: ModeDiagnostic,
			want: []fsm.State{fsm.StateConstructed},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			base := t.TempDir()
			if tc.provision {
				provisionEnvFile(t, base)
			}

			var seen []fsm.State
			_, _ = run(Options{Mode: tc.mode, BaseDir: base, Getenv: noEnv}, func(s fsm.State) {
				seen = append(seen, s)
			})
			require.Equal(t, tc.want, seen)
		})
	}
}

// gateHandler blocks the "configuration ready" record until release is closed.
type gateHandler struct {
	slog.Handler
	reached chan struct{}
	release chan struct{}
}

func (h *gateHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *gateHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Message == "configuration ready" {
		close(h.reached)
		<-h.release
	}
	return h.Handler.Handle(ctx, r)
}

func TestCurrentDuringInitNeverReturnsPartialConfig(t *testing.T) {
	resetInit(t)

	base := t.TempDir()
	provisionEnvFile(t, base)

	gate := &gateHandler{
		Handler: slog.DiscardHandler,
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := Init(Options{Mode: ModeLibrary, BaseDir: base, Getenv: noEnv, Logger: slog.New(gate)})
		done <- err
	}()

	<-gate.reached

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if cfg, ok := Current(); ok {
					assert.Equal(t, base, cfg.Paths.BaseDir)
				}
				assert.NotEqual(t, fsm.StateReady, Phase())
			}
		}()
	}
	wg.Wait()

	_, ok := Current()
	require.False(t, ok, "Init has not returned yet")
	require.Equal(t, fsm.StateBootstrapped, Phase())

	close(gate.release)
	require.NoError(t, <-done)

	cfg, ok := Current()
	require.True(t, ok)
	require.Equal(t, base, cfg.Paths.BaseDir)
	require.Equal(t, 8*time.Second, cfg.API.Timeout)
	require.Equal(t, fsm.StateReady, Phase())
}

func TestLifecycleReportsInvalidTransitionAsError(t *testing.T) {
	var seen []fsm.State
	lc := &lifecycle{
		state:   fsm.StateReady,
		logger:  slog.New(slog.DiscardHandler),
		observe: func(s fsm.State) { seen = append(seen, s) },
	}

	err := lc.advance(fsm.EventConstruct)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid transition")
	require.Equal(t, fsm.StateReady, lc.state)

	cause := errors.New("validate: boom")
	cfg, err := lc.fail(cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "startup lifecycle")
	require.Empty(t, cfg.Paths.BaseDir)
	require.Empty(t, seen)
}

func TestModeString(t *testing.T) {
	require.Equal(t, "library", ModeLibrary.String())
	require.Equal(t, "diagnostic", ModeDiagnostic.String())
	require.Equal(t, "Mode(7)", Mode(7).String())
}
