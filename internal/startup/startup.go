// Package startup is the single entry point a hosting process uses to obtain
// device configuration: construct the groups, bootstrap directories, validate,
// and refuse to continue on any failure.
package startup

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rbright/vesta/internal/config"
	"github.com/rbright/vesta/internal/fsm"
)

// Mode selects whether Run performs the bootstrap and validation side effects.
type Mode int

const (
	// ModeLibrary bootstraps directories and validates; any failure is fatal.
	ModeLibrary Mode = iota
	// ModeDiagnostic only constructs the groups, for inspection and tests.
	ModeDiagnostic
)

func (m Mode) String() string {
	switch m {
	case ModeLibrary:
		return "library"
	case ModeDiagnostic:
		return "diagnostic"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options controls one startup run.
type Options struct {
	Mode    Mode
	BaseDir string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	Logger *slog.Logger
}

// Run constructs the configuration and, in library mode, bootstraps and validates it.
// Errors are returned unmodified apart from a step prefix; there is no partial success.
func Run(opts Options) (config.Config, error) {
	return run(opts, nil)
}

// run drives the lifecycle machine, reporting each reached state to observe.
func run(opts Options, observe func(fsm.State)) (config.Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	lc := &lifecycle{state: fsm.StatePending, logger: logger, observe: observe}

	baseDir, err := config.ResolveBaseDir(opts.BaseDir)
	if err != nil {
		return lc.fail(err)
	}

	var cfg config.Config
	if opts.Getenv != nil {
		cfg = config.New(baseDir, opts.Getenv)
	} else {
		cfg = config.Default(baseDir)
	}
	if err := lc.advance(fsm.EventConstruct); err != nil {
		return lc.fail(err)
	}

	if opts.Mode == ModeDiagnostic {
		logger.Debug("startup checks skipped", "mode", opts.Mode.String(), "base_dir", baseDir)
		return cfg, nil
	}

	if err := config.EnsureDirectories(cfg.Paths); err != nil {
		logger.Error("bootstrap failed", "base_dir", baseDir, "error", err.Error())
		return lc.fail(fmt.Errorf("bootstrap: %w", err))
	}
	if err := lc.advance(fsm.EventBootstrap); err != nil {
		return lc.fail(err)
	}
	logger.Debug("bootstrap complete", "base_dir", baseDir)

	if err := config.Validate(cfg); err != nil {
		logger.Error("validation failed", "base_dir", baseDir, "error", err.Error())
		return lc.fail(fmt.Errorf("validate: %w", err))
	}
	if err := lc.advance(fsm.EventValidate); err != nil {
		return lc.fail(err)
	}
	logger.Info("configuration ready",
		"base_dir", baseDir,
		"mode", opts.Mode.String(),
		"debug", cfg.Features.DebugMode,
	)

	return cfg, nil
}

// lifecycle tracks one startup run through the fsm states.
type lifecycle struct {
	state   fsm.State
	logger  *slog.Logger
	observe func(fsm.State)
}

func (l *lifecycle) advance(event fsm.Event) error {
	next, err := fsm.Transition(l.state, event)
	if err != nil {
		return fmt.Errorf("startup lifecycle: %w", err)
	}
	l.logger.Debug("startup transition", "from", string(l.state), "event", string(event), "to", string(next))
	l.state = next
	if l.observe != nil {
		l.observe(next)
	}
	return nil
}

// fail moves to the failed state and returns err, joined with any transition error.
func (l *lifecycle) fail(err error) (config.Config, error) {
	if advErr := l.advance(fsm.EventFail); advErr != nil {
		err = errors.Join(err, advErr)
	}
	return config.Config{}, err
}

var (
	initOnce sync.Once
	initCfg  config.Config
	initErr  error
	phase    atomic.Value // fsm.State
	current  atomic.Pointer[config.Config]
)

// Init runs startup exactly once per process. Later calls return the first
// result and ignore their options.
func Init(opts Options) (config.Config, error) {
	initOnce.Do(func() {
		final := fsm.StatePending
		cfg, err := run(opts, func(s fsm.State) {
			final = s
			// Terminal states are published only once the result is stored.
			if !fsm.Terminal(s) {
				phase.Store(s)
			}
		})
		initCfg, initErr = cfg, err
		if err == nil && final == fsm.StateReady {
			current.Store(&cfg)
		}
		phase.Store(final)
	})
	return initCfg, initErr
}

// Phase reports how far Init has progressed. It is fsm.StatePending before Init.
func Phase() fsm.State {
	s, ok := phase.Load().(fsm.State)
	if !ok {
		return fsm.StatePending
	}
	return s
}

// Current returns the configuration produced by a successful Init.
// ok is false before Init completes, after a failed Init, or after a
// diagnostic-mode Init. Safe for concurrent use while Init runs.
func Current() (cfg config.Config, ok bool) {
	p := current.Load()
	if p == nil {
		return config.Config{}, false
	}
	return *p, true
}
