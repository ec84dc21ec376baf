package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"github.com/rbright/vesta/internal/audio"
	"github.com/rbright/vesta/internal/cli"
	"github.com/rbright/vesta/internal/config"
	"github.com/rbright/vesta/internal/doctor"
	"github.com/rbright/vesta/internal/logging"
	"github.com/rbright/vesta/internal/startup"
	"github.com/rbright/vesta/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	// Getenv overrides os.Getenv for configuration construction.
	Getenv func(string) string
	// Init overrides startup.Init for the check command.
	Init func(startup.Options) (config.Config, error)
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("vesta"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("vesta"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	// The CLI itself always constructs in diagnostic mode; commands opt into side effects.
	opts := startup.Options{Mode: startup.ModeDiagnostic, BaseDir: parsed.BaseDir, Getenv: r.Getenv}
	cfg, err := startup.Run(opts)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logger := r.Logger
	if logger == nil {
		logRuntime, err := logging.New(cfg.Features.DebugMode)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
			return 1
		}
		defer func() { _ = logRuntime.Close() }()
		logger = logRuntime.Logger
	}

	logger.Info("command start",
		"command", parsed.Command,
		"base_dir", cfg.Paths.BaseDir,
		"debug", cfg.Features.DebugMode,
	)

	switch parsed.Command {
	case cli.CommandCheck:
		opts.Mode = startup.ModeLibrary
		opts.Logger = logger
		return r.commandCheck(opts)
	case cli.CommandBootstrap:
		return r.commandBootstrap(cfg, logger)
	case cli.CommandValidate:
		return r.commandValidate(cfg, logger)
	case cli.CommandShow:
		return r.commandShow(cfg)
	case cli.CommandErrors:
		return r.commandErrors(cfg.Errors)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfg)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		logger.Warn("doctor found problems", "checks", len(report.Checks))
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandCheck(opts startup.Options) int {
	initialize := r.Init
	if initialize == nil {
		initialize = startup.Init
	}

	cfg, err := initialize(opts)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "configuration OK (%s)\n", cfg.Paths.BaseDir)
	return 0
}

func (r Runner) commandBootstrap(cfg config.Config, logger *slog.Logger) int {
	if err := config.EnsureDirectories(cfg.Paths); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("bootstrap failed", "error", err.Error())
		return 1
	}
	for _, dir := range cfg.Paths.Directories() {
		fmt.Fprintf(r.Stdout, "%-10s %s\n", dir.Role, dir.Path)
	}
	logger.Info("bootstrap complete", "base_dir", cfg.Paths.BaseDir)
	return 0
}

func (r Runner) commandValidate(cfg config.Config, logger *slog.Logger) int {
	err := config.Validate(cfg)
	if err == nil {
		fmt.Fprintln(r.Stdout, "configuration valid")
		return 0
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(r.Stderr, "error: %s: %v\n", cfgErr.Kind, err)
		logger.Error("validation failed", "kind", cfgErr.Kind.String(), "field", cfgErr.Field, "error", err.Error())
		return 1
	}
	fmt.Fprintf(r.Stderr, "error: %v\n", err)
	return 1
}

func (r Runner) commandShow(cfg config.Config) int {
	enc := yaml.NewEncoder(r.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		fmt.Fprintf(r.Stderr, "error: render config: %v\n", err)
		return 1
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintf(r.Stderr, "error: render config: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandErrors(catalog config.ErrorCatalog) int {
	table := tablewriter.NewWriter(r.Stdout)
	table.Options(
		tablewriter.WithHeader([]string{"Code", "Message"}),
		tablewriter.WithAlignment(tw.MakeAlign(2, tw.AlignLeft)),
	)

	for _, code := range catalog.Codes() {
		if err := table.Append([]string{string(code), catalog.Message(code)}); err != nil {
			fmt.Fprintf(r.Stderr, "error: append row: %v\n", err)
			return 1
		}
	}
	if err := table.Append([]string{"DEFAULT", catalog.Fallback()}); err != nil {
		fmt.Fprintf(r.Stderr, "error: append row: %v\n", err)
		return 1
	}

	if err := table.Render(); err != nil {
		fmt.Fprintf(r.Stderr, "error: render table: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}
