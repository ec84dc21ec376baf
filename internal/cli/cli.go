package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandCheck     Command = "check"
	CommandBootstrap Command = "bootstrap"
	CommandValidate  Command = "validate"
	CommandShow      Command = "show"
	CommandErrors    Command = "errors"
	CommandDoctor    Command = "doctor"
	CommandDevices   Command = "devices"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandCheck:     {},
	CommandBootstrap: {},
	CommandValidate:  {},
	CommandShow:      {},
	CommandErrors:    {},
	CommandDoctor:    {},
	CommandDevices:   {},
	CommandVersion:   {},
	CommandHelp:      {},
}

type Parsed struct {
	Command  Command
	BaseDir  string
	ShowHelp bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--base-dir":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--base-dir requires a path")
			}
			parsed.BaseDir = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--base-dir PATH] <command>

Commands:
  check      Bootstrap directories and validate configuration (fails like device startup)
  bootstrap  Create missing data directories
  validate   Validate configuration without creating directories
  show       Print configuration groups as YAML
  errors     Print the user-facing error catalog
  doctor     Run device readiness checks and report every problem
  devices    List audio input sources
  version    Print version information
  help       Show this help

Flags:
  --base-dir PATH   Device base directory (default: directory of the %[1]s binary)
  -h, --help        Show help
  --version         Show version

Environment:
  DEBUG=true        Enable debug mode (exact, case-insensitive)
`, binaryName)
}
