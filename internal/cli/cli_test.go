package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithBaseDir(t *testing.T) {
	parsed, err := Parse([]string{"--base-dir", "/opt/vesta", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/opt/vesta", parsed.BaseDir)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantBase string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "base dir after command",
			args:    []string{"check", "--base-dir", "/tmp/vesta"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing base dir path",
			args:    []string{"--base-dir"},
			wantErr: "requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--config"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"toggle"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"show", "audio"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "validate",
			args:    []string{"validate"},
			wantCmd: CommandValidate,
		},
		{
			name:     "bootstrap with base dir",
			args:     []string{"--base-dir", "/tmp/vesta", "bootstrap"},
			wantCmd:  CommandBootstrap,
			wantBase: "/tmp/vesta",
		},
		{
			name:    "errors",
			args:    []string{"errors"},
			wantCmd: CommandErrors,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantBase, parsed.BaseDir)
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("vesta")
	for _, want := range []string{"check", "bootstrap", "validate", "show", "errors", "doctor", "--base-dir PATH", "DEBUG=true"} {
		require.Contains(t, text, want)
	}
}
