package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewPathLayout derives every directory and file role from baseDir.
func NewPathLayout(baseDir string) PathLayout {
	baseDir = filepath.Clean(baseDir)
	data := filepath.Join(baseDir, "data")

	return PathLayout{
		BaseDir:      baseDir,
		CacheDir:     filepath.Join(data, "cache"),
		LogsDir:      filepath.Join(data, "logs"),
		AudioDir:     filepath.Join(data, "audio"),
		ConfigDir:    filepath.Join(baseDir, "config"),
		EnvFile:      filepath.Join(baseDir, "env.env"),
		PromptFile:   filepath.Join(baseDir, "prompt.txt"),
		HotwordsFile: filepath.Join(baseDir, "hotwords.json"),
	}
}

// ResolveBaseDir returns an absolute base directory.
// An explicit path wins; otherwise the directory holding the running executable is used.
func ResolveBaseDir(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve base dir %q: %w", explicit, err)
		}
		return abs, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
