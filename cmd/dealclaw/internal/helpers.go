package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tinyland-inc/dealclaw/pkg/config"
)

const Logo = "🛒"

var (
	version   = "dev"
	gitCommit string
)

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dealclaw", "config.json")
}

func LoadConfig() (*config.Config, error) {
	return config.LoadConfig(GetConfigPath())
}

func GetVersion() string {
	return version
}

// FormatVersion returns the version string with optional git commit.
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}
