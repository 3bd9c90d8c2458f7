package internal

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"

	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/logger"
)

// DefaultConfigPath is read when no --config flag is given.
const DefaultConfigPath = "csbot.cfg"

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

// LoadConfig reads .env from the working directory, if present, so that
// CSBOT_* overrides can live next to the config file, then loads path.
func LoadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnCF("config", "Could not read .env", map[string]any{"error": err.Error()})
	}
	return config.Load(path)
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}
