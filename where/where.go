// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/mpvtouch/mpvtouch/constant"
	"github.com/mpvtouch/mpvtouch/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "MPVTOUCH_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be explicitly specified via the MPVTOUCH_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Mpvtouch))
}

// ConfigFile is the full path of the toml settings file, whether or not it exists yet.
func ConfigFile() string {
	return filepath.Join(Config(), constant.Mpvtouch+".toml")
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Runtime is where sockets of mpv instances launched by us live.
// XDG_RUNTIME_DIR is preferred since it is per-user and tmpfs backed.
func Runtime() string {
	if dir, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && dir != "" {
		return ensureDir(filepath.Join(dir, constant.Mpvtouch))
	}
	return ensureDir(filepath.Join(os.TempDir(), constant.Mpvtouch))
}

// Socket is the default mpv IPC socket path.
func Socket() string {
	return filepath.Join(Runtime(), "mpv.sock")
}
