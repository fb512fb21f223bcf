// Package xdg resolves the XDG base directories the judge reads its
// configuration from and keeps its problem data in.
package xdg

import (
	"os"
	"path/filepath"
)

type XDGDirs struct {
	dataHome   string
	configHome string
	configDirs []string
}

func NewXDGDirs() *XDGDirs {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}

	dirs := &XDGDirs{
		dataHome:   envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share")),
		configHome: envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config")),
		configDirs: []string{"/etc/xdg"},
	}
	if v := os.Getenv("XDG_CONFIG_DIRS"); v != "" {
		dirs.configDirs = filepath.SplitList(v)
	}
	return dirs
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConfigDirs lists config base dirs, most preferred first.
func (x *XDGDirs) ConfigDirs() []string {
	return append([]string{x.configHome}, x.configDirs...)
}

func (x *XDGDirs) AppDataDir(appName string) string {
	return filepath.Join(x.dataHome, appName)
}

// FindConfigFile returns the first existing appName/name in ConfigDirs.
func (x *XDGDirs) FindConfigFile(appName, name string) (string, bool) {
	for _, dir := range x.ConfigDirs() {
		path := filepath.Join(dir, appName, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
