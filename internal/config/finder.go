package config

import (
	"os"
	"path/filepath"
)

// LocalConfigName is the base name of a project config file
const LocalConfigName = ".assetpipe"

const globalConfigName = "config"

var configExtensions = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig returns the nearest project config file at or above dir
func FindLocalConfig(dir string) string {
	for dir != "" {
		if path := firstConfigIn(dir, LocalConfigName); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}

	return ""
}

// FindGlobalConfig returns the first config file found in dir, if any
func FindGlobalConfig(dir string) string {
	return firstConfigIn(dir, globalConfigName)
}

// firstConfigIn checks base.<ext> in dir for each supported extension
func firstConfigIn(dir, base string) string {
	for _, ext := range configExtensions {
		path := filepath.Join(dir, base+"."+ext)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}
