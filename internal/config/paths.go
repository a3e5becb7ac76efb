package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global ikd directory
	GlobalDirName = ".ikd"
	// ProjectDirName is the name of the project-level directory
	ProjectDirName = ".ikd"
	// ConfigFileName is the config file inside either directory
	ConfigFileName = "config.yaml"
)

// GlobalDir returns the global ikd directory path (~/.ikd)
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalDirName)
}

// GlobalDBPath returns the global session database path (~/.ikd/ikd.db)
func GlobalDBPath() string {
	return filepath.Join(GlobalDir(), "ikd.db")
}

// GlobalConfigPath returns the global config file path (~/.ikd/config.yaml)
func GlobalConfigPath() string {
	return filepath.Join(GlobalDir(), ConfigFileName)
}

// ProjectDir returns the project-level directory (<root>/.ikd)
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, ProjectDirName)
}

// Path returns the project config path (<root>/.ikd/config.yaml)
func Path(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), ConfigFileName)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
