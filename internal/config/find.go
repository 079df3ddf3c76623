package config

import (
	"os"
	"path/filepath"
)

// Find searches for a configuration file by name. When searchPaths is empty
// it checks the executable's directory, the working directory, the user's
// home directory, and /etc, in that order. The boolean reports whether a
// file was found.
func Find(fileName string, searchPaths ...string) (string, bool) {
	if len(searchPaths) == 0 {
		searchPaths = defaultSearchPaths()
	}
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, fileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func defaultSearchPaths() []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Dir(exe))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	return append(paths, "/etc")
}
