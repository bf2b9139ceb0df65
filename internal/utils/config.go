package utils

import (
	"os"
	"path/filepath"
)

// GetProjectRoot returns the nearest parent of the working directory holding
// a go.mod, or "." when there is none (installed binaries).
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "." // fallback
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "." // fallback
}

// ProjectFile resolves name against the project root.
func ProjectFile(name string) string {
	return filepath.Join(GetProjectRoot(), name)
}
