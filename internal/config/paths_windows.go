//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	return []string{
		filepath.Join(os.Getenv("APPDATA"), "as2-launch", "config.yaml"),
		filepath.Join(os.Getenv("ProgramData"), "as2-launch", "config.yaml"),
	}
}
