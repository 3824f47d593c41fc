//go:build !windows

package config

import (
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

func configSearchPaths() []string {
	paths := []string{}
	if home, err := homedir.Dir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "as2-launch", "config.yaml"))
	}
	return append(paths, "/etc/as2-launch/config.yaml")
}
