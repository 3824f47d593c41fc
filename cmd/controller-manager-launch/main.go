// Package main is the entry point for the controller manager launcher.
// It declares the launch arguments, resolves the controller plugin from the
// manager's parameter file and prints the node for the launch executor.
package main

import (
	"os"

	"github.com/aerostack2/controller-manager-launch/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	app := newApp(os.Stdout, os.Stderr, os.Exit)
	if err := app.rootCommand(version).Execute(); err != nil {
		logger := app.logger
		if logger == nil {
			logger = logging.New(logging.Options{Console: os.Stderr})
		}
		logger.Error(err.Error())
		_ = logger.Sync()
		os.Exit(1)
	}
}
