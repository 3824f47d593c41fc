package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aerostack2/controller-manager-launch/internal/ament"
	"github.com/aerostack2/controller-manager-launch/internal/config"
	"github.com/aerostack2/controller-manager-launch/internal/launch"
	"github.com/aerostack2/controller-manager-launch/internal/logging"
	"github.com/aerostack2/controller-manager-launch/internal/params"
	"github.com/aerostack2/controller-manager-launch/internal/render"
	"github.com/aerostack2/controller-manager-launch/internal/substitution"
)

type app struct {
	stdout io.Writer
	stderr io.Writer
	exit   func(int)

	// lookupEnv and packages default to the process environment.
	lookupEnv func(string) (string, bool)
	packages  substitution.PackageFinder

	settingsPath  string
	forceSettings bool
	droneID       string
	configPath   string
	cli          config.CLIOverrides

	cfg    *config.Config
	logger *zap.Logger
}

func newApp(stdout, stderr io.Writer, exit func(int)) *app {
	return &app{stdout: stdout, stderr: stderr, exit: exit}
}

func (a *app) rootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "controller-manager-launch [name:=value ...]",
		Short: "Resolve the controller manager node for a drone",
		Long: `Reads the controller manager parameter file, finds the controller plugin it
names and prints the controller_manager_node description for the launch executor.

The plugin's parameter file defaults to
$(find-pkg-share <plugin_name>)/config/default_controller.yaml and is applied
after the manager's file.`,
		Version:           version,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runResolve,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.droneID, "drone-id", "", "Drone namespace (same as drone_id:=<value>)")
	flags.StringVar(&a.configPath, "config", "", "Controller manager parameter file (same as config:=<value>)")
	flags.StringVar(&a.cli.Format, "format", "", "Output format: yaml, json or command")
	flags.StringVar(&a.cli.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.cli.LogFile, "log-file", "", "Also write JSON logs to this file")
	flags.StringVar(&a.settingsPath, "settings", "", "Launcher settings file (default: first found in the standard locations)")

	root.AddCommand(a.showArgsCommand(), a.paramsCommand(), a.settingsCommand())
	return root
}

func (a *app) showArgsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show-args",
		Short: "List the launch arguments and their defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render.Arguments(a.stdout, launch.ControllerManager())
		},
	}
}

func (a *app) paramsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "params [name:=value ...]",
		Short: "Print the effective parameters of the controller manager node",
		Args:  cobra.ArbitraryArgs,
		RunE:  a.runParams,
	}
}

func (a *app) settingsCommand() *cobra.Command {
	settings := &cobra.Command{
		Use:   "settings",
		Short: "Manage the launcher settings file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective launcher settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return fmt.Errorf("encoding settings: %w", err)
			}
			return enc.Close()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a settings file with the default values",
		Long:  "Writes the default launcher settings to path, or to " + config.DefaultPath() + " when no path is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runSettingsInit,
	}
	initCmd.Flags().BoolVar(&a.forceSettings, "force", false, "Overwrite an existing settings file")

	settings.AddCommand(show, initCmd)
	return settings
}

func (a *app) runSettingsInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !a.forceSettings {
		return fmt.Errorf("settings file %s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteConfig(config.DefaultConfig(), path); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("Wrote default settings to %s", path))
	return nil
}

// setup loads settings and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("settings") {
		cfg, err = config.LoadLayered(a.cli, a.settingsPath)
	} else {
		cfg, err = config.LoadLayered(a.cli)
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: a.stderr,
		Exit:    a.exit,
	})
	return nil
}

func (a *app) context() *substitution.Context {
	packages := a.packages
	if packages == nil {
		packages = ament.FromEnv()
	}
	return substitution.NewContext(packages, a.lookupEnv)
}

// overrides merges name:=value arguments with the --drone-id and --config
// flags; flags win.
func (a *app) overrides(flags *pflag.FlagSet, args []string) (map[string]string, error) {
	overrides, err := launch.ParseArguments(args)
	if err != nil {
		return nil, err
	}
	if flags.Changed("drone-id") {
		overrides[launch.ArgDroneID] = a.droneID
	}
	if flags.Changed("config") {
		overrides[launch.ArgConfig] = a.configPath
	}
	return overrides, nil
}

// describe performs the launch description. A missing plugin is fatal:
// it is logged as CRITICAL and the process exits; describe then returns
// ok=false for callers whose exit function returned (tests).
func (a *app) describe(cmd *cobra.Command, args []string) (*substitution.Context, []*launch.Node, bool, error) {
	overrides, err := a.overrides(cmd.Flags(), args)
	if err != nil {
		return nil, nil, false, err
	}

	ctx := a.context()
	nodes, err := launch.ControllerManager().Perform(ctx, overrides)
	if errors.Is(err, launch.ErrMissingPluginIdentity) {
		a.logger.Fatal("Plugin not set.")
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}

	for _, n := range nodes {
		if n.Namespace == "" {
			a.logger.Warn(fmt.Sprintf("%s is empty, %s will run without a namespace", launch.ArgDroneID, n.Executable))
		}
		a.logger.Debug("Resolved node",
			zap.String("executable", n.Executable),
			zap.String("namespace", n.Namespace),
			zap.Stringers("parameters", n.Parameters))
	}
	return ctx, nodes, true, nil
}

func (a *app) runResolve(cmd *cobra.Command, args []string) error {
	ctx, nodes, ok, err := a.describe(cmd, args)
	if err != nil || !ok {
		return err
	}

	switch a.cfg.Output.Format {
	case config.FormatJSON:
		return render.JSON(a.stdout, nodes)
	case config.FormatCommand:
		resolved, err := resolveNodes(ctx, nodes)
		if err != nil {
			return err
		}
		return render.Command(a.stdout, resolved)
	default:
		return render.YAML(a.stdout, nodes)
	}
}

func (a *app) runParams(cmd *cobra.Command, args []string) error {
	ctx, nodes, ok, err := a.describe(cmd, args)
	if err != nil || !ok {
		return err
	}
	resolved, err := resolveNodes(ctx, nodes)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(a.stdout)
	enc.SetIndent(2)
	for _, n := range resolved {
		doc, err := params.LoadLayered(n.Parameters...)
		if err != nil {
			return fmt.Errorf("loading parameters of %s: %w", n.Executable, err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding parameters: %w", err)
		}
	}
	return enc.Close()
}

func resolveNodes(ctx *substitution.Context, nodes []*launch.Node) ([]*launch.ResolvedNode, error) {
	resolved := make([]*launch.ResolvedNode, 0, len(nodes))
	for _, n := range nodes {
		r, err := n.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", n.Executable, err)
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}
