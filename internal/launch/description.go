package launch

import (
	"fmt"
	"sort"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/aerostack2/controller-manager-launch/internal/substitution"
)

// Launch argument names.
const (
	ArgDroneID = "drone_id"
	ArgConfig  = "config"

	// DroneIDEnv supplies the default drone namespace.
	DroneIDEnv = "AEROSTACK2_SIMULATION_DRONE_ID"
)

// Argument is a user-overridable launch input.
type Argument struct {
	Name        string
	Default     substitution.Substitution
	Description string

	// Path marks filesystem arguments; a leading ~ is expanded.
	Path bool
}

// Action runs once all launch arguments have been performed.
type Action func(ctx *substitution.Context) ([]*Node, error)

// Description declares launch arguments and the deferred actions that use them.
type Description struct {
	Arguments []Argument
	Actions   []Action
}

// ControllerManager declares the drone_id and config arguments and defers
// controller resolution until both are known.
func ControllerManager() *Description {
	return &Description{
		Arguments: []Argument{
			{
				Name:        ArgDroneID,
				Default:     substitution.EnvironmentVariable{Name: DroneIDEnv},
				Description: "Drone namespace",
			},
			{
				Name:        ArgConfig,
				Default:     substitution.NewPackageRelativePath(ManagerPackage, "config", "controller_manager.yaml"),
				Description: "Controller manager parameter file",
				Path:        true,
			},
		},
		Actions: []Action{controllerNode},
	}
}

func controllerNode(ctx *substitution.Context) ([]*Node, error) {
	config, err := substitution.LaunchConfiguration{Name: ArgConfig}.Perform(ctx)
	if err != nil {
		return nil, err
	}
	namespace, err := substitution.LaunchConfiguration{Name: ArgDroneID}.Perform(ctx)
	if err != nil {
		return nil, err
	}
	node, err := ResolveController(config, namespace)
	if err != nil {
		return nil, err
	}
	return []*Node{node}, nil
}

// Argument returns the declared argument with the given name.
func (d *Description) Argument(name string) (Argument, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// PerformArguments records every argument in ctx, taking overrides first and
// performing the declared default otherwise. Unknown overrides are rejected.
func (d *Description) PerformArguments(ctx *substitution.Context, overrides map[string]string) error {
	var unknown []string
	for name := range overrides {
		if _, ok := d.Argument(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown launch arguments: %s", strings.Join(unknown, ", "))
	}

	for _, arg := range d.Arguments {
		value, ok := overrides[arg.Name]
		if !ok {
			if arg.Default == nil {
				return fmt.Errorf("launch argument %q is required", arg.Name)
			}
			var err error
			value, err = arg.Default.Perform(ctx)
			if err != nil {
				return fmt.Errorf("default for %q: %w", arg.Name, err)
			}
		}
		if arg.Path && value != "" {
			expanded, err := homedir.Expand(value)
			if err != nil {
				return fmt.Errorf("expanding %q: %w", arg.Name, err)
			}
			value = expanded
		}
		ctx.SetLaunchConfiguration(arg.Name, value)
	}
	return nil
}

// Perform performs the arguments and then runs each action once, in order.
func (d *Description) Perform(ctx *substitution.Context, overrides map[string]string) ([]*Node, error) {
	if err := d.PerformArguments(ctx, overrides); err != nil {
		return nil, err
	}
	var nodes []*Node
	for _, action := range d.Actions {
		n, err := action(ctx)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n...)
	}
	return nodes, nil
}

// ParseArguments parses name:=value pairs. A later pair overrides an earlier
// one with the same name.
func ParseArguments(args []string) (map[string]string, error) {
	result := make(map[string]string, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, ":=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed launch argument %q (expected name:=value)", a)
		}
		result[name] = value
	}
	return result, nil
}
