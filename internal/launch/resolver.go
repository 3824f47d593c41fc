package launch

import (
	"errors"
	"fmt"

	"github.com/aerostack2/controller-manager-launch/internal/params"
	"github.com/aerostack2/controller-manager-launch/internal/substitution"
)

const (
	// ManagerPackage and ManagerExecutable identify the launched process.
	ManagerPackage    = "controller_manager"
	ManagerExecutable = "controller_manager_node"

	// PluginNameParam and PluginConfigParam are read from the wildcard node
	// of the manager's parameter file.
	PluginNameParam   = "plugin_name"
	PluginConfigParam = "plugin_config_file"

	pluginConfigDir  = "config"
	pluginConfigFile = "default_controller.yaml"
)

// ErrMissingPluginIdentity is returned when the parameter file does not name
// a controller plugin.
var ErrMissingPluginIdentity = errors.New("plugin not set")

// ResolveController reads the manager parameter file at configPath and
// describes the controller manager node for the given drone namespace.
//
// The plugin's parameter file defaults to
// $(find-pkg-share <plugin_name>)/config/default_controller.yaml and is layered
// after configPath, so plugin values win on collision.
func ResolveController(configPath, namespace string) (*Node, error) {
	doc, err := params.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading controller manager config: %w", err)
	}
	return resolveFromDocument(doc, configPath, namespace)
}

func resolveFromDocument(doc *params.Document, configPath, namespace string) (*Node, error) {
	pluginName := doc.Parameter(PluginNameParam)
	if pluginName == "" {
		return nil, ErrMissingPluginIdentity
	}

	var pluginConfig substitution.Path
	if file := doc.Parameter(PluginConfigParam); file != "" {
		pluginConfig = substitution.LiteralPath(file)
	} else {
		pluginConfig = substitution.NewPackageRelativePath(pluginName, pluginConfigDir, pluginConfigFile)
	}

	return &Node{
		Package:    ManagerPackage,
		Executable: ManagerExecutable,
		Namespace:  namespace,
		Parameters: []substitution.Path{
			substitution.LiteralPath(configPath),
			pluginConfig,
		},
		Output:     OutputScreen,
		EmulateTTY: true,
	}, nil
}
