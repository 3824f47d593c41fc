// Package launch assembles the controller manager launch: it declares the
// launch arguments, resolves the controller plugin from the manager's
// parameter file and describes the node process to start.
package launch

import (
	"fmt"

	"github.com/aerostack2/controller-manager-launch/internal/substitution"
)

// OutputScreen sends the launched process output to the console.
const OutputScreen = "screen"

// Node describes one process for the launch executor to start. This package
// never starts it.
type Node struct {
	Package    string
	Executable string
	Namespace  string

	// Parameters are applied in order; later files override earlier ones.
	Parameters []substitution.Path

	Output     string
	EmulateTTY bool
}

// ResolvedNode is a Node whose parameter paths have been performed.
type ResolvedNode struct {
	Package    string
	Executable string
	Namespace  string
	Parameters []string
	Output     string
	EmulateTTY bool
}

// Resolve performs every parameter path against the launch context.
func (n *Node) Resolve(ctx *substitution.Context) (*ResolvedNode, error) {
	resolved := &ResolvedNode{
		Package:    n.Package,
		Executable: n.Executable,
		Namespace:  n.Namespace,
		Parameters: make([]string, 0, len(n.Parameters)),
		Output:     n.Output,
		EmulateTTY: n.EmulateTTY,
	}
	for i, p := range n.Parameters {
		path, err := p.Perform(ctx)
		if err != nil {
			return nil, fmt.Errorf("parameter source %d: %w", i, err)
		}
		resolved.Parameters = append(resolved.Parameters, path)
	}
	return resolved, nil
}
