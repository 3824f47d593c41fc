// Package render prints node descriptions for the launch executor: as a
// ROS 2 YAML launch file, as JSON, or as a ros2 run command line.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alessio/shellescape"
	"gopkg.in/yaml.v3"

	"github.com/aerostack2/controller-manager-launch/internal/launch"
	"github.com/aerostack2/controller-manager-launch/internal/substitution"
)

type launchFile struct {
	Launch []launchEntry `yaml:"launch"`
}

type launchEntry struct {
	Node yamlNode `yaml:"node"`
}

type yamlNode struct {
	Pkg        string      `yaml:"pkg"`
	Exec       string      `yaml:"exec"`
	Namespace  string      `yaml:"namespace"`
	Output     string      `yaml:"output"`
	EmulateTTY bool        `yaml:"emulate_tty"`
	Param      []yamlParam `yaml:"param"`
}

type yamlParam struct {
	From string `yaml:"from"`
}

// YAML writes a ROS 2 YAML launch file. Parameter paths stay deferred so the
// executor resolves package locations itself.
func YAML(w io.Writer, nodes []*launch.Node) error {
	file := launchFile{Launch: make([]launchEntry, 0, len(nodes))}
	for _, n := range nodes {
		node := yamlNode{
			Pkg:        n.Package,
			Exec:       n.Executable,
			Namespace:  n.Namespace,
			Output:     n.Output,
			EmulateTTY: n.EmulateTTY,
		}
		for _, p := range n.Parameters {
			node.Param = append(node.Param, yamlParam{From: p.String()})
		}
		file.Launch = append(file.Launch, launchEntry{Node: node})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encoding launch file: %w", err)
	}
	return enc.Close()
}

type jsonNode struct {
	Package    string      `json:"package"`
	Executable string      `json:"executable"`
	Namespace  string      `json:"namespace"`
	Parameters []jsonParam `json:"parameters"`
	Output     string      `json:"output"`
	EmulateTTY bool        `json:"emulate_tty"`
}

type jsonParam struct {
	Kind       string   `json:"kind"`
	Path       string   `json:"path,omitempty"`
	Package    string   `json:"package,omitempty"`
	Segments   []string `json:"segments,omitempty"`
	Expression string   `json:"expression"`
}

func toJSONParam(p substitution.Path) jsonParam {
	switch v := p.(type) {
	case substitution.PackageRelativePath:
		return jsonParam{Kind: "package_relative", Package: v.Package, Segments: v.Segments, Expression: v.String()}
	default:
		return jsonParam{Kind: "literal", Path: p.String(), Expression: p.String()}
	}
}

// JSON writes the node descriptions as an indented JSON array.
func JSON(w io.Writer, nodes []*launch.Node) error {
	out := make([]jsonNode, 0, len(nodes))
	for _, n := range nodes {
		jn := jsonNode{
			Package:    n.Package,
			Executable: n.Executable,
			Namespace:  n.Namespace,
			Parameters: make([]jsonParam, 0, len(n.Parameters)),
			Output:     n.Output,
			EmulateTTY: n.EmulateTTY,
		}
		for _, p := range n.Parameters {
			jn.Parameters = append(jn.Parameters, toJSONParam(p))
		}
		out = append(out, jn)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Command writes one ros2 run command line per node. An empty namespace adds
// no remapping; a relative one is made absolute.
func Command(w io.Writer, nodes []*launch.ResolvedNode) error {
	for _, n := range nodes {
		args := []string{"ros2", "run", n.Package, n.Executable, "--ros-args"}
		if ns := n.Namespace; ns != "" {
			if !strings.HasPrefix(ns, "/") {
				ns = "/" + ns
			}
			args = append(args, "-r", "__ns:="+ns)
		}
		for _, p := range n.Parameters {
			args = append(args, "--params-file", p)
		}
		if _, err := fmt.Fprintln(w, shellescape.QuoteCommand(args)); err != nil {
			return err
		}
	}
	return nil
}

// Arguments lists the declared launch arguments and their defaults.
func Arguments(w io.Writer, d *launch.Description) error {
	var b strings.Builder
	b.WriteString("Arguments (pass arguments as '<name>:=<value>'):\n")
	for _, a := range d.Arguments {
		fmt.Fprintf(&b, "\n    '%s':\n", a.Name)
		desc := a.Description
		if desc == "" {
			desc = "no description given"
		}
		fmt.Fprintf(&b, "        %s\n", desc)
		if a.Default != nil {
			fmt.Fprintf(&b, "        (default: %s)\n", a.Default.String())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
