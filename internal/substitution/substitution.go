// Package substitution provides deferred launch expressions. An expression is
// built when the launch description is assembled and performed later, once the
// launch context (argument values, environment, installed packages) is known.
package substitution

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Substitution is a value that is only known at launch time.
type Substitution interface {
	// Perform evaluates the expression against the launch context.
	Perform(ctx *Context) (string, error)

	// String renders the expression in launch frontend syntax.
	String() string
}

// Path is a parameter file location, either a LiteralPath or a
// PackageRelativePath.
type Path interface {
	Substitution
	path()
}

// PackageFinder maps a package name to its installed share directory.
type PackageFinder interface {
	ShareDirectory(pkg string) (string, error)
}

// Context carries everything a substitution may need to be performed.
type Context struct {
	configurations map[string]string
	lookupEnv      func(string) (string, bool)
	packages       PackageFinder
}

// NewContext creates a launch context. A nil lookupEnv reads the process
// environment; a nil packages finder makes package lookups fail.
func NewContext(packages PackageFinder, lookupEnv func(string) (string, bool)) *Context {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &Context{
		configurations: make(map[string]string),
		lookupEnv:      lookupEnv,
		packages:       packages,
	}
}

// SetLaunchConfiguration records the performed value of a launch argument.
func (c *Context) SetLaunchConfiguration(name, value string) {
	c.configurations[name] = value
}

// LaunchConfiguration returns the performed value of a launch argument.
func (c *Context) LaunchConfiguration(name string) (string, bool) {
	v, ok := c.configurations[name]
	return v, ok
}

// LaunchConfigurations returns a copy of all performed launch arguments.
func (c *Context) LaunchConfigurations() map[string]string {
	result := make(map[string]string, len(c.configurations))
	for k, v := range c.configurations {
		result[k] = v
	}
	return result
}

// LiteralPath is a path used as given.
type LiteralPath string

func (p LiteralPath) Perform(*Context) (string, error) { return string(p), nil }

func (p LiteralPath) String() string { return string(p) }

func (LiteralPath) path() {}

// PackageRelativePath is a path below an installed package's share directory.
// The package location is only known to whoever performs the expression.
type PackageRelativePath struct {
	Package  string
	Segments []string
}

// NewPackageRelativePath builds a path below the share directory of pkg.
func NewPackageRelativePath(pkg string, segments ...string) PackageRelativePath {
	return PackageRelativePath{Package: pkg, Segments: segments}
}

// Perform resolves the package share directory and joins the segments onto it.
func (p PackageRelativePath) Perform(ctx *Context) (string, error) {
	if ctx == nil || ctx.packages == nil {
		return "", fmt.Errorf("resolving package %q: no package index available", p.Package)
	}
	share, err := ctx.packages.ShareDirectory(p.Package)
	if err != nil {
		return "", fmt.Errorf("resolving package %q: %w", p.Package, err)
	}
	return filepath.Join(append([]string{share}, p.Segments...)...), nil
}

func (p PackageRelativePath) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "$(find-pkg-share %s)", p.Package)
	for _, s := range p.Segments {
		b.WriteString("/")
		b.WriteString(s)
	}
	return b.String()
}

func (PackageRelativePath) path() {}

// EnvironmentVariable reads an environment variable; unset reads as "".
type EnvironmentVariable struct {
	Name string
}

func (e EnvironmentVariable) Perform(ctx *Context) (string, error) {
	lookup := os.LookupEnv
	if ctx != nil {
		lookup = ctx.lookupEnv
	}
	v, _ := lookup(e.Name)
	return v, nil
}

func (e EnvironmentVariable) String() string {
	return fmt.Sprintf("$(env %s)", e.Name)
}

// LaunchConfiguration refers to the performed value of a launch argument.
type LaunchConfiguration struct {
	Name string
}

func (l LaunchConfiguration) Perform(ctx *Context) (string, error) {
	if ctx != nil {
		if v, ok := ctx.LaunchConfiguration(l.Name); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("launch configuration %q is not set", l.Name)
}

func (l LaunchConfiguration) String() string {
	return fmt.Sprintf("$(var %s)", l.Name)
}
