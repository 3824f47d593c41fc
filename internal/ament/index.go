// Package ament locates installed ROS 2 packages through the ament resource index.
// A package is installed under a prefix when the marker file
// <prefix>/share/ament_index/resource_index/packages/<name> exists; its share
// directory is then <prefix>/share/<name>.
package ament

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PrefixPathEnv is the environment variable listing install prefixes.
const PrefixPathEnv = "AMENT_PREFIX_PATH"

// ErrPackageNotFound is returned when no prefix contains the requested package.
var ErrPackageNotFound = errors.New("package not found")

// Index searches a fixed, ordered list of install prefixes.
type Index struct {
	prefixes []string
}

// New creates an index over the given prefixes. Empty entries are ignored.
func New(prefixes ...string) *Index {
	idx := &Index{prefixes: make([]string, 0, len(prefixes))}
	for _, p := range prefixes {
		if p != "" {
			idx.prefixes = append(idx.prefixes, p)
		}
	}
	return idx
}

// FromEnv creates an index from AMENT_PREFIX_PATH.
func FromEnv() *Index {
	return New(filepath.SplitList(os.Getenv(PrefixPathEnv))...)
}

// Prefixes returns a copy of the searched prefixes, in search order.
func (i *Index) Prefixes() []string {
	result := make([]string, len(i.prefixes))
	copy(result, i.prefixes)
	return result
}

// Prefix returns the first install prefix that registers the package.
func (i *Index) Prefix(pkg string) (string, error) {
	if pkg == "" {
		return "", fmt.Errorf("empty package name: %w", ErrPackageNotFound)
	}
	for _, prefix := range i.prefixes {
		marker := filepath.Join(prefix, "share", "ament_index", "resource_index", "packages", pkg)
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return prefix, nil
		}
	}
	return "", fmt.Errorf("%q: %w", pkg, ErrPackageNotFound)
}

// ShareDirectory returns <prefix>/share/<pkg> for the first prefix holding pkg.
func (i *Index) ShareDirectory(pkg string) (string, error) {
	prefix, err := i.Prefix(pkg)
	if err != nil {
		return "", err
	}
	return filepath.Join(prefix, "share", pkg), nil
}
