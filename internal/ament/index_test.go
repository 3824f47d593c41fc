package ament

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// installPackage registers pkg under prefix the way colcon does.
func installPackage(t *testing.T, prefix, pkg string) {
	t.Helper()
	dir := filepath.Join(prefix, "share", "ament_index", "resource_index", "packages")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, pkg), nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestShareDirectory_FirstPrefixWins(t *testing.T) {
	overlay := t.TempDir()
	underlay := t.TempDir()
	installPackage(t, overlay, "pid_speed_controller")
	installPackage(t, underlay, "pid_speed_controller")
	installPackage(t, underlay, "controller_manager")

	idx := New(overlay, "", underlay)

	got, err := idx.ShareDirectory("pid_speed_controller")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(overlay, "share", "pid_speed_controller"); got != want {
		t.Errorf("ShareDirectory = %q, want %q", got, want)
	}

	got, err = idx.ShareDirectory("controller_manager")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(underlay, "share", "controller_manager"); got != want {
		t.Errorf("ShareDirectory = %q, want %q", got, want)
	}
}

func TestShareDirectory_NotFound(t *testing.T) {
	idx := New(t.TempDir())
	for _, pkg := range []string{"missing", ""} {
		t.Run(pkg, func(t *testing.T) {
			_, err := idx.ShareDirectory(pkg)
			if !errors.Is(err, ErrPackageNotFound) {
				t.Errorf("ShareDirectory(%q) error = %v, want ErrPackageNotFound", pkg, err)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	t.Setenv(PrefixPathEnv, a+string(os.PathListSeparator)+b)

	got := FromEnv().Prefixes()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Prefixes = %v, want [%s %s]", got, a, b)
	}
}

func TestFromEnv_Unset(t *testing.T) {
	t.Setenv(PrefixPathEnv, "")
	if got := FromEnv().Prefixes(); len(got) != 0 {
		t.Errorf("Prefixes = %v, want none", got)
	}
}
