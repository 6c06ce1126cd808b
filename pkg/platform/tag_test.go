// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"empty set", nil, "any"},
		{"all any", []string{"any", "any"}, "any"},
		{"single concrete", []string{"any", "win32", "any"}, "win32"},
		{"last non-any wins", []string{"manylinux1_x86_64", "manylinux2014_x86_64"}, "manylinux2014_x86_64"},
		{"exact linux short-circuits", []string{"manylinux1_x86_64", "linux_x86_64", "win32"}, "linux_x86_64"},
		{"exact linux first", []string{"linux_i686", "any"}, "linux_i686"},
		{"manylinux is not exact", []string{"manylinux2010_i686", "any"}, "manylinux2010_i686"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.tags, nil); got != tt.want {
				t.Errorf("Resolve(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}

func TestResolveDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"pure-1.0-py3-none-any.whl",
		"native-2.0-cp311-cp311-manylinux1_x86_64.whl",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("writing wheel: %v", err)
		}
	}

	got, err := ResolveDir(dir, nil)
	if err != nil {
		t.Fatalf("ResolveDir() error = %v", err)
	}
	if got != "manylinux1_x86_64" {
		t.Errorf("ResolveDir() = %q, want %q", got, "manylinux1_x86_64")
	}
}

func TestResolveDirEmpty(t *testing.T) {
	got, err := ResolveDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ResolveDir() error = %v", err)
	}
	if got != AnyTag {
		t.Errorf("ResolveDir() = %q, want %q", got, AnyTag)
	}
}

func TestIsLinuxExact(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"linux_x86_64", true},
		{"linux_i686", true},
		{"manylinux1_x86_64", false},
		{"manylinux_2_17_aarch64", false},
		{"win32", false},
		{"any", false},
	}
	for _, tt := range tests {
		if got := IsLinuxExact(tt.tag); got != tt.want {
			t.Errorf("IsLinuxExact(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestIsSupportedIdenticalTags(t *testing.T) {
	tests := []string{"linux_x86_64", "win32", "macosx_10_9_x86_64"}
	for _, tag := range tests {
		if !IsSupported(tag, tag) {
			t.Errorf("IsSupported(%q, %q) = false, want true", tag, tag)
		}
	}
}

func TestIsSupportedOnLinux(t *testing.T) {
	if runtime.GOOS != Linux {
		t.Skip("Linux matching rules apply only on Linux hosts")
	}

	tests := []struct {
		name      string
		supported string
		machine   string
		want      bool
	}{
		{"portable tier waives libc", "manylinux1_x86_64", "linux_x86_64", true},
		{"portable tier keeps arch", "manylinux1_x86_64", "linux_i686", false},
		{"exact tag needs identity", "linux_x86_64", "linux_i686", false},
		{"exact match passes", "linux_x86_64", "linux_x86_64", true},
		{"newer manylinux tier", "manylinux2014_x86_64", "linux_x86_64", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupported(tt.supported, tt.machine); got != tt.want {
				t.Errorf("IsSupported(%q, %q) = %v, want %v",
					tt.supported, tt.machine, got, tt.want)
			}
		})
	}
}

func TestArchSegment(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"linux_x86_64", "x86"},
		{"manylinux1_x86_64", "x86"},
		{"manylinux1_i686", "i686"},
		{"linux_aarch64", "aarch64"},
		{"win32", ""},
	}
	for _, tt := range tests {
		if got := archSegment(tt.tag); got != tt.want {
			t.Errorf("archSegment(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestLocalFor(t *testing.T) {
	tests := []struct {
		goos   string
		goarch string
		want   string
	}{
		{"linux", "amd64", "linux_x86_64"},
		{"linux", "arm64", "linux_aarch64"},
		{"windows", "386", "win32"},
		{"windows", "amd64", "win_amd64"},
		{"darwin", "amd64", "macosx_10_9_x86_64"},
		{"darwin", "arm64", "macosx_11_0_arm64"},
	}
	for _, tt := range tests {
		if got := localFor(tt.goos, tt.goarch); got != tt.want {
			t.Errorf("localFor(%q, %q) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}
