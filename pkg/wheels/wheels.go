// SPDX-License-Identifier: MPL-2.0

// Package wheels models wheel files: the dash-separated tag fields
// encoded in their names and the contents of a staging directory.
//
// A wheel file name has the form
//
//	name-version[-build]-pytag-abitag-platform.whl
//
// Identity is the file name. Wheels are produced by the external
// package manager and never mutated; they are only removed when
// excluded at packaging time or superseded by a repair step.
package wheels

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the wheel file extension, lower-cased.
const Extension = ".whl"

// Tags returns the dash-separated tag fields of a wheel file name,
// without the extension. The path may be absolute; only the base name
// is inspected.
func Tags(wheelName string) []string {
	base := filepath.Base(wheelName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Split(stem, "-")
}

// PlatformTag extracts the platform tag of a wheel from its file name.
// The platform is always the last tag field.
func PlatformTag(wheelName string) string {
	tags := Tags(wheelName)
	return tags[len(tags)-1]
}

// DistributionName returns the distribution (package) name field of a
// wheel file name, normalized to lower case with dashes replaced by
// underscores, so it can be compared against user-supplied package
// names.
func DistributionName(wheelName string) string {
	return Normalize(Tags(wheelName)[0])
}

// Normalize lower-cases a package name and replaces dashes with
// underscores, the same folding wheel names themselves use.
func Normalize(packageName string) string {
	return strings.ToLower(strings.ReplaceAll(packageName, "-", "_"))
}

// List returns the wheel file names in dir, sorted lexically.
// A missing directory is reported as an error; an empty directory
// yields an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read wheels directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == Extension {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Exclude removes from dir every wheel whose distribution name matches
// one of the given package names and returns the file names it removed,
// sorted. Package names are compared after Normalize folding.
func Exclude(dir string, packages []string) ([]string, error) {
	if len(packages) == 0 {
		return nil, nil
	}

	excluded := make(map[string]bool, len(packages))
	for _, pkg := range packages {
		excluded[Normalize(pkg)] = true
	}

	names, err := List(dir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, name := range names {
		if !excluded[DistributionName(name)] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("failed to remove excluded wheel %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
