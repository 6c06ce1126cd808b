// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat reports an archive format outside the supported set.
	ErrInvalidFormat = errors.New("invalid archive format")
	// ErrEmptyExecutable reports a tool path configured as the empty string.
	ErrEmptyExecutable = errors.New("executable path must not be empty")
)

// Config holds every user-tunable setting. Zero values are never used
// directly; Load applies the defaults below before reading any file.
type Config struct {
	// DefaultFormat selects the archive codec used by create when the
	// command line does not override it. One of "zip" or "tar.gz".
	DefaultFormat string `mapstructure:"default_format"`

	// OutputDirectory is where created and repaired archives land when
	// no explicit output path is given. Empty means the current
	// working directory.
	OutputDirectory string `mapstructure:"output_directory"`

	// PythonPath is the interpreter used to build wheels, create
	// validation environments and query version tags.
	PythonPath string `mapstructure:"python_path"`

	// PipPath is the pip executable used for wheel downloads and
	// installs. It usually belongs to PythonPath's installation but
	// may point anywhere.
	PipPath string `mapstructure:"pip_path"`

	// IndexURL is the template used to resolve bare package names to
	// their latest release. Must contain exactly one %s verb.
	IndexURL string `mapstructure:"index_url"`

	// Verbose enables debug-level logging for tool subprocess output.
	Verbose bool `mapstructure:"verbose"`
}

// Validate checks cross-field constraints that the CUE schema cannot
// express against values merged from defaults, file and flags.
func (c *Config) Validate() error {
	switch c.DefaultFormat {
	case "zip", "tar.gz":
	default:
		return fmt.Errorf("%w: %q (want \"zip\" or \"tar.gz\")", ErrInvalidFormat, c.DefaultFormat)
	}
	if c.PythonPath == "" {
		return fmt.Errorf("python_path: %w", ErrEmptyExecutable)
	}
	if c.PipPath == "" {
		return fmt.Errorf("pip_path: %w", ErrEmptyExecutable)
	}
	return nil
}
