// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"github.com/spf13/viper"

	"wheelhouse/internal/issue"
)

//go:embed config_schema.cue
var configSchema string

const configFileName = "config.cue"

// Defaults applied before any file is read.
const (
	DefaultFormat     = "zip"
	DefaultPythonPath = "python"
	DefaultPipPath    = "pip"
	DefaultIndexURL   = "https://pypi.org/pypi/%s/json"
)

// ConfigDir returns the directory wheelhouse looks in for its optional
// config file, following each platform's convention.
func ConfigDir() (string, error) {
	if override := configDirOverride(); override != "" {
		return override, nil
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "wheelhouse"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "wheelhouse"), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "wheelhouse"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		return filepath.Join(home, ".config", "wheelhouse"), nil
	}
}

// Load reads the config file from the default location, falling back to
// built-in defaults when no file exists.
func Load() (*Config, error) {
	return LoadWithProvider(DefaultProvider())
}

// LoadWithProvider reads configuration through the given provider,
// letting tests and the --config flag substitute file locations.
func LoadWithProvider(p Provider) (*Config, error) {
	opts, err := p.Options()
	if err != nil {
		return nil, err
	}
	return loadWithOptions(opts)
}

func loadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetDefault("default_format", DefaultFormat)
	v.SetDefault("output_directory", "")
	v.SetDefault("python_path", DefaultPythonPath)
	v.SetDefault("pip_path", DefaultPipPath)
	v.SetDefault("index_url", DefaultIndexURL)
	v.SetDefault("verbose", false)

	configPath := opts.ConfigFilePath
	if configPath == "" {
		configPath = filepath.Join(opts.ConfigDirPath, configFileName)
	} else if !fileExists(configPath) {
		return nil, issue.WrapWithContext(
			fmt.Errorf("config file %s does not exist", configPath),
			"reading configuration",
			configPath,
		).WithSuggestion("Check the path passed via --config")
	}

	if fileExists(configPath) {
		if err := loadCUEIntoViper(v, configPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.WrapWithContext(err, "decoding configuration", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, issue.WrapWithContext(err, "validating configuration", configPath)
	}
	return &cfg, nil
}

// loadCUEIntoViper compiles the user's CUE file, unifies it with the
// embedded schema and merges the validated values into v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return issue.WrapWithContext(err, "reading configuration", path)
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(configSchema)
	if schema.Err() != nil {
		return fmt.Errorf("compiling config schema: %w", schema.Err())
	}
	schemaDef := schema.LookupPath(cue.ParsePath("#Config"))
	if schemaDef.Err() != nil {
		return fmt.Errorf("looking up #Config definition: %w", schemaDef.Err())
	}

	userVal := ctx.CompileBytes(data, cue.Filename(path))
	if userVal.Err() != nil {
		return issue.WrapWithContext(
			fmt.Errorf("%s", errors.Details(userVal.Err(), nil)),
			"parsing configuration", path)
	}

	unified := schemaDef.Unify(userVal)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return issue.WrapWithContext(
			fmt.Errorf("%s", errors.Details(err, nil)),
			"validating configuration", path,
		).WithSuggestion("Compare the file against the settings listed in `wheelhouse --help`")
	}

	var settings map[string]any
	if err := unified.Decode(&settings); err != nil {
		return issue.WrapWithContext(err, "decoding configuration", path)
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return issue.WrapWithContext(err, "merging configuration", path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
