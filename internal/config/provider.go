// SPDX-License-Identifier: MPL-2.0

package config

// LoadOptions pins down where loadWithOptions looks for the config file.
// ConfigFilePath, when set, wins over ConfigDirPath and must exist.
type LoadOptions struct {
	ConfigFilePath string
	ConfigDirPath  string
}

// Provider supplies LoadOptions. The CLI uses it to honor --config and
// tests use it to point loading at temp directories.
type Provider interface {
	Options() (LoadOptions, error)
}

type fileProvider struct {
	filePath string
}

func (p fileProvider) Options() (LoadOptions, error) {
	if p.filePath != "" {
		return LoadOptions{ConfigFilePath: p.filePath}, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return LoadOptions{}, err
	}
	return LoadOptions{ConfigDirPath: dir}, nil
}

// DefaultProvider resolves the platform config directory.
func DefaultProvider() Provider {
	return fileProvider{}
}

// FileProvider loads from an explicit config file path.
func FileProvider(path string) Provider {
	return fileProvider{filePath: path}
}
