// SPDX-License-Identifier: MPL-2.0

package config

import "sync"

var (
	overrideMu  sync.RWMutex
	dirOverride string
)

// SetConfigDirOverride redirects ConfigDir for the current process.
// Tests use it to isolate config loading from the host environment.
func SetConfigDirOverride(dir string) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	dirOverride = dir
}

// Reset clears the config directory override.
func Reset() {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	dirOverride = ""
}

func configDirOverride() string {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	return dirOverride
}
