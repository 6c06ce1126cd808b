// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// osReleasePath is the standard location of the distribution record on
// Linux. Overridable in tests.
var osReleasePath = "/etc/os-release"

// OSProperties is the build-host distribution fingerprint embedded in
// archive metadata. All values are lower-cased; on non-Linux hosts (or
// when the record cannot be read) every field is nil.
type OSProperties struct {
	Distribution        *string `json:"distribution"`
	DistributionVersion *string `json:"distribution_version"`
	DistributionRelease *string `json:"distribution_release"`
}

// LocalOSProperties reads the local distribution fingerprint from
// /etc/os-release. Missing fields stay nil rather than erroring: the
// fingerprint is informational metadata, not a gating input.
func LocalOSProperties() OSProperties {
	if runtime.GOOS != Linux {
		return OSProperties{}
	}

	file, err := os.Open(osReleasePath)
	if err != nil {
		return OSProperties{}
	}
	defer file.Close()

	return parseOSRelease(file)
}

// parseOSRelease extracts ID, VERSION_ID and VERSION_CODENAME from an
// os-release style KEY=value stream.
func parseOSRelease(file *os.File) OSProperties {
	values := map[string]string{}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[key] = strings.ToLower(strings.Trim(value, `"'`))
	}

	props := OSProperties{}
	if v, ok := values["ID"]; ok {
		props.Distribution = &v
	}
	if v, ok := values["VERSION_ID"]; ok {
		props.DistributionVersion = &v
	}
	if v, ok := values["VERSION_CODENAME"]; ok {
		props.DistributionRelease = &v
	}
	return props
}
