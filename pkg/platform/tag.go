// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"wheelhouse/pkg/wheels"
)

// AnyTag is the platform tag of pure wheels that run on every machine.
const AnyTag = "any"

// IsLinuxExact reports whether tag names a concrete Linux build
// (e.g. "linux_x86_64"), as opposed to a portable manylinux tier.
func IsLinuxExact(tag string) bool {
	return strings.Contains(tag, "linux") && !strings.Contains(tag, "manylinux")
}

// IsPortableLinux reports whether tag names a portable Linux ABI tier
// (a "manylinux*" tag).
func IsPortableLinux(tag string) bool {
	return strings.Contains(tag, "manylinux")
}

// Resolve derives the single platform tag describing a whole set of
// wheel platform tags.
//
// A set of wheels built or downloaded on one machine can only target a
// single platform, so any tag that is not "any" describes the set. Two
// refinements:
//
//   - An exact-arch Linux tag wins outright the moment it is seen: it
//     means the set is not portable across distributions, regardless of
//     what other wheels claim.
//   - Otherwise the last non-"any" tag seen wins. If only "any" tags
//     are present (or the set is empty), the result is "any".
func Resolve(tags []string, logger *log.Logger) string {
	candidate := ""

	for _, tag := range tags {
		if IsLinuxExact(tag) {
			// Either linux_x86_64 or linux_i686 across all wheels.
			// Once one wheel matches, the whole set only fits that
			// concrete platform.
			return tag
		}
		if tag != AnyTag {
			// Windows, OSX or a manylinux tier.
			if candidate != "" && candidate != tag && logger != nil {
				logger.Warn("wheel set mixes platform tags; keeping the later one",
					"previous", candidate, "current", tag)
			}
			candidate = tag
		}
	}

	if candidate == "" {
		return AnyTag
	}
	return candidate
}

// ResolveDir resolves the platform tag for every wheel in dir.
// An empty directory resolves to "any".
func ResolveDir(dir string, logger *log.Logger) (string, error) {
	names, err := wheels.List(dir)
	if err != nil {
		return "", err
	}

	tags := make([]string, 0, len(names))
	for _, name := range names {
		tags = append(tags, wheels.PlatformTag(name))
	}
	return Resolve(tags, logger), nil
}

// IsSupported decides, at install time, whether an archive declaring
// supportedTag can be installed on a machine whose tag is machineTag.
//
// Outside Linux the tags must be byte-identical; no cross-OS
// compatibility is ever granted. On Linux, a declared tag without a
// portable marker must also be byte-identical, and in every case the
// architecture segment must match: a portable tier only waives
// libc/ABI concerns, never instruction-set width.
func IsSupported(supportedTag, machineTag string) bool {
	if runtime.GOOS != Linux {
		return machineTag == supportedTag
	}

	if !IsPortableLinux(supportedTag) && machineTag != supportedTag {
		return false
	}

	machineArch := archSegment(machineTag)
	supportedArch := archSegment(supportedTag)
	return machineArch == supportedArch
}

// archSegment returns the architecture field of a platform tag, by
// convention the second underscore-separated segment (e.g. "x86" of
// "linux_x86_64", "i686" of "manylinux1_i686"). Tags without an
// underscore have no architecture segment and yield "".
func archSegment(tag string) string {
	fields := strings.Split(tag, "_")
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// Local returns the platform tag of the machine wheelhouse is running
// on, in the same vocabulary wheel names use.
func Local() string {
	return localFor(runtime.GOOS, runtime.GOARCH)
}

// localFor is split out of Local so the GOOS/GOARCH mapping is testable
// on any host.
func localFor(goos, goarch string) string {
	arch := wheelArch(goarch)

	switch goos {
	case Linux:
		return "linux_" + arch
	case Windows:
		if goarch == "386" {
			return "win32"
		}
		return "win_" + arch
	case Darwin:
		if goarch == "arm64" {
			return "macosx_11_0_arm64"
		}
		return "macosx_10_9_" + arch
	default:
		return goos + "_" + arch
	}
}

// wheelArch maps a GOARCH value to the architecture vocabulary used by
// wheel platform tags.
func wheelArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armv7l"
	default:
		return goarch
	}
}
