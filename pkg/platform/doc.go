// SPDX-License-Identifier: MPL-2.0

// Package platform models wheel platform tags and the compatibility
// rules between them.
//
// A platform tag is the last dash-separated field of a wheel file name
// and falls into one of three families:
//   - "any", which matches every machine
//   - OS-specific exact tags ("win32", "macosx_10_9_x86_64") that match
//     only an identical machine tag
//   - Linux tags, split into exact-arch tags ("linux_x86_64") and
//     portable-ABI tags ("manylinux1_x86_64", "manylinux2014_i686")
//     that cover every distribution sharing the architecture
//
// The package provides the resolver that derives a single tag for a
// whole directory of wheels, the install-time compatibility matcher,
// the local machine tag, and the Linux distribution fingerprint used
// in archive metadata.
package platform
