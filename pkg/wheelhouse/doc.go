// SPDX-License-Identifier: MPL-2.0

// Package wheelhouse implements the archive lifecycle: create,
// validate, install, repair and show.
//
// An archive bundles a Python package together with every wheel it
// depends on, so the package can be installed later on a machine with
// no index access. All operations run through a Context value that
// carries the logger and tool paths; nothing in this package touches
// global state.
package wheelhouse
