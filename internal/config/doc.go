// SPDX-License-Identifier: MPL-2.0

// Package config loads wheelhouse's configuration file. The file is
// optional: when it is absent every setting falls back to a built-in
// default. When present it is validated against an embedded CUE schema
// before being handed to viper, so typos and type mismatches surface as
// configuration errors instead of silently becoming zero values.
package config
