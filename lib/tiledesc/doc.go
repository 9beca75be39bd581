// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Package tiledesc loads tile descriptor files: the per-tile record
// a dataset manifest stores for each addressable tile — resource
// name, format tag, checksum, declared shape, and positional
// metadata.
//
// Descriptors are read from YAML (.yaml, .yml) or JSONC (.json,
// .jsonc; JSON with comments and trailing commas). A descriptor plus
// a backend yields a deferred tile, ready to materialize on first
// access.
package tiledesc
