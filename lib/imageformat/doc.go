// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Package imageformat maps format tags to the decoders that turn a
// tile's source bytes into a pixel array.
//
// The registry is open: concrete image encodings (TIFF, PNG, vendor
// microscope formats) register their decoders at init time the same
// way the built-ins below do, and the tile layer looks decoders up
// by tag at materialization. Built-in tags:
//
//   - "array" — the normalized CBOR envelope (lib/pixel). This is
//     also the canonical tag a tile carries after materialization.
//   - "gray8" — the whole stream as a one-dimensional uint8 plane.
//   - "array+lz4", "array+zstd", "array+bg4lz4" — the normalized
//     envelope behind per-payload compression.
package imageformat
