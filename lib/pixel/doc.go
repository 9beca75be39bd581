// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Package pixel defines the in-memory representation of a tile's
// pixel payload and its normalized on-disk encoding.
//
// An [Array] is a dense n-dimensional block of samples: a sample
// type, a shape, and the flat sample data in row-major order with
// little-endian multi-byte samples. This is the format every tile
// ends up in after materialization, regardless of what encoding the
// bytes arrived in.
//
// The normalized encoding written by [Encode] is a versioned CBOR
// envelope (deterministic encoding via lib/codec). It is
// self-describing — dtype and shape travel with the data — and
// independent of the tile's original source encoding.
package pixel
