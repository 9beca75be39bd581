// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for slicetile
// persisted payloads, most importantly the normalized tile array
// envelope in lib/pixel.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Determinism matters here because tile payloads are checksummed —
// the same array must always serialize to the same bytes, and
// therefore the same digest.
package codec
