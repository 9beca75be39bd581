// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Package backend supplies named byte streams for tile sources.
//
// A Backend resolves a resource name to a [Stream]: a readable,
// seekable handle the caller must close on every exit path. Three
// implementations are provided: [HTTP] (the reference network
// backend, full synchronous fetch into memory), [Disk] (files under
// a root directory), and [Memory] (map-backed, for tests and
// in-process datasets).
//
// Backends do not verify checksums. The expected checksum passed to
// Acquire is advisory metadata — an implementation may use it for
// cache addressing or request tagging, but verification happens in
// the tile layer, on the bytes the decoder actually consumed.
package backend
