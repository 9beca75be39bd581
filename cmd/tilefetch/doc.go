// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Tilefetch retrieves a single tile from an HTTP or disk backend,
// optionally verifies its checksum, and writes the payload to a file
// or stdout. It is the command-line face of the tile pipeline: a
// quick way to spot-check one tile of a dataset without loading the
// whole manifest.
//
// The tile is named either inline (--name/--format/--checksum) or by
// a descriptor file (--descriptor tile.yaml, also .json/.jsonc).
//
// By default the output is the normalized array encoding. With --raw
// the original source bytes are copied through undecoded.
//
// Exit codes:
//
//	0  tile fetched (and validated, when a checksum was available)
//	1  checksum mismatch
//	2  error (bad arguments, fetch or decode failure)
package main
