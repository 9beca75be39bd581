// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Package tile implements the addressable unit of a tiled imaging
// dataset: positional metadata plus a lazily materialized pixel
// payload.
//
// A tile is in one of two states. Deferred: it holds a one-shot
// acquisition recipe (a [Source] closure) and a format tag, and no
// pixel data has been read. Materialized: it holds a [pixel.Array]
// and the recipe is gone. The transition runs exactly once, on the
// first call that needs the data ([Tile.Load], [Tile.Array],
// [Tile.WriteTo], [Tile.Validate]) or on [Tile.Copy], and never runs
// backwards.
//
// During materialization the source stream is wrapped in a
// hashio.Reader, so the tile ends up with a digest of the exact
// bytes its decoder consumed. [Tile.Validate] compares that digest
// against the expected checksum the tile was constructed with.
//
// Tiles are not safe for concurrent use. The owning dataset
// serializes access to each tile; once materialized, the array is
// cached for the tile's remaining lifetime with no eviction.
package tile
