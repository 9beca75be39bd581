// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package tile

import (
	"context"

	"github.com/slicelab/slicetile/lib/backend"
)

// Source is a tile's acquisition recipe: invoked at most once per
// successful materialization, it yields the scoped stream the tile's
// bytes are decoded from. The tile closes the stream on every exit
// path.
//
// A Source may be invoked again if a previous materialization
// attempt failed before decoding completed — the tile stays deferred
// on failure.
type Source func(ctx context.Context) (backend.Stream, error)

// SourceFromBackend binds a backend resource into a Source. This is
// the recipe the dataset layer attaches when it enumerates a
// manifest: the name and expected checksum are captured now, the
// fetch happens when (if ever) the tile's data is requested.
func SourceFromBackend(b backend.Backend, name string, expectedChecksum string) Source {
	return func(ctx context.Context) (backend.Stream, error) {
		return b.Acquire(ctx, name, expectedChecksum)
	}
}
