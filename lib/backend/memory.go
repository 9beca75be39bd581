// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"os"
)

// Memory serves resources from an in-process map. Intended for tests
// and for datasets assembled in memory before being written out.
type Memory struct {
	resources map[string][]byte
}

// NewMemory creates a Memory backend over the given resources. The
// map is used directly, not copied; later Put calls and map edits
// are visible to subsequent Acquires.
func NewMemory(resources map[string][]byte) *Memory {
	if resources == nil {
		resources = make(map[string][]byte)
	}
	return &Memory{resources: resources}
}

// Put adds or replaces a resource.
func (b *Memory) Put(name string, data []byte) {
	b.resources[name] = data
}

// Acquire returns a stream over the named resource. A missing name
// reports os.ErrNotExist so callers can errors.Is it the same way
// they would for the disk backend.
func (b *Memory) Acquire(ctx context.Context, name string, expectedChecksum string) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := b.resources[name]
	if !ok {
		return nil, fmt.Errorf("resource %q: %w", name, os.ErrNotExist)
	}
	return newMemoryStream(data), nil
}
