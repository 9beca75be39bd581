// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk serves resources from files under a root directory. Resource
// names use forward slashes regardless of platform.
type Disk struct {
	root string
}

// NewDisk creates a Disk backend rooted at the given directory.
func NewDisk(root string) *Disk {
	return &Disk{root: root}
}

// Acquire opens the named file. Names that escape the root
// (absolute, or climbing with "..") are rejected.
func (b *Disk) Acquire(ctx context.Context, name string, expectedChecksum string) (Stream, error) {
	relative := filepath.FromSlash(name)
	if filepath.IsAbs(relative) {
		return nil, fmt.Errorf("resource name %q is absolute", name)
	}
	path := filepath.Join(b.root, relative)
	if path != b.root && !strings.HasPrefix(path, b.root+string(filepath.Separator)) {
		return nil, fmt.Errorf("resource name %q escapes the backend root", name)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return file, nil
}
