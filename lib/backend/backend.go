// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"bytes"
	"context"
	"io"
	"os"
)

// Stream is the scoped byte stream a backend yields: readable,
// seekable, and released by Close. Every acquisition must be paired
// with a Close, including on failure paths part-way through a
// decode.
type Stream interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Backend resolves resource names to streams.
type Backend interface {
	// Acquire opens the named resource. expectedChecksum is the hex
	// digest the caller believes the resource has; it is advisory at
	// this layer and may be empty. Acquire blocks until the resource
	// is available (the HTTP backend fetches the full body before
	// returning).
	Acquire(ctx context.Context, name string, expectedChecksum string) (Stream, error)
}

// memoryStream is a Stream over an in-memory buffer. Used by the
// HTTP and Memory backends, which hold the full payload in memory.
type memoryStream struct {
	*bytes.Reader
	closed bool
}

func newMemoryStream(data []byte) *memoryStream {
	return &memoryStream{Reader: bytes.NewReader(data)}
}

func (s *memoryStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.Reader.Read(p)
}

func (s *memoryStream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.Reader.Seek(offset, whence)
}

func (s *memoryStream) Close() error {
	s.closed = true
	return nil
}
