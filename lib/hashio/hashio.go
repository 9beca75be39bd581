// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package hashio

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/zeebo/blake3"
)

// Algorithm names a digest algorithm. The names appear in tile
// descriptors and CLI flags.
type Algorithm string

const (
	// SHA256 is the default algorithm. Externally produced datasets
	// carry SHA-256 checksums.
	SHA256 Algorithm = "sha256"

	// BLAKE3 is the algorithm used by slicetile-produced datasets.
	BLAKE3 Algorithm = "blake3"
)

// New returns a fresh hasher for the algorithm. An empty Algorithm
// selects SHA256.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case "", SHA256:
		return sha256.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q", a)
	}
}

// ParseAlgorithm validates an algorithm name. An empty name parses
// to SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(name)
	if _, err := a.New(); err != nil {
		return "", err
	}
	if a == "" {
		return SHA256, nil
	}
	return a, nil
}

// Reader wraps an io.ReadSeekCloser and digests every byte returned
// by Read. Seek and Close forward to the underlying stream.
//
// Reader is not safe for concurrent use, matching the tile layer's
// single-reader model.
type Reader struct {
	src    io.ReadSeekCloser
	digest hash.Hash // nil once invalidated
}

// NewReader wraps src, digesting with the given algorithm. Returns
// an error only for an unknown algorithm.
func NewReader(src io.ReadSeekCloser, algorithm Algorithm) (*Reader, error) {
	digest, err := algorithm.New()
	if err != nil {
		return nil, err
	}
	return &Reader{src: src, digest: digest}, nil
}

// Read forwards to the underlying stream. Bytes actually returned
// are fed to the digest unless hashing has been invalidated.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 && r.digest != nil {
		// hash.Hash.Write never returns an error.
		r.digest.Write(p[:n])
	}
	return n, err
}

// Seek forwards to the underlying stream. Any seek with a non-zero
// offset permanently invalidates the digest; a zero offset is
// assumed to be a handle reset (or a position query) and leaves it
// intact.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if offset != 0 {
		r.digest = nil
	}
	return r.src.Seek(offset, whence)
}

// Tell returns the current stream position without touching the
// digest. Pure pass-through via Seek(0, io.SeekCurrent) on the
// underlying stream.
func (r *Reader) Tell() (int64, error) {
	return r.src.Seek(0, io.SeekCurrent)
}

// Close forwards to the underlying stream.
func (r *Reader) Close() error {
	return r.src.Close()
}

// Sum returns the hex digest of everything read so far and true, or
// "" and false if hashing was invalidated by a seek.
func (r *Reader) Sum() (string, bool) {
	if r.digest == nil {
		return "", false
	}
	return hex.EncodeToString(r.digest.Sum(nil)), true
}
