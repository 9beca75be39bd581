// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package tile

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInconsistentState reports that a tile holds both a
	// materialized array and a pending source. The state machine
	// makes this unreachable; seeing it means a core invariant was
	// violated and the tile cannot be trusted.
	ErrInconsistentState = errors.New("tile has both a materialized array and a pending source")

	// ErrSourceConsumed reports an operation that needs the original
	// source bytes — Copy, or re-attaching a source — on a tile whose
	// source has already been consumed. Once a tile is materialized
	// its original-format bytes are gone.
	ErrSourceConsumed = errors.New("tile source already consumed")
)

// ShapeMismatchError reports a disagreement between a tile's
// declared shape and the shape of the array assigned to it.
type ShapeMismatchError struct {
	Declared []int
	Actual   []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("array shape %v does not match declared tile shape %v", e.Actual, e.Declared)
}

// ChecksumMismatchError reports that the digest computed while
// reading a tile's source disagrees with the expected checksum. It
// signals data corruption or a wrong source.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("tile checksum mismatch: expected %s, computed %s", e.Expected, e.Actual)
}
