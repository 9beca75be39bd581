// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package tile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/slicelab/slicetile/lib/hashio"
	"github.com/slicelab/slicetile/lib/imageformat"
	"github.com/slicelab/slicetile/lib/pixel"
)

// Extent is a physical coordinate range along one dimension, in the
// dataset's units (typically microns).
type Extent struct {
	Min float64
	Max float64
}

// Tile is one addressable unit of a tiled dataset. See the package
// documentation for the lifecycle.
type Tile struct {
	coordinates map[string]Extent
	indices     map[string]int
	extras      map[string]any

	shape            []int // nil until declared or materialized
	expectedChecksum string
	hashAlgorithm    hashio.Algorithm

	formatTag string
	array     *pixel.Array
	source    Source // nil once consumed or after direct assignment
	consumed  bool   // a source was consumed by Load or Copy

	actualChecksum string
}

// Option configures a Tile at construction.
type Option func(*Tile)

// WithShape declares the tile's pixel dimensions up front. A
// materialized array whose shape disagrees is rejected.
func WithShape(dimensions ...int) Option {
	return func(t *Tile) {
		t.shape = slices.Clone(dimensions)
	}
}

// WithExpectedChecksum sets the hex digest the tile's source bytes
// are expected to hash to. Absence is non-fatal: Validate passes
// trivially without one.
func WithExpectedChecksum(checksum string) Option {
	return func(t *Tile) {
		t.expectedChecksum = checksum
	}
}

// WithExtras attaches opaque caller metadata, passed through
// unmodified.
func WithExtras(extras map[string]any) Option {
	return func(t *Tile) {
		t.extras = extras
	}
}

// WithHashAlgorithm selects the digest algorithm used while reading
// the source. Defaults to SHA-256.
func WithHashAlgorithm(algorithm hashio.Algorithm) Option {
	return func(t *Tile) {
		t.hashAlgorithm = algorithm
	}
}

// New creates a tile with its positional metadata. The coordinate
// and index maps are copied; they are immutable for the tile's
// lifetime. The tile has no payload yet — follow with AttachSource
// or SetArray before first use.
func New(coordinates map[string]Extent, indices map[string]int, options ...Option) *Tile {
	t := &Tile{
		coordinates: maps.Clone(coordinates),
		indices:     maps.Clone(indices),
	}
	for _, option := range options {
		option(t)
	}
	if t.extras == nil {
		t.extras = make(map[string]any)
	}
	return t
}

// Coordinates returns a copy of the tile's physical extents by
// dimension name.
func (t *Tile) Coordinates() map[string]Extent {
	return maps.Clone(t.coordinates)
}

// Indices returns a copy of the tile's grid positions by dimension
// name.
func (t *Tile) Indices() map[string]int {
	return maps.Clone(t.indices)
}

// Extras returns the opaque caller metadata attached at
// construction.
func (t *Tile) Extras() map[string]any {
	return t.extras
}

// Shape returns the tile's pixel dimensions, or nil if they are not
// yet known (undeclared and not yet materialized).
func (t *Tile) Shape() []int {
	return slices.Clone(t.shape)
}

// FormatTag returns the tag of the decoder the pending source will
// be fed to, or [imageformat.TagArray] once materialized.
func (t *Tile) FormatTag() string {
	return t.formatTag
}

// ExpectedChecksum returns the digest the tile was constructed with,
// or "".
func (t *Tile) ExpectedChecksum() string {
	return t.expectedChecksum
}

// ActualChecksum returns the digest computed while materializing, or
// "" if the tile has not materialized through a hashed read.
func (t *Tile) ActualChecksum() string {
	return t.actualChecksum
}

// Materialized reports whether the tile holds its array in memory.
func (t *Tile) Materialized() bool {
	return t.array != nil
}

// AttachSource gives the tile a deferred acquisition recipe and the
// format tag its bytes decode with. Any directly assigned array is
// discarded — re-attaching re-points the tile at a different source.
// Once a source has been consumed by Load or Copy the original
// payload is gone and re-attachment reports ErrSourceConsumed.
func (t *Tile) AttachSource(src Source, formatTag string) error {
	if src == nil {
		return fmt.Errorf("attaching tile source: nil source")
	}
	if t.consumed {
		return fmt.Errorf("attaching tile source: %w", ErrSourceConsumed)
	}
	t.source = src
	t.formatTag = formatTag
	t.array = nil
	return nil
}

// SetArray materializes the tile by direct injection, bypassing any
// source. The array must agree with a previously declared shape. The
// pending source, if any, is discarded unconsumed.
func (t *Tile) SetArray(a *pixel.Array) error {
	if a == nil {
		return fmt.Errorf("assigning tile array: nil array")
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("assigning tile array: %w", err)
	}
	if t.shape != nil && !a.ShapeEquals(t.shape) {
		return &ShapeMismatchError{Declared: slices.Clone(t.shape), Actual: slices.Clone(a.Shape)}
	}
	t.source = nil
	t.array = a
	t.formatTag = imageformat.TagArray
	t.shape = slices.Clone(a.Shape)
	return nil
}

// Load materializes a deferred tile: acquire the source stream, wrap
// it in a hashing reader, decode, store the array, record the
// digest, drop the recipe. Idempotent — a materialized tile returns
// immediately. On failure the recipe is kept and the tile stays
// deferred, so a transient acquisition error is retryable by simply
// calling Load again.
func (t *Tile) Load(ctx context.Context) error {
	if t.source == nil {
		return nil
	}
	if t.array != nil {
		return ErrInconsistentState
	}

	decode, err := imageformat.Lookup(t.formatTag)
	if err != nil {
		return fmt.Errorf("loading tile: %w", err)
	}

	stream, err := t.source(ctx)
	if err != nil {
		return fmt.Errorf("acquiring tile source: %w", err)
	}
	defer stream.Close()

	reader, err := hashio.NewReader(stream, t.hashAlgorithm)
	if err != nil {
		return fmt.Errorf("loading tile: %w", err)
	}

	array, err := decode(reader)
	if err != nil {
		return fmt.Errorf("decoding tile (format %q): %w", t.formatTag, err)
	}
	if t.shape != nil && !array.ShapeEquals(t.shape) {
		return &ShapeMismatchError{Declared: slices.Clone(t.shape), Actual: slices.Clone(array.Shape)}
	}

	if digest, ok := reader.Sum(); ok {
		t.actualChecksum = digest
	}

	t.array = array
	t.source = nil
	t.consumed = true
	t.formatTag = imageformat.TagArray
	t.shape = slices.Clone(array.Shape)
	return nil
}

// Array returns the tile's pixel data, materializing it first if the
// tile is still deferred.
func (t *Tile) Array(ctx context.Context) (*pixel.Array, error) {
	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t.array, nil
}

// WriteTo materializes the tile if needed and writes its array in
// the normalized encoding to w.
func (t *Tile) WriteTo(ctx context.Context, w io.Writer) error {
	if err := t.Load(ctx); err != nil {
		return err
	}
	if t.array == nil {
		return fmt.Errorf("writing tile: no array and no source attached")
	}
	return pixel.Encode(w, t.array)
}

// Copy writes the tile's original, undecoded source bytes to w,
// materializing the array from those same bytes as a side effect.
// Valid only while the tile is still deferred: once materialized
// (by Load, Copy, or SetArray) the original-format bytes no longer
// exist and Copy reports ErrSourceConsumed.
//
// Copy reads the source without the hashing reader, so it leaves the
// actual checksum unset.
func (t *Tile) Copy(ctx context.Context, w io.Writer) error {
	if t.source == nil {
		return fmt.Errorf("copying tile: %w", ErrSourceConsumed)
	}
	if t.array != nil {
		return ErrInconsistentState
	}

	decode, err := imageformat.Lookup(t.formatTag)
	if err != nil {
		return fmt.Errorf("copying tile: %w", err)
	}

	stream, err := t.source(ctx)
	if err != nil {
		return fmt.Errorf("acquiring tile source: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("reading tile source: %w", err)
	}

	array, err := decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding tile (format %q): %w", t.formatTag, err)
	}
	if t.shape != nil && !array.ShapeEquals(t.shape) {
		return &ShapeMismatchError{Declared: slices.Clone(t.shape), Actual: slices.Clone(array.Shape)}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing tile source bytes: %w", err)
	}

	t.array = array
	t.source = nil
	t.consumed = true
	t.formatTag = imageformat.TagArray
	return nil
}

// Validate materializes the tile if needed and compares the computed
// digest against the expected checksum. A missing expected checksum
// passes trivially. A missing computed digest — the read was
// invalidated by a seek, or the tile materialized via Copy or
// SetArray — also passes: there is nothing trustworthy to compare.
func (t *Tile) Validate(ctx context.Context) error {
	if err := t.Load(ctx); err != nil {
		return err
	}
	if t.expectedChecksum == "" || t.actualChecksum == "" {
		return nil
	}
	if t.expectedChecksum != t.actualChecksum {
		return &ChecksumMismatchError{Expected: t.expectedChecksum, Actual: t.actualChecksum}
	}
	return nil
}
