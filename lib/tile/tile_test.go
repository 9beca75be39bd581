// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package tile

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/slicelab/slicetile/lib/backend"
	"github.com/slicelab/slicetile/lib/hashio"
	"github.com/slicelab/slicetile/lib/imageformat"
	"github.com/slicelab/slicetile/lib/pixel"
)

func sha256Hex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// deferredTile builds a tile whose source yields content through a
// memory backend, decoded as a flat gray8 plane.
func deferredTile(t *testing.T, content []byte, options ...Option) *Tile {
	t.Helper()
	b := backend.NewMemory(map[string][]byte{"tile.dat": content})
	tl := New(
		map[string]Extent{"x": {0, 10}, "y": {0, 10}},
		map[string]int{"x": 0, "y": 0},
		options...,
	)
	if err := tl.AttachSource(SourceFromBackend(b, "tile.dat", ""), "gray8"); err != nil {
		t.Fatalf("AttachSource failed: %v", err)
	}
	return tl
}

func TestLoadMaterializes(t *testing.T) {
	tl := deferredTile(t, []byte("ABC"))

	if tl.Materialized() {
		t.Fatal("tile materialized before Load")
	}
	if err := tl.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !tl.Materialized() {
		t.Fatal("tile not materialized after Load")
	}

	array, err := tl.Array(context.Background())
	if err != nil {
		t.Fatalf("Array failed: %v", err)
	}
	if string(array.Data) != "ABC" {
		t.Errorf("array data = %q, want ABC", array.Data)
	}

	// The recipe is gone, the array is cached, the shape follows the
	// decoded array, and the tag is canonical.
	if got := tl.Shape(); len(got) != 1 || got[0] != 3 {
		t.Errorf("shape = %v, want [3]", got)
	}
	if tl.FormatTag() != imageformat.TagArray {
		t.Errorf("format tag = %q, want %q", tl.FormatTag(), imageformat.TagArray)
	}
	if tl.source != nil {
		t.Error("pending source still set after Load")
	}
}

func TestLoadIdempotent(t *testing.T) {
	tl := deferredTile(t, []byte("once"))

	if err := tl.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	first, _ := tl.Array(context.Background())

	if err := tl.Load(context.Background()); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	second, _ := tl.Array(context.Background())
	if first != second {
		t.Error("second Load replaced the cached array")
	}
}

func TestLoadSetsShapeAndChecksum(t *testing.T) {
	content := []byte("shape and digest")
	tl := deferredTile(t, content)

	if err := tl.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantShape := []int{len(content)}
	if got := tl.Shape(); len(got) != 1 || got[0] != wantShape[0] {
		t.Errorf("shape = %v, want %v", got, wantShape)
	}
	if tl.ActualChecksum() != sha256Hex(content) {
		t.Errorf("actual checksum = %s, want %s", tl.ActualChecksum(), sha256Hex(content))
	}
}

func TestLoadFailureKeepsTileDeferred(t *testing.T) {
	acquisitions := 0
	b := backend.NewMemory(map[string][]byte{"tile.dat": []byte("late")})
	tl := New(nil, nil)
	src := func(ctx context.Context) (backend.Stream, error) {
		acquisitions++
		if acquisitions == 1 {
			return nil, fmt.Errorf("transient fetch failure")
		}
		return b.Acquire(ctx, "tile.dat", "")
	}
	if err := tl.AttachSource(src, "gray8"); err != nil {
		t.Fatal(err)
	}

	if err := tl.Load(context.Background()); err == nil {
		t.Fatal("first Load succeeded, want transient failure")
	}
	if tl.Materialized() {
		t.Fatal("failed Load materialized the tile")
	}

	// The recipe survived, so a retry succeeds.
	if err := tl.Load(context.Background()); err != nil {
		t.Fatalf("retry Load failed: %v", err)
	}
	if !tl.Materialized() {
		t.Error("retry Load did not materialize")
	}
}

func TestLoadUnknownFormatTag(t *testing.T) {
	b := backend.NewMemory(map[string][]byte{"tile.dat": []byte("x")})
	tl := New(nil, nil)
	if err := tl.AttachSource(SourceFromBackend(b, "tile.dat", ""), "no.such.format"); err != nil {
		t.Fatal(err)
	}
	if err := tl.Load(context.Background()); err == nil {
		t.Error("Load succeeded with unregistered format tag")
	}
}

func TestSetArray(t *testing.T) {
	tl := New(nil, nil)
	array := &pixel.Array{DType: pixel.Uint8, Shape: []int{2, 2}, Data: []byte{1, 2, 3, 4}}

	if err := tl.SetArray(array); err != nil {
		t.Fatalf("SetArray failed: %v", err)
	}
	if !tl.Materialized() {
		t.Error("tile not materialized after SetArray")
	}
	if got := tl.Shape(); len(got) != 2 || got[0] != 2 || got[1] != 2 {
		t.Errorf("shape = %v, want [2 2]", got)
	}
	if tl.FormatTag() != imageformat.TagArray {
		t.Errorf("format tag = %q, want %q", tl.FormatTag(), imageformat.TagArray)
	}
}

func TestSetArrayShapeMismatch(t *testing.T) {
	// A declared shape binds direct assignment.
	tl := New(nil, nil, WithShape(4, 4))
	array := &pixel.Array{DType: pixel.Uint8, Shape: []int{2, 2}, Data: []byte{1, 2, 3, 4}}

	err := tl.SetArray(array)
	var mismatch *ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want ShapeMismatchError", err)
	}
	if mismatch.Actual[0] != 2 || mismatch.Declared[0] != 4 {
		t.Errorf("mismatch sides wrong: %+v", mismatch)
	}
	if tl.Materialized() {
		t.Error("rejected assignment still materialized the tile")
	}
}

func TestLoadShapeMismatch(t *testing.T) {
	// A declared shape also binds the deferred path.
	tl := deferredTile(t, []byte("ABCDE"), WithShape(3))
	err := tl.Load(context.Background())
	var mismatch *ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want ShapeMismatchError", err)
	}
}

func TestAttachSourceAfterConsumption(t *testing.T) {
	tl := deferredTile(t, []byte("gone"))
	if err := tl.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := tl.AttachSource(func(ctx context.Context) (backend.Stream, error) {
		return nil, fmt.Errorf("never called")
	}, "gray8")
	if !errors.Is(err, ErrSourceConsumed) {
		t.Errorf("err = %v, want ErrSourceConsumed", err)
	}
}

func TestAttachSourceReplacesAssignedArray(t *testing.T) {
	tl := New(nil, nil)
	if err := tl.SetArray(&pixel.Array{DType: pixel.Uint8, Shape: []int{1}, Data: []byte{9}}); err != nil {
		t.Fatal(err)
	}

	// Re-pointing before any source was consumed is legal and clears
	// the assigned array.
	b := backend.NewMemory(map[string][]byte{"tile.dat": []byte("new")})
	if err := tl.AttachSource(SourceFromBackend(b, "tile.dat", ""), "gray8"); err != nil {
		t.Fatalf("AttachSource failed: %v", err)
	}
	if tl.Materialized() {
		t.Error("attach did not clear the assigned array")
	}

	array, err := tl.Array(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(array.Data) != "new" {
		t.Errorf("array data = %q, want new", array.Data)
	}
}

func TestValidateMatchingChecksum(t *testing.T) {
	// Deferred source "ABC", identity decode, matching checksum.
	content := []byte("ABC")
	tl := deferredTile(t, content, WithExpectedChecksum(sha256Hex(content)))

	if err := tl.Validate(context.Background()); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	array, err := tl.Array(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(array.Data) != "ABC" {
		t.Errorf("array = %q, want ABC", array.Data)
	}
}

func TestValidateChecksumMismatch(t *testing.T) {
	// A wrong expected digest fails with the typed error.
	tl := deferredTile(t, []byte("ABC"), WithExpectedChecksum("deadbeef"))

	err := tl.Validate(context.Background())
	var mismatch *ChecksumMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want ChecksumMismatchError", err)
	}
	if mismatch.Expected != "deadbeef" {
		t.Errorf("Expected side = %q", mismatch.Expected)
	}
	if mismatch.Actual != sha256Hex([]byte("ABC")) {
		t.Errorf("Actual side = %q", mismatch.Actual)
	}
}

func TestValidateWithoutExpectedChecksum(t *testing.T) {
	// No expected checksum means validation never fails.
	tl := deferredTile(t, []byte("anything at all"))
	if err := tl.Validate(context.Background()); err != nil {
		t.Errorf("Validate failed without expected checksum: %v", err)
	}
}

func TestValidateBLAKE3(t *testing.T) {
	content := []byte("blake3-checksummed tile")
	hasher, err := hashio.BLAKE3.New()
	if err != nil {
		t.Fatal(err)
	}
	hasher.Write(content)
	expected := hex.EncodeToString(hasher.Sum(nil))

	tl := deferredTile(t, content,
		WithExpectedChecksum(expected),
		WithHashAlgorithm(hashio.BLAKE3),
	)
	if err := tl.Validate(context.Background()); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestSeekInvalidationSkipsValidation(t *testing.T) {
	// A decoder that seeks to a non-zero offset leaves the
	// actual checksum unset, and validation skips rather than fails
	// even though the expected checksum is wrong for the content.
	imageformat.Register("test.skipheader", func(r io.ReadSeeker) (*pixel.Array, error) {
		if _, err := r.Seek(4, io.SeekStart); err != nil {
			return nil, err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return &pixel.Array{DType: pixel.Uint8, Shape: []int{len(data)}, Data: data}, nil
	})

	b := backend.NewMemory(map[string][]byte{"tile.dat": []byte("HDR!payload")})
	tl := New(nil, nil, WithExpectedChecksum("deadbeef"))
	if err := tl.AttachSource(SourceFromBackend(b, "tile.dat", ""), "test.skipheader"); err != nil {
		t.Fatal(err)
	}

	if err := tl.Validate(context.Background()); err != nil {
		t.Errorf("Validate failed after seek invalidation: %v", err)
	}
	if tl.ActualChecksum() != "" {
		t.Errorf("actual checksum = %q, want unset", tl.ActualChecksum())
	}

	array, err := tl.Array(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(array.Data) != "payload" {
		t.Errorf("array = %q, want payload", array.Data)
	}
}

func TestCopyConsumesSource(t *testing.T) {
	content := []byte("original encoded bytes")
	tl := deferredTile(t, content)

	var first bytes.Buffer
	if err := tl.Copy(context.Background(), &first); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), content) {
		t.Errorf("copied bytes = %q, want %q", first.Bytes(), content)
	}
	if !tl.Materialized() {
		t.Error("Copy did not materialize the tile")
	}
	if tl.FormatTag() != imageformat.TagArray {
		t.Errorf("format tag = %q, want %q", tl.FormatTag(), imageformat.TagArray)
	}

	// The original bytes are gone; a second copy must fail.
	var second bytes.Buffer
	if err := tl.Copy(context.Background(), &second); !errors.Is(err, ErrSourceConsumed) {
		t.Errorf("second Copy err = %v, want ErrSourceConsumed", err)
	}
}

func TestCopyAfterSetArray(t *testing.T) {
	// Same restriction on the assignment path.
	tl := New(nil, nil)
	if err := tl.SetArray(&pixel.Array{DType: pixel.Uint8, Shape: []int{1}, Data: []byte{1}}); err != nil {
		t.Fatal(err)
	}
	var sink bytes.Buffer
	if err := tl.Copy(context.Background(), &sink); !errors.Is(err, ErrSourceConsumed) {
		t.Errorf("Copy err = %v, want ErrSourceConsumed", err)
	}
}

func TestCopyLeavesChecksumUnset(t *testing.T) {
	content := []byte("copied, not hashed")
	tl := deferredTile(t, content, WithExpectedChecksum(sha256Hex(content)))

	var sink bytes.Buffer
	if err := tl.Copy(context.Background(), &sink); err != nil {
		t.Fatal(err)
	}
	if tl.ActualChecksum() != "" {
		t.Errorf("actual checksum = %q, want unset after Copy", tl.ActualChecksum())
	}
	// Validation skips: expected present, actual absent.
	if err := tl.Validate(context.Background()); err != nil {
		t.Errorf("Validate failed after Copy: %v", err)
	}
}

func TestWriteToNormalizedRoundtrip(t *testing.T) {
	content := []byte("written out normalized")
	tl := deferredTile(t, content)

	var out bytes.Buffer
	if err := tl.WriteTo(context.Background(), &out); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	decoded, err := pixel.Decode(&out)
	if err != nil {
		t.Fatalf("decoding written payload failed: %v", err)
	}
	if !bytes.Equal(decoded.Data, content) {
		t.Errorf("roundtrip data = %q, want %q", decoded.Data, content)
	}
	if !decoded.ShapeEquals([]int{len(content)}) {
		t.Errorf("roundtrip shape = %v", decoded.Shape)
	}
}

func TestMetadataAccessors(t *testing.T) {
	coordinates := map[string]Extent{"x": {0, 5.5}, "y": {2, 4}}
	indices := map[string]int{"x": 3, "y": 1}
	extras := map[string]any{"stain": "DAPI"}

	tl := New(coordinates, indices, WithExtras(extras))

	got := tl.Coordinates()
	if got["x"] != (Extent{0, 5.5}) {
		t.Errorf("coordinates[x] = %+v", got["x"])
	}
	// The accessor hands out a copy; mutating it does not touch the
	// tile.
	got["x"] = Extent{9, 9}
	if tl.Coordinates()["x"] != (Extent{0, 5.5}) {
		t.Error("coordinate map escaped the tile")
	}

	if tl.Indices()["y"] != 1 {
		t.Errorf("indices[y] = %d, want 1", tl.Indices()["y"])
	}
	if tl.Extras()["stain"] != "DAPI" {
		t.Errorf("extras[stain] = %v", tl.Extras()["stain"])
	}
}

func TestWriteToWithoutPayload(t *testing.T) {
	tl := New(nil, nil)
	var sink bytes.Buffer
	if err := tl.WriteTo(context.Background(), &sink); err == nil {
		t.Error("WriteTo succeeded on a tile with no payload")
	}
}
