// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package imageformat

import (
	"bytes"
	"fmt"
	"io"

	"github.com/slicelab/slicetile/lib/pixel"
)

func init() {
	Register(TagArray, decodeArray)
	Register("gray8", decodeGray8)
	Register("array+lz4", decodeCompressedArray)
	Register("array+zstd", decodeCompressedArray)
	Register("array+bg4lz4", decodeCompressedArray)
}

// decodeArray reads one normalized CBOR envelope.
func decodeArray(r io.ReadSeeker) (*pixel.Array, error) {
	return pixel.Decode(r)
}

// decodeGray8 treats the whole stream as a flat plane of uint8
// samples. The shape is one-dimensional because the stream carries
// no geometry; the dataset layer reshapes via tile metadata.
func decodeGray8(r io.ReadSeeker) (*pixel.Array, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gray8 plane: %w", err)
	}
	return &pixel.Array{DType: pixel.Uint8, Shape: []int{len(data)}, Data: data}, nil
}

// decodeCompressedArray unwraps a compressed payload and decodes the
// normalized envelope inside. The payload header names its own
// compression algorithm, so one decoder serves every compressed tag.
func decodeCompressedArray(r io.ReadSeeker) (*pixel.Array, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading compressed payload: %w", err)
	}
	raw, err := DecompressPayload(payload)
	if err != nil {
		return nil, err
	}
	return pixel.Decode(bytes.NewReader(raw))
}

// EncodeCompressedArray is the write-side complement of the
// compressed tags: the normalized envelope for a, behind the given
// compression algorithm. Dataset writers use it to produce payloads
// for the "array+*" tags.
func EncodeCompressedArray(w io.Writer, a *pixel.Array, tag CompressionTag) error {
	var envelope bytes.Buffer
	if err := pixel.Encode(&envelope, a); err != nil {
		return err
	}
	payload, err := CompressPayload(envelope.Bytes(), tag)
	if err != nil {
		return fmt.Errorf("compressing array payload: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing compressed payload: %w", err)
	}
	return nil
}
