// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package pixel

import (
	"fmt"
	"io"

	"github.com/slicelab/slicetile/lib/codec"
)

// EnvelopeVersion is the current normalized envelope version.
// Version 1: {version, dtype, shape, data} as a deterministic CBOR
// map, samples little-endian row-major.
const EnvelopeVersion = 1

// envelope is the wire form of the normalized encoding. CBOR byte
// strings carry the sample data without any base64 expansion.
type envelope struct {
	Version int    `cbor:"version"`
	DType   string `cbor:"dtype"`
	Shape   []int  `cbor:"shape"`
	Data    []byte `cbor:"data"`
}

// Encode writes the normalized envelope for a to w. The array is
// validated first, so a malformed array never produces a payload.
func Encode(w io.Writer, a *Array) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("encoding array: %w", err)
	}
	err := codec.NewEncoder(w).Encode(envelope{
		Version: EnvelopeVersion,
		DType:   string(a.DType),
		Shape:   a.Shape,
		Data:    a.Data,
	})
	if err != nil {
		return fmt.Errorf("encoding array envelope: %w", err)
	}
	return nil
}

// Decode reads one normalized envelope from r and returns the array.
func Decode(r io.Reader) (*Array, error) {
	var e envelope
	if err := codec.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decoding array envelope: %w", err)
	}
	if e.Version != EnvelopeVersion {
		return nil, fmt.Errorf("unsupported array envelope version %d", e.Version)
	}
	dtype, err := ParseDType(e.DType)
	if err != nil {
		return nil, fmt.Errorf("decoding array envelope: %w", err)
	}
	a := &Array{DType: dtype, Shape: e.Shape, Data: e.Data}
	if e.Shape == nil {
		a.Shape = []int{}
	}
	if a.Data == nil {
		a.Data = []byte{}
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("decoded array is inconsistent: %w", err)
	}
	return a, nil
}
