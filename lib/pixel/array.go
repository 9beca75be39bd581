// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package pixel

import (
	"fmt"
	"slices"
)

// DType identifies the sample type of an array. The values are the
// names stored in the normalized envelope — changing them breaks
// payload compatibility.
type DType string

const (
	Uint8   DType = "uint8"
	Uint16  DType = "uint16"
	Uint32  DType = "uint32"
	Int8    DType = "int8"
	Int16   DType = "int16"
	Int32   DType = "int32"
	Float32 DType = "float32"
	Float64 DType = "float64"
)

// Size returns the sample size in bytes, or 0 for an unknown dtype.
func (d DType) Size() int {
	switch d {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// ParseDType parses a dtype name.
func ParseDType(name string) (DType, error) {
	d := DType(name)
	if d.Size() == 0 {
		return "", fmt.Errorf("unknown dtype %q", name)
	}
	return d, nil
}

// Array is a dense n-dimensional sample block. Data is flat,
// row-major, with little-endian multi-byte samples. The zero shape
// ([]int{}) denotes a scalar with one sample.
type Array struct {
	DType DType
	Shape []int
	Data  []byte
}

// NewArray allocates a zero-filled array with the given dtype and
// shape.
func NewArray(dtype DType, shape ...int) (*Array, error) {
	a := &Array{DType: dtype, Shape: shape}
	elements, err := elementCount(shape)
	if err != nil {
		return nil, err
	}
	sampleSize := dtype.Size()
	if sampleSize == 0 {
		return nil, fmt.Errorf("unknown dtype %q", dtype)
	}
	a.Data = make([]byte, elements*sampleSize)
	return a, nil
}

// Elements returns the number of samples implied by the shape.
func (a *Array) Elements() int {
	elements, err := elementCount(a.Shape)
	if err != nil {
		return 0
	}
	return elements
}

// Validate checks internal consistency: known dtype, non-negative
// dimensions, and a data length that matches shape × sample size.
func (a *Array) Validate() error {
	sampleSize := a.DType.Size()
	if sampleSize == 0 {
		return fmt.Errorf("unknown dtype %q", a.DType)
	}
	elements, err := elementCount(a.Shape)
	if err != nil {
		return err
	}
	expected := elements * sampleSize
	if len(a.Data) != expected {
		return fmt.Errorf("data is %d bytes, shape %v with dtype %s needs %d",
			len(a.Data), a.Shape, a.DType, expected)
	}
	return nil
}

// ShapeEquals reports whether the array's shape equals the given
// dimensions exactly, in order.
func (a *Array) ShapeEquals(shape []int) bool {
	return slices.Equal(a.Shape, shape)
}

func elementCount(shape []int) (int, error) {
	elements := 1
	for _, dimension := range shape {
		if dimension < 0 {
			return 0, fmt.Errorf("negative dimension %d in shape %v", dimension, shape)
		}
		elements *= dimension
	}
	return elements, nil
}
