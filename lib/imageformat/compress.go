// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package imageformat

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm of a compressed
// tile payload. The tag is stored in the payload header (1 byte) —
// changing these values breaks payload compatibility.
type CompressionTag uint8

const (
	// CompressionNone indicates an uncompressed payload. Written when
	// the selected algorithm could not shrink the data.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 indicates LZ4 block compression. Fast default
	// for integer pixel data.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd indicates zstd at its default level. Better
	// ratios on smooth or sparse planes at more CPU cost.
	CompressionZstd CompressionTag = 2

	// CompressionBG4LZ4 indicates ByteGrouping4 + LZ4: 4-byte groups
	// are transposed by byte position before LZ4. Effective for
	// float32 planes where neighboring samples share exponents.
	CompressionBG4LZ4 CompressionTag = 3
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionBG4LZ4:
		return "bg4lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// errIncompressible reports that compression would not shrink the
// data. Callers fall back to CompressionNone.
var errIncompressible = errors.New("data is incompressible")

// Compressed payload layout: 1 tag byte, 8-byte little-endian
// uncompressed size, then the compressed block (or the raw bytes for
// CompressionNone). The size field makes block decompression
// possible without trusting the block contents for allocation.
const payloadHeaderSize = 9

// maxPayloadSize bounds the uncompressed size a payload header may
// claim. Tiles are single image planes; 1 GiB is far beyond any
// realistic plane and keeps a corrupt header from driving a huge
// allocation.
const maxPayloadSize = 1 << 30

// CompressPayload wraps data in a compressed payload using the given
// algorithm. If the data does not shrink, the payload is written
// with CompressionNone instead.
func CompressPayload(data []byte, tag CompressionTag) ([]byte, error) {
	compressed, actual, err := compress(data, tag)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, payloadHeaderSize+len(compressed))
	payload[0] = byte(actual)
	binary.LittleEndian.PutUint64(payload[1:payloadHeaderSize], uint64(len(data)))
	copy(payload[payloadHeaderSize:], compressed)
	return payload, nil
}

// DecompressPayload unwraps a compressed payload and returns the
// original bytes.
func DecompressPayload(payload []byte) ([]byte, error) {
	if len(payload) < payloadHeaderSize {
		return nil, fmt.Errorf("compressed payload is %d bytes, need at least %d",
			len(payload), payloadHeaderSize)
	}
	tag := CompressionTag(payload[0])
	size := binary.LittleEndian.Uint64(payload[1:payloadHeaderSize])
	if size > maxPayloadSize {
		return nil, fmt.Errorf("compressed payload claims %d uncompressed bytes, limit is %d",
			size, maxPayloadSize)
	}
	block := payload[payloadHeaderSize:]

	switch tag {
	case CompressionNone:
		if uint64(len(block)) != size {
			return nil, fmt.Errorf("uncompressed payload: block is %d bytes, header says %d",
				len(block), size)
		}
		return block, nil
	case CompressionLZ4:
		return decompressLZ4(block, int(size))
	case CompressionZstd:
		return decompressZstd(block, int(size))
	case CompressionBG4LZ4:
		transposed, err := decompressLZ4(block, int(size))
		if err != nil {
			return nil, err
		}
		return bg4Untranspose(transposed), nil
	default:
		return nil, fmt.Errorf("unsupported compression tag %d", uint8(tag))
	}
}

func compress(data []byte, tag CompressionTag) ([]byte, CompressionTag, error) {
	switch tag {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		compressed, err := compressLZ4(data)
		if errors.Is(err, errIncompressible) {
			return data, CompressionNone, nil
		}
		return compressed, CompressionLZ4, err
	case CompressionZstd:
		compressed, err := compressZstd(data)
		if errors.Is(err, errIncompressible) {
			return data, CompressionNone, nil
		}
		return compressed, CompressionZstd, err
	case CompressionBG4LZ4:
		compressed, err := compressLZ4(bg4Transpose(data))
		if errors.Is(err, errIncompressible) {
			return data, CompressionNone, nil
		}
		return compressed, CompressionBG4LZ4, err
	default:
		return nil, 0, fmt.Errorf("unsupported compression tag %d", uint8(tag))
	}
}

// LZ4: block mode.

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible; also reject output that is not actually
	// smaller than the input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}

// Zstd: default level, shared encoder/decoder. zstd.Encoder and
// zstd.Decoder are safe for concurrent use.

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("imageformat: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("imageformat: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
	}
	return result, nil
}

// ByteGrouping4: transpose 4-byte groups by byte position so that
// float32 planes put their highly similar exponent bytes next to
// each other before LZ4 sees them.

func bg4Transpose(data []byte) []byte {
	length := len(data)
	groupCount := length / 4
	remainder := length % 4

	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		output[i] = data[i*4]
		output[groupCount+i] = data[i*4+1]
		output[groupCount*2+i] = data[i*4+2]
		output[groupCount*3+i] = data[i*4+3]
	}
	for i := 0; i < remainder; i++ {
		output[groupCount*4+i] = data[groupCount*4+i]
	}
	return output
}

func bg4Untranspose(data []byte) []byte {
	length := len(data)
	groupCount := length / 4
	remainder := length % 4

	output := make([]byte, length)
	for i := 0; i < groupCount; i++ {
		output[i*4] = data[i]
		output[i*4+1] = data[groupCount+i]
		output[i*4+2] = data[groupCount*2+i]
		output[i*4+3] = data[groupCount*3+i]
	}
	for i := 0; i < remainder; i++ {
		output[groupCount*4+i] = data[groupCount*4+i]
	}
	return output
}
