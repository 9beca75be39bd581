// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package imageformat

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/slicelab/slicetile/lib/pixel"
)

// TagArray is the canonical format tag: the normalized CBOR array
// envelope. Tiles carry this tag after materialization regardless of
// the encoding their bytes arrived in.
const TagArray = "array"

// Decoder turns a tile's source bytes into a pixel array. The stream
// is seekable because real image decoders (TIFF in particular) need
// to jump between directory structures and strip data.
//
// A decoder must treat the stream as its full input: read what it
// needs and return. It must not close the stream — the caller owns
// the stream's lifecycle.
type Decoder func(r io.ReadSeeker) (*pixel.Array, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Decoder)
)

// Register installs a decoder for a format tag, replacing any
// previous registration. Typically called from an init function in
// the package implementing the format.
func Register(tag string, decode Decoder) {
	if tag == "" {
		panic("imageformat: Register with empty tag")
	}
	if decode == nil {
		panic("imageformat: Register with nil decoder for tag " + tag)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = decode
}

// Lookup returns the decoder for a tag.
func Lookup(tag string) (Decoder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	decode, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for format tag %q", tag)
	}
	return decode, nil
}

// Tags returns the registered format tags, sorted.
func Tags() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
