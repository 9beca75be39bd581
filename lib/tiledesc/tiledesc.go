// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package tiledesc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/slicelab/slicetile/lib/backend"
	"github.com/slicelab/slicetile/lib/hashio"
	"github.com/slicelab/slicetile/lib/tile"
)

// Descriptor is the persisted record for one tile.
type Descriptor struct {
	// Name is the backend resource name the tile's bytes live under.
	Name string `yaml:"name" json:"name"`

	// Format is the format tag the bytes decode with.
	Format string `yaml:"format" json:"format"`

	// Checksum is the expected hex digest of the resource bytes.
	// Optional; without it validation passes trivially.
	Checksum string `yaml:"checksum,omitempty" json:"checksum,omitempty"`

	// Digest names the checksum algorithm ("sha256" or "blake3").
	// Empty means sha256.
	Digest string `yaml:"digest,omitempty" json:"digest,omitempty"`

	// Shape declares the tile's pixel dimensions, if known ahead of
	// materialization.
	Shape []int `yaml:"shape,omitempty" json:"shape,omitempty"`

	// Coordinates maps dimension names to physical [min, max]
	// extents.
	Coordinates map[string][2]float64 `yaml:"coordinates,omitempty" json:"coordinates,omitempty"`

	// Indices maps dimension names to grid positions.
	Indices map[string]int `yaml:"indices,omitempty" json:"indices,omitempty"`

	// Extras is opaque caller metadata, passed through to the tile.
	Extras map[string]any `yaml:"extras,omitempty" json:"extras,omitempty"`
}

// Load reads a descriptor file. The extension selects the syntax:
// .yaml/.yml or .json/.jsonc.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tile descriptor: %w", err)
	}

	var d Descriptor
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parsing tile descriptor %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &d); err != nil {
			return nil, fmt.Errorf("parsing tile descriptor %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("tile descriptor %s: unsupported extension %q", path, extension)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("tile descriptor %s: %w", path, err)
	}
	return &d, nil
}

// Validate checks the descriptor for the fields a deferred tile
// needs.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("missing resource name")
	}
	if d.Format == "" {
		return fmt.Errorf("missing format tag")
	}
	if _, err := hashio.ParseAlgorithm(d.Digest); err != nil {
		return err
	}
	for dimension, index := range d.Indices {
		if index < 0 {
			return fmt.Errorf("negative index %d for dimension %q", index, dimension)
		}
	}
	return nil
}

// Tile builds a deferred tile from the descriptor, bound to the
// given backend.
func (d *Descriptor) Tile(b backend.Backend) (*tile.Tile, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	coordinates := make(map[string]tile.Extent, len(d.Coordinates))
	for dimension, extent := range d.Coordinates {
		coordinates[dimension] = tile.Extent{Min: extent[0], Max: extent[1]}
	}

	algorithm, err := hashio.ParseAlgorithm(d.Digest)
	if err != nil {
		return nil, err
	}

	options := []tile.Option{
		tile.WithExpectedChecksum(d.Checksum),
		tile.WithHashAlgorithm(algorithm),
	}
	if d.Shape != nil {
		options = append(options, tile.WithShape(d.Shape...))
	}
	if d.Extras != nil {
		options = append(options, tile.WithExtras(d.Extras))
	}

	t := tile.New(coordinates, d.Indices, options...)
	if err := t.AttachSource(tile.SourceFromBackend(b, d.Name, d.Checksum), d.Format); err != nil {
		return nil, err
	}
	return t, nil
}
