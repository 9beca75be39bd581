// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/slicelab/slicetile/lib/backend"
	"github.com/slicelab/slicetile/lib/hashio"
	"github.com/slicelab/slicetile/lib/tile"
	"github.com/slicelab/slicetile/lib/tiledesc"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL        string
		root           string
		descriptorPath string
		name           string
		format         string
		checksum       string
		digest         string
		outputPath     string
		raw            bool
		skipValidation bool
	)

	flagSet := pflag.NewFlagSet("tilefetch", pflag.ContinueOnError)
	flagSet.StringVar(&baseURL, "base-url", "", "fetch over HTTP against this base URL")
	flagSet.StringVar(&root, "root", "", "fetch from files under this directory")
	flagSet.StringVar(&descriptorPath, "descriptor", "", "tile descriptor file (.yaml, .json, .jsonc)")
	flagSet.StringVar(&name, "name", "", "resource name of the tile")
	flagSet.StringVar(&format, "format", "", "format tag the tile's bytes decode with")
	flagSet.StringVar(&checksum, "checksum", "", "expected hex digest of the tile's bytes")
	flagSet.StringVar(&digest, "digest", "", "digest algorithm: sha256 (default) or blake3")
	flagSet.StringVarP(&outputPath, "out", "o", "", "output file (default: stdout)")
	flagSet.BoolVar(&raw, "raw", false, "write the original source bytes instead of the normalized encoding")
	flagSet.BoolVar(&skipValidation, "no-validate", false, "skip checksum validation")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if (baseURL == "") == (root == "") {
		fmt.Fprintln(os.Stderr, "error: exactly one of --base-url or --root is required")
		return 2
	}
	var b backend.Backend
	if baseURL != "" {
		b = backend.NewHTTP(baseURL)
	} else {
		b = backend.NewDisk(root)
	}

	t, err := buildTile(b, descriptorPath, name, format, checksum, digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	output := io.Writer(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		defer file.Close()
		output = file
	}

	ctx := context.Background()

	if raw {
		// Copy preserves the original encoding; it cannot hash, so
		// there is no checksum to validate afterwards.
		if err := t.Copy(ctx, output); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		return 0
	}

	if !skipValidation {
		if err := t.Validate(ctx); err != nil {
			var mismatch *tile.ChecksumMismatchError
			if errors.As(err, &mismatch) {
				fmt.Fprintf(os.Stderr, "checksum mismatch: expected %s, computed %s\n",
					mismatch.Expected, mismatch.Actual)
				return 1
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
	}

	if err := t.WriteTo(ctx, output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return 0
}

// buildTile assembles the deferred tile from a descriptor file or
// from the inline flags.
func buildTile(b backend.Backend, descriptorPath, name, format, checksum, digest string) (*tile.Tile, error) {
	if descriptorPath != "" {
		if name != "" || format != "" || checksum != "" || digest != "" {
			return nil, fmt.Errorf("--descriptor and inline tile flags are mutually exclusive")
		}
		descriptor, err := tiledesc.Load(descriptorPath)
		if err != nil {
			return nil, err
		}
		return descriptor.Tile(b)
	}

	if name == "" || format == "" {
		return nil, fmt.Errorf("--name and --format are required without --descriptor")
	}
	algorithm, err := hashio.ParseAlgorithm(digest)
	if err != nil {
		return nil, err
	}

	t := tile.New(nil, nil,
		tile.WithExpectedChecksum(checksum),
		tile.WithHashAlgorithm(algorithm),
	)
	if err := t.AttachSource(tile.SourceFromBackend(b, name, checksum), format); err != nil {
		return nil, err
	}
	return t, nil
}
