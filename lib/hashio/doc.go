// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

// Package hashio wraps a byte stream so that everything read through
// it feeds a running cryptographic digest. The tile layer uses it to
// compute a checksum of the exact bytes a decoder consumed, without
// a second pass over the stream.
//
// Seeking to any non-zero offset permanently invalidates the digest:
// a hash over part of a stream does not represent its full content.
// Reads continue to forward after invalidation — only the digest is
// abandoned.
package hashio
