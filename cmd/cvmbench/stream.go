// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/cvmsuite/cvm/rng"
)

// maxLineSize is the longest input line accepted when reading a stream.
const maxLineSize = 1024 * 1024

// element is the set of types generated streams are made of.
type element interface {
	uint8 | uint16 | uint32 | uint64
}

// randomStream returns n elements drawn uniformly over the full range of T.
func randomStream[T element](n int, src rng.Source) []T {
	stream := make([]T, n)
	for i := range stream {
		stream[i] = T(src.Uint64())
	}
	return stream
}

// readStream reads newline-separated elements from r.  Surrounding white
// space is trimmed and blank lines are skipped.
func readStream(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var stream []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stream = append(stream, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return stream, nil
}

// exactDistinct returns the exact number of distinct elements in stream.
func exactDistinct[T comparable](stream []T) int {
	seen := make(map[T]struct{}, len(stream))
	for _, elem := range stream {
		seen[elem] = struct{}{}
	}
	return len(seen)
}
