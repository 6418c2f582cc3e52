// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rng

import "math"

// Sequence is a Source that replays a fixed list of draws in order, wrapping
// around once the list is exhausted.  It exists so a specific sampling path
// can be reproduced exactly.
type Sequence struct {
	values []float64
	pos    int
	draws  int
}

// NewSequence returns a Sequence replaying the passed values.  Each value
// must be in [0, 1).  An empty sequence always returns zero.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// next returns the next value in the sequence.
func (s *Sequence) next() float64 {
	s.draws++
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos]
	s.pos = (s.pos + 1) % len(s.values)
	return v
}

// Float64 returns the next value in the sequence.
func (s *Sequence) Float64() float64 {
	return s.next()
}

// Uint64 returns the next value in the sequence scaled to the uint64 range.
func (s *Sequence) Uint64() uint64 {
	return uint64(math.Ldexp(s.next(), 64))
}

// Draws returns how many values have been consumed so far.
func (s *Sequence) Draws() int {
	return s.draws
}
