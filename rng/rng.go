// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rng provides the explicitly owned random sources used for priority
// draws and coin flips.
//
// Every source is owned by whoever constructs it.  None of the types in this
// package are safe for concurrent access, so callers that estimate in
// parallel must give each estimator its own source.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source is the minimal interface the treap and the estimators draw from.
// Implementations must return independent, uniformly distributed values on
// every call.
type Source interface {
	// Float64 returns a uniformly distributed value in [0, 1).
	Float64() float64

	// Uint64 returns a uniformly distributed value over the full uint64
	// range.
	Uint64() uint64
}

// Rand is a Source backed by a PCG generator.
type Rand struct {
	r *rand.Rand
}

// Float64 returns a uniformly distributed value in [0, 1).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

// Uint64 returns a uniformly distributed uint64.
func (r *Rand) Uint64() uint64 {
	return r.r.Uint64()
}

// NewSource returns a deterministic source for the given seed.  Two sources
// created with the same seed produce the same sequence of draws.
func NewSource(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewEntropySource returns a source seeded from the operating system's
// entropy pool.  The seed is read once, when the source is created.
func NewEntropySource() *Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand only fails when the platform has no entropy
		// source at all.
		panic("rng: unable to read entropy: " + err.Error())
	}
	return &Rand{r: rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))}
}

// Bernoulli returns true with probability p.  Probabilities at or below zero
// always return false and probabilities at or above one always return true;
// neither case consumes a draw from src.
func Bernoulli(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}
