// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cvm

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/cvmsuite/cvm/rng"
	"github.com/cvmsuite/cvm/treap"
)

// PrioritySampler estimates the distinct count of a stream by giving every
// occurrence a fresh priority in [0, 1) and keeping the occurrences with the
// lowest priorities below a threshold p, at most capacity of them at once.
//
// When the sample is full a new occurrence either replaces the sampled
// element with the highest priority or, when its own priority is higher,
// only lowers p.  Either way p ends up at the highest priority that has been
// turned away, so the sample is exactly the elements whose last occurrence
// drew a priority below p.
type PrioritySampler[K any] struct {
	sample    *treap.Mutable[K, float64]
	capacity  int
	p         float64
	processed int
}

// NewPrioritySampler returns an empty sampler holding at most capacity
// elements ordered by their natural order.  Priorities are drawn from src; a
// nil src selects a fresh source seeded from system entropy.
func NewPrioritySampler[K cmp.Ordered](capacity int, src rng.Source) (*PrioritySampler[K], error) {
	return NewPrioritySamplerFunc(cmp.Compare[K], capacity, src)
}

// NewPrioritySamplerFunc returns an empty sampler whose elements are ordered
// by compare.  See NewPrioritySampler for the remaining parameters.
func NewPrioritySamplerFunc[K any](compare func(a, b K) int, capacity int, src rng.Source) (*PrioritySampler[K], error) {
	if capacity < 1 {
		str := fmt.Sprintf("capacity %d is less than one", capacity)
		return nil, estimationError(ErrInvalidCapacity, str)
	}

	return &PrioritySampler[K]{
		sample:   treap.NewMutableFunc[K, float64](compare, src),
		capacity: capacity,
		p:        1,
	}, nil
}

// Add processes the next element of the stream.
func (s *PrioritySampler[K]) Add(elem K) {
	s.processed++

	// A recurring element gets a fresh priority.
	s.sample.Delete(elem)
	u := s.sample.GeneratePriority()
	if u >= s.p {
		return
	}

	if s.sample.Len() < s.capacity {
		s.sample.Put(elem, u)
		return
	}

	// The sample is full, so either this occurrence or the current
	// highest priority entry is turned away.
	_, top, _ := s.sample.Top()
	if u >= top {
		s.p = u
	} else {
		s.sample.Pop()
		s.sample.Put(elem, u)
		s.p = top
	}
	log.Tracef("%v", newLogClosure(func() string {
		return fmt.Sprintf("Lowered priority threshold to %v after %d "+
			"elements", s.p, s.processed)
	}))
}

// Estimate returns the current distinct count estimate |B|/p.
func (s *PrioritySampler[K]) Estimate() float64 {
	return float64(s.sample.Len()) / s.p
}

// Len returns the number of elements currently in the sample.
func (s *PrioritySampler[K]) Len() int {
	return s.sample.Len()
}

// P returns the current priority threshold.
func (s *PrioritySampler[K]) P() float64 {
	return s.p
}

// Capacity returns the maximum number of elements the sample holds.
func (s *PrioritySampler[K]) Capacity() int {
	return s.capacity
}

// Processed returns the number of stream elements added so far.
func (s *PrioritySampler[K]) Processed() int {
	return s.processed
}

// ForEach invokes fn with every sampled element and its priority in
// ascending element order.  Iteration stops early when fn returns false.
func (s *PrioritySampler[K]) ForEach(fn func(elem K, priority float64) bool) {
	s.sample.ForEach(fn)
}

// PriorityEstimate runs the priority sampler over stream and returns its
// estimate.  The only error is an invalid capacity.
func PriorityEstimate[K cmp.Ordered](stream []K, capacity int, src rng.Source) (float64, error) {
	return PriorityEstimateSeq(slices.Values(stream), capacity, src)
}

// PriorityEstimateSeq runs the priority sampler over a single pass of stream.
func PriorityEstimateSeq[K cmp.Ordered](stream iter.Seq[K], capacity int, src rng.Source) (float64, error) {
	s, err := NewPrioritySampler[K](capacity, src)
	if err != nil {
		return 0, err
	}

	for elem := range stream {
		s.Add(elem)
	}

	estimate := s.Estimate()
	log.Debugf("Priority estimate %.2f over %d elements (sample %d, p %g)",
		estimate, s.processed, s.sample.Len(), s.p)
	return estimate, nil
}
