// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cvm

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/cvmsuite/cvm/rng"
)

// NaiveConfig houses the parameters of a NaiveEstimator.
type NaiveConfig struct {
	// Epsilon is the relative error bound.  It must be in (0, 1).
	Epsilon float64

	// Delta is the probability that the estimate misses the error bound.
	// It must be in (0, 1).
	Delta float64

	// StreamLen is the number of elements in the stream, or an upper bound
	// on it when the stream is consumed in a single pass.  Adding more
	// elements than StreamLen is an error, so zero only admits an empty
	// stream.
	StreamLen int

	// Source supplies the coin flips.  A nil Source selects a fresh source
	// seeded from system entropy.
	Source rng.Source
}

// Threshold returns the sample size at which the naive estimator thins its
// sample, ceil((12/epsilon^2) * log2(8n/delta)).  A stream of length zero
// yields a threshold of one.
func Threshold(epsilon, delta float64, streamLen int) int {
	if streamLen <= 0 {
		return 1
	}

	t := math.Ceil(12 / (epsilon * epsilon) *
		math.Log2(8*float64(streamLen)/delta))
	switch {
	case t < 1:
		return 1
	case t >= math.MaxInt:
		return math.MaxInt
	}
	return int(t)
}

// checkAccuracy returns an error when epsilon or delta is outside (0, 1).
func checkAccuracy(epsilon, delta float64) error {
	if !(epsilon > 0 && epsilon < 1) {
		str := fmt.Sprintf("epsilon %v is not in (0, 1)", epsilon)
		return estimationError(ErrInvalidEpsilon, str)
	}
	if !(delta > 0 && delta < 1) {
		str := fmt.Sprintf("delta %v is not in (0, 1)", delta)
		return estimationError(ErrInvalidDelta, str)
	}
	return nil
}

// NaiveEstimator estimates the distinct count of a stream by keeping every
// element with probability p and halving p whenever the sample reaches the
// threshold.
//
// The sample is kept in a slice, so its order and therefore every thinning
// decision depends only on the stream and the source.  Once thinning fails
// the estimator is latched in the failed state and every later call reports
// the same error.
type NaiveEstimator[K comparable] struct {
	elems     []K
	index     map[K]int
	p         float64
	threshold int
	streamLen int
	src       rng.Source
	processed int
	rounds    int
	err       error
}

// NewNaiveEstimator returns an empty estimator for the given configuration.
func NewNaiveEstimator[K comparable](cfg *NaiveConfig) (*NaiveEstimator[K], error) {
	if err := checkAccuracy(cfg.Epsilon, cfg.Delta); err != nil {
		return nil, err
	}
	if cfg.StreamLen < 0 {
		str := fmt.Sprintf("stream length %d is negative", cfg.StreamLen)
		return nil, estimationError(ErrInvalidStreamLen, str)
	}

	src := cfg.Source
	if src == nil {
		src = rng.NewEntropySource()
	}

	threshold := Threshold(cfg.Epsilon, cfg.Delta, cfg.StreamLen)
	log.Debugf("Naive estimator: epsilon %v, delta %v, stream length %d, "+
		"threshold %d", cfg.Epsilon, cfg.Delta, cfg.StreamLen, threshold)

	return &NaiveEstimator[K]{
		index:     make(map[K]int),
		p:         1,
		threshold: threshold,
		streamLen: cfg.StreamLen,
		src:       src,
	}, nil
}

// remove deletes elem from the sample if present by moving the last sampled
// element into its slot.
func (e *NaiveEstimator[K]) remove(elem K) {
	i, ok := e.index[elem]
	if !ok {
		return
	}
	last := len(e.elems) - 1
	e.elems[i] = e.elems[last]
	e.index[e.elems[i]] = i
	clear(e.elems[last:])
	e.elems = e.elems[:last]
	delete(e.index, elem)
}

// thin flips a fair coin for every sampled element in sample order and drops
// the element on heads.
func (e *NaiveEstimator[K]) thin() {
	kept := e.elems[:0]
	for _, elem := range e.elems {
		if rng.Bernoulli(e.src, 0.5) {
			delete(e.index, elem)
			continue
		}
		e.index[elem] = len(kept)
		kept = append(kept, elem)
	}
	clear(e.elems[len(kept):])
	e.elems = kept
}

// Add processes the next element of the stream.  It returns an Error with
// ErrEstimationFailed when the sample could not be thinned below the
// threshold, or ErrStreamLenExceeded when the configured stream length has
// already been consumed.  The latter leaves the estimator untouched.
func (e *NaiveEstimator[K]) Add(elem K) error {
	if e.err != nil {
		return e.err
	}
	if e.processed >= e.streamLen {
		str := fmt.Sprintf("stream length %d exceeded", e.streamLen)
		return estimationError(ErrStreamLenExceeded, str)
	}
	e.processed++

	// A recurring element gets a fresh sampling decision.
	e.remove(elem)
	if rng.Bernoulli(e.src, e.p) {
		e.index[elem] = len(e.elems)
		e.elems = append(e.elems, elem)
	}
	if len(e.elems) < e.threshold {
		return nil
	}

	before := len(e.elems)
	e.thin()
	e.p /= 2
	e.rounds++
	log.Debugf("Thinned sample from %d to %d elements after %d elements "+
		"(round %d, p %g)", before, len(e.elems), e.processed,
		e.rounds, e.p)

	if len(e.elems) >= e.threshold {
		str := fmt.Sprintf("sample still holds %d elements after "+
			"thinning round %d, threshold is %d", len(e.elems),
			e.rounds, e.threshold)
		e.err = estimationError(ErrEstimationFailed, str)
		log.Debugf("Naive estimation failed: %v", e.err)
		return e.err
	}
	return nil
}

// Estimate returns the current distinct count estimate |X|/p, or the error
// that latched the estimator.
func (e *NaiveEstimator[K]) Estimate() (float64, error) {
	if e.err != nil {
		return 0, e.err
	}
	return float64(len(e.elems)) / e.p, nil
}

// Len returns the number of elements currently in the sample.
func (e *NaiveEstimator[K]) Len() int {
	return len(e.elems)
}

// P returns the current keep-probability.
func (e *NaiveEstimator[K]) P() float64 {
	return e.p
}

// Threshold returns the sample size that triggers thinning.
func (e *NaiveEstimator[K]) Threshold() int {
	return e.threshold
}

// Processed returns the number of stream elements added so far.
func (e *NaiveEstimator[K]) Processed() int {
	return e.processed
}

// Rounds returns the number of thinning rounds performed so far.
func (e *NaiveEstimator[K]) Rounds() int {
	return e.rounds
}

// NaiveEstimate runs the naive estimator over stream and returns its
// estimate.  The stream length is taken from the slice.
func NaiveEstimate[K comparable](stream []K, epsilon, delta float64, src rng.Source) (float64, error) {
	return NaiveEstimateSeq(slices.Values(stream), len(stream), epsilon,
		delta, src)
}

// NaiveEstimateSeq runs the naive estimator over a single pass of stream.
// streamLen must be the length of the stream or an upper bound on it;
// otherwise an Error with ErrStreamLenExceeded is returned.
func NaiveEstimateSeq[K comparable](stream iter.Seq[K], streamLen int, epsilon, delta float64, src rng.Source) (float64, error) {
	e, err := NewNaiveEstimator[K](&NaiveConfig{
		Epsilon:   epsilon,
		Delta:     delta,
		StreamLen: streamLen,
		Source:    src,
	})
	if err != nil {
		return 0, err
	}

	for elem := range stream {
		if err := e.Add(elem); err != nil {
			return 0, err
		}
	}

	estimate, err := e.Estimate()
	if err != nil {
		return 0, err
	}
	log.Debugf("Naive estimate %.2f over %d elements (sample %d, p %g)",
		estimate, e.processed, len(e.elems), e.p)
	return estimate, nil
}
