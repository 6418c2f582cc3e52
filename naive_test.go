// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cvm

import (
	"math"
	"slices"
	"testing"

	"github.com/cvmsuite/cvm/rng"
	"github.com/stretchr/testify/require"
)

// distinctStream returns a stream of length n cycling through numDistinct
// values in a scrambled order.
func distinctStream(n, numDistinct int, src rng.Source) []uint64 {
	stream := make([]uint64, n)
	for i := range stream {
		if i < numDistinct {
			stream[i] = uint64(i)
			continue
		}
		stream[i] = src.Uint64() % uint64(numDistinct)
	}
	return stream
}

// TestThreshold ensures the thinning threshold follows
// ceil((12/epsilon^2) * log2(8n/delta)).
func TestThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		epsilon   float64
		delta     float64
		streamLen int
		want      int
	}{
		{0.5, 0.1, 1000, 782},
		{0.99, 0.99, 1000, 159},
		{0.99, 0.99, 100, 119},
		{0.3, 0.1, 20000, 2748},
		{0.1, 0.01, 1000000, 35491},
		{0.9, 0.5, 1, 60},
		{0.5, 0.1, 0, 1},
		{1e-12, 1e-12, math.MaxInt32, math.MaxInt},
	}

	for i, test := range tests {
		got := Threshold(test.epsilon, test.delta, test.streamLen)
		require.Equalf(t, test.want, got, "Threshold #%d (%v, %v, %d)",
			i, test.epsilon, test.delta, test.streamLen)
	}
}

// TestNaiveInvalidConfig ensures out of range parameters are rejected with
// the matching error code.
func TestNaiveInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  NaiveConfig
		code ErrorCode
	}{
		{"zero epsilon", NaiveConfig{Epsilon: 0, Delta: 0.1}, ErrInvalidEpsilon},
		{"epsilon one", NaiveConfig{Epsilon: 1, Delta: 0.1}, ErrInvalidEpsilon},
		{"NaN epsilon", NaiveConfig{Epsilon: math.NaN(), Delta: 0.1}, ErrInvalidEpsilon},
		{"zero delta", NaiveConfig{Epsilon: 0.5, Delta: 0}, ErrInvalidDelta},
		{"negative delta", NaiveConfig{Epsilon: 0.5, Delta: -0.1}, ErrInvalidDelta},
		{"negative length", NaiveConfig{Epsilon: 0.5, Delta: 0.1, StreamLen: -1}, ErrInvalidStreamLen},
	}

	for _, test := range tests {
		cfg := test.cfg
		_, err := NewNaiveEstimator[int](&cfg)
		require.Errorf(t, err, test.name)
		require.Truef(t, IsErrorCode(err, test.code),
			"%s: unexpected error %v", test.name, err)
	}

	_, err := NaiveEstimate([]int{1, 2}, 2, 0.1, rng.NewSource(0))
	require.True(t, IsErrorCode(err, ErrInvalidEpsilon))
}

// TestNaiveEmptyStream ensures an empty stream yields an estimate of zero.
func TestNaiveEmptyStream(t *testing.T) {
	t.Parallel()

	estimate, err := NaiveEstimate([]int{}, 0.5, 0.1, rng.NewSource(0))
	require.NoError(t, err)
	require.Zero(t, estimate)

	estimate, err = NaiveEstimate[string](nil, 0.5, 0.1, nil)
	require.NoError(t, err)
	require.Zero(t, estimate)
}

// TestNaiveSingleElement ensures a stream repeating one element estimates a
// single distinct element.
func TestNaiveSingleElement(t *testing.T) {
	t.Parallel()

	stream := make([]string, 10000)
	for i := range stream {
		stream[i] = "same"
	}

	estimate, err := NaiveEstimate(stream, 0.5, 0.1, rng.NewSource(1))
	require.NoError(t, err)
	require.Equal(t, 1.0, estimate)
}

// TestNaiveExactBelowThreshold ensures the estimate is exact while the number
// of distinct elements stays below the threshold, since p never drops.
func TestNaiveExactBelowThreshold(t *testing.T) {
	t.Parallel()

	stream := distinctStream(5000, 300, rng.NewSource(2))
	e, err := NewNaiveEstimator[uint64](&NaiveConfig{
		Epsilon:   0.5,
		Delta:     0.1,
		StreamLen: len(stream),
		Source:    rng.NewSource(3),
	})
	require.NoError(t, err)
	require.Greater(t, e.Threshold(), 300)

	for _, elem := range stream {
		require.NoError(t, e.Add(elem))
	}
	estimate, err := e.Estimate()
	require.NoError(t, err)
	require.Equal(t, 300.0, estimate)
	require.Equal(t, 1.0, e.P())
	require.Equal(t, 300, e.Len())
	require.Equal(t, len(stream), e.Processed())
	require.Zero(t, e.Rounds())
}

// TestNaiveThinning drives the estimator with scripted coin flips through a
// thinning round that empties the sample.
func TestNaiveThinning(t *testing.T) {
	t.Parallel()

	// Every draw is 0.25, so each thinning flip removes its element and
	// every keep decision at p = 0.5 retains it.
	src := rng.NewSequence(0.25)
	e, err := NewNaiveEstimator[int](&NaiveConfig{
		Epsilon:   0.99,
		Delta:     0.99,
		StreamLen: 1000,
		Source:    src,
	})
	require.NoError(t, err)
	require.Equal(t, 159, e.Threshold())

	// Filling the sample while p is one consumes no draws.
	for i := 0; i < 158; i++ {
		require.NoError(t, e.Add(i))
	}
	require.Zero(t, src.Draws())
	require.Equal(t, 158, e.Len())

	// Re-adding an element already present does not grow the sample.
	require.NoError(t, e.Add(0))
	require.Equal(t, 158, e.Len())

	// Reaching the threshold triggers a round that drops everything.
	require.NoError(t, e.Add(158))
	require.Equal(t, 159, src.Draws())
	require.Zero(t, e.Len())
	require.Equal(t, 0.5, e.P())
	require.Equal(t, 1, e.Rounds())

	estimate, err := e.Estimate()
	require.NoError(t, err)
	require.Zero(t, estimate)

	// The next element is kept with probability one half.
	require.NoError(t, e.Add(500))
	require.Equal(t, 1, e.Len())
	estimate, err = e.Estimate()
	require.NoError(t, err)
	require.Equal(t, 2.0, estimate)
}

// TestNaiveFailure ensures the estimator reports and latches a failure when
// thinning keeps every element.
func TestNaiveFailure(t *testing.T) {
	t.Parallel()

	// Every draw is 0.9, so thinning never removes an element.
	stream := make([]int, 1000)
	for i := range stream {
		stream[i] = i
	}
	_, err := NaiveEstimate(stream, 0.99, 0.99, rng.NewSequence(0.9))
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrEstimationFailed),
		"unexpected error %v", err)

	e, err := NewNaiveEstimator[int](&NaiveConfig{
		Epsilon:   0.99,
		Delta:     0.99,
		StreamLen: len(stream),
		Source:    rng.NewSequence(0.9),
	})
	require.NoError(t, err)

	var failErr error
	for _, elem := range stream {
		if failErr = e.Add(elem); failErr != nil {
			break
		}
	}
	require.True(t, IsErrorCode(failErr, ErrEstimationFailed))
	require.Equal(t, 159, e.Processed())
	require.Equal(t, 1, e.Rounds())

	// The failure is latched.
	require.Equal(t, failErr, e.Add(2000))
	require.Equal(t, 159, e.Processed())
	_, err = e.Estimate()
	require.Equal(t, failErr, err)
}

// TestNaiveAccuracy runs the estimator repeatedly over a stream with more
// distinct elements than the threshold and checks that at least 1-delta of
// the runs land within the relative error bound.
func TestNaiveAccuracy(t *testing.T) {
	t.Parallel()

	const (
		streamLen   = 20000
		numDistinct = 5000
		epsilon     = 0.3
		delta       = 0.1
		numTrials   = 40
	)
	stream := distinctStream(streamLen, numDistinct, rng.NewSource(4))
	require.Less(t, Threshold(epsilon, delta, streamLen), numDistinct)

	var within, failed int
	for trial := 0; trial < numTrials; trial++ {
		src := rng.NewSource(uint64(1000 + trial))
		estimate, err := NaiveEstimateSeq(slices.Values(stream),
			streamLen, epsilon, delta, src)
		if err != nil {
			require.True(t, IsErrorCode(err, ErrEstimationFailed))
			failed++
			continue
		}
		if math.Abs(estimate-numDistinct) <= epsilon*numDistinct {
			within++
		}
	}

	t.Logf("%d of %d trials within bounds, %d failed", within, numTrials,
		failed)
	require.GreaterOrEqual(t, float64(within), (1-delta)*numTrials)
}

// TestNaiveMonotonicP ensures the keep-probability only ever halves.
func TestNaiveMonotonicP(t *testing.T) {
	t.Parallel()

	stream := distinctStream(30000, 10000, rng.NewSource(5))
	e, err := NewNaiveEstimator[uint64](&NaiveConfig{
		Epsilon:   0.5,
		Delta:     0.1,
		StreamLen: len(stream),
		Source:    rng.NewSource(6),
	})
	require.NoError(t, err)

	prev := e.P()
	for _, elem := range stream {
		require.NoError(t, e.Add(elem))
		p := e.P()
		require.True(t, p == prev || p == prev/2,
			"p moved from %v to %v", prev, p)
		require.Less(t, e.Len(), e.Threshold())
		prev = p
	}
	require.Less(t, e.P(), 1.0)
}

// TestNaiveReproducible ensures runs over the same stream with equally seeded
// sources produce identical estimates, including across thinning rounds.
func TestNaiveReproducible(t *testing.T) {
	t.Parallel()

	stream := distinctStream(30000, 5000, rng.NewSource(11))
	want, err := NaiveEstimate(stream, 0.5, 0.1, rng.NewSource(42))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		e, err := NewNaiveEstimator[uint64](&NaiveConfig{
			Epsilon:   0.5,
			Delta:     0.1,
			StreamLen: len(stream),
			Source:    rng.NewSource(42),
		})
		require.NoError(t, err)
		for _, elem := range stream {
			require.NoError(t, e.Add(elem))
		}
		require.NotZero(t, e.Rounds())

		got, err := e.Estimate()
		require.NoError(t, err)
		require.Equalf(t, want, got, "run #%d", i)
	}
}

// TestNaiveStreamLenExceeded ensures adding more elements than the configured
// stream length is rejected without disturbing the estimator.
func TestNaiveStreamLenExceeded(t *testing.T) {
	t.Parallel()

	e, err := NewNaiveEstimator[int](&NaiveConfig{
		Epsilon:   0.5,
		Delta:     0.1,
		StreamLen: 2,
		Source:    rng.NewSource(12),
	})
	require.NoError(t, err)
	require.NoError(t, e.Add(1))
	require.NoError(t, e.Add(2))

	err = e.Add(3)
	require.True(t, IsErrorCode(err, ErrStreamLenExceeded),
		"unexpected error %v", err)
	require.Equal(t, 2, e.Processed())
	estimate, err := e.Estimate()
	require.NoError(t, err)
	require.Equal(t, 2.0, estimate)

	// A zero length only admits the empty stream.
	_, err = NaiveEstimateSeq(slices.Values([]int{7}), 0, 0.5, 0.1,
		rng.NewSource(13))
	require.True(t, IsErrorCode(err, ErrStreamLenExceeded),
		"unexpected error %v", err)

	estimate, err = NaiveEstimateSeq(slices.Values([]int{}), 0, 0.5, 0.1,
		rng.NewSource(13))
	require.NoError(t, err)
	require.Zero(t, estimate)
}
