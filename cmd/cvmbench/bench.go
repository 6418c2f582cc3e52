// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"cmp"
	"fmt"
	"math"
	"time"

	"github.com/cvmsuite/cvm"
	"github.com/cvmsuite/cvm/rng"
)

// result houses the outcome of running one estimator configuration for a
// number of trials over the same stream.
type result struct {
	mode      string
	elemType  string
	streamLen int
	distinct  int
	epsilon   float64
	delta     float64
	capacity  int
	trials    int
	failures  int
	elapsed   time.Duration

	sumEstimate float64
	sumRelErr   float64
	maxRelErr   float64
}

// record adds the estimate of a successful trial.
func (r *result) record(estimate float64) {
	relErr := estimate
	if r.distinct > 0 {
		relErr = math.Abs(estimate-float64(r.distinct)) /
			float64(r.distinct)
	}
	r.sumEstimate += estimate
	r.sumRelErr += relErr
	if relErr > r.maxRelErr {
		r.maxRelErr = relErr
	}
}

// successes returns the number of trials that produced an estimate.
func (r *result) successes() int {
	return r.trials - r.failures
}

// meanEstimate returns the mean estimate over the successful trials.
func (r *result) meanEstimate() float64 {
	if r.successes() == 0 {
		return 0
	}
	return r.sumEstimate / float64(r.successes())
}

// meanRelErr returns the mean relative error over the successful trials.
func (r *result) meanRelErr() float64 {
	if r.successes() == 0 {
		return 0
	}
	return r.sumRelErr / float64(r.successes())
}

// perRun returns the mean time spent in a single estimation run.
func (r *result) perRun() time.Duration {
	return r.elapsed / time.Duration(r.trials)
}

// runNaive runs the naive estimator trials times over stream.
func runNaive[T comparable](stream []T, elemType string, distinct int, epsilon, delta float64, trials int, src rng.Source) (*result, error) {
	r := &result{
		mode:      modeNaive,
		elemType:  elemType,
		streamLen: len(stream),
		distinct:  distinct,
		epsilon:   epsilon,
		delta:     delta,
		trials:    trials,
	}

	for i := 0; i < trials; i++ {
		start := time.Now()
		estimate, err := cvm.NaiveEstimate(stream, epsilon, delta, src)
		r.elapsed += time.Since(start)
		if err != nil {
			if !cvm.IsErrorCode(err, cvm.ErrEstimationFailed) {
				return nil, err
			}
			log.Debugf("Naive trial %d over %d elements failed: %v",
				i, len(stream), err)
			r.failures++
			continue
		}
		r.record(estimate)
	}
	return r, nil
}

// runPriority runs the priority estimator trials times over stream.
func runPriority[T cmp.Ordered](stream []T, elemType string, distinct, capacity, trials int, src rng.Source) (*result, error) {
	r := &result{
		mode:      modePriority,
		elemType:  elemType,
		streamLen: len(stream),
		distinct:  distinct,
		capacity:  capacity,
		trials:    trials,
	}

	for i := 0; i < trials; i++ {
		start := time.Now()
		estimate, err := cvm.PriorityEstimate(stream, capacity, src)
		r.elapsed += time.Since(start)
		if err != nil {
			return nil, err
		}
		r.record(estimate)
	}
	return r, nil
}

// runSingle runs the estimator selected by the configured mode over a single
// stream.
func runSingle[T cmp.Ordered](cfg *config, stream []T, elemType string, src rng.Source) ([]*result, error) {
	distinct := exactDistinct(stream)
	log.Infof("Stream of %d %s elements holds %d distinct", len(stream),
		elemType, distinct)

	var r *result
	var err error
	switch cfg.Mode {
	case modeNaive:
		r, err = runNaive(stream, elemType, distinct, cfg.Epsilon,
			cfg.Delta, cfg.Trials, src)
	case modePriority:
		r, err = runPriority(stream, elemType, distinct, cfg.Capacity,
			cfg.Trials, src)
	default:
		err = fmt.Errorf("mode %q does not run over a single stream",
			cfg.Mode)
	}
	if err != nil {
		return nil, err
	}
	return []*result{r}, nil
}

// sweep mirrors the benchmark grid of the estimators: stream lengths at the
// powers of ten up to the configured maximum, naive accuracy settings whose
// threshold is below the stream length, and priority capacities at the
// powers of ten up to the stream length.
func sweep[T element](cfg *config, elemType string, src rng.Source) ([]*result, error) {
	var results []*result
	for n := 1; n <= cfg.MaxStreamLen; n *= 10 {
		stream := randomStream[T](n, src)
		distinct := exactDistinct(stream)
		log.Infof("Sweeping stream of %d %s elements (%d distinct)", n,
			elemType, distinct)

		for i := 1; i <= 9; i += 2 {
			for j := 1; j <= 1000; j *= 10 {
				epsilon := float64(i) / 10
				delta := float64(j) * 0.0001
				if cvm.Threshold(epsilon, delta, n) >= n {
					continue
				}

				r, err := runNaive(stream, elemType, distinct,
					epsilon, delta, cfg.Trials, src)
				if err != nil {
					return nil, err
				}
				logResult(r)
				results = append(results, r)
			}
		}

		for s := 1; s <= n; s *= 10 {
			r, err := runPriority(stream, elemType, distinct, s,
				cfg.Trials, src)
			if err != nil {
				return nil, err
			}
			logResult(r)
			results = append(results, r)

			if s > math.MaxInt/10 {
				break
			}
		}

		if n > math.MaxInt/10 {
			break
		}
	}
	return results, nil
}

// benchGenerated runs the configured mode over generated streams of T.
func benchGenerated[T element](cfg *config, src rng.Source) ([]*result, error) {
	elemType := fmt.Sprintf("uint%d", cfg.ElemBits)
	if cfg.Mode == modeSweep {
		return sweep[T](cfg, elemType, src)
	}

	stream := randomStream[T](cfg.StreamLen, src)
	return runSingle(cfg, stream, elemType, src)
}
