// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package cvm estimates the number of distinct elements in a stream (F0) using
the sampling algorithm of Chakraborty, Vinodchandran and Meel.

With probability at least 1-delta the returned estimate is within a relative
error epsilon of the true distinct count while the memory used stays sublinear
in the length of the stream.

Two estimators are provided:

  - NaiveEstimator keeps a plain sample set together with a keep-probability
    p.  Whenever the sample reaches its threshold every element is dropped
    with probability 1/2 and p is halved.  It can fail when thinning does not
    bring the sample back under the threshold.

  - PrioritySampler assigns every occurrence a fresh random priority and keeps
    at most s elements in a treap, evicting the highest priority whenever the
    sample is full.  It never fails.

Both estimators refresh the sampling decision of an element every time it
recurs in the stream, so only the last occurrence of each element matters.

Randomness is supplied through an rng.Source owned by the caller.  Passing a
seeded source makes a run reproducible; passing nil uses a fresh source seeded
from system entropy.

# Errors

Errors returned by this package are of type cvm.Error.  The ErrorCode field
identifies the failure so callers can distinguish an unlucky naive run
(ErrEstimationFailed), which is worth retrying, from invalid parameters.
*/
package cvm
