// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rng

import "math"

// Priority is the set of types that may be used as treap priorities.  Real
// priorities are drawn from [0, 1) and integer priorities from the full
// non-negative range of the type.
type Priority interface {
	float32 | float64 | uint32 | uint64 | int | int64
}

// Draw returns a fresh priority of type P from src.
func Draw[P Priority](src Source) P {
	var p P
	switch any(p).(type) {
	case float64:
		return any(src.Float64()).(P)
	case float32:
		// Drop to 24 bits so the value is exactly representable and can
		// never round up to 1.
		return any(float32(src.Uint64()>>40) * (1.0 / (1 << 24))).(P)
	case uint32:
		return any(uint32(src.Uint64() >> 32)).(P)
	case uint64:
		return any(src.Uint64()).(P)
	case int:
		return any(int(src.Uint64() & math.MaxInt)).(P)
	case int64:
		return any(int64(src.Uint64() & math.MaxInt64)).(P)
	}

	// Unreachable given the Priority constraint.
	panic("rng: unsupported priority type")
}
