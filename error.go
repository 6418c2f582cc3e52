// Copyright (c) 2014 Conformal Systems LLC.
// Copyright (c) 2026 The cvm developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cvm

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrEstimationFailed indicates that thinning the naive sample did not
	// bring it below the threshold.  The run was unlucky or the accuracy
	// parameters leave too little room; retrying or loosening epsilon or
	// delta is the remedy.
	ErrEstimationFailed ErrorCode = iota

	// ErrInvalidEpsilon indicates that the relative error is not in the
	// open interval (0, 1).
	ErrInvalidEpsilon

	// ErrInvalidDelta indicates that the failure probability is not in the
	// open interval (0, 1).
	ErrInvalidDelta

	// ErrInvalidStreamLen indicates a negative stream length bound.
	ErrInvalidStreamLen

	// ErrInvalidCapacity indicates a priority sample capacity below one.
	ErrInvalidCapacity

	// ErrStreamLenExceeded indicates that more elements were added to a
	// naive estimator than the stream length it was configured with.  The
	// threshold no longer bounds the error once that happens.
	ErrStreamLenExceeded

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrEstimationFailed:  "ErrEstimationFailed",
	ErrInvalidEpsilon:    "ErrInvalidEpsilon",
	ErrInvalidDelta:      "ErrInvalidDelta",
	ErrInvalidStreamLen:  "ErrInvalidStreamLen",
	ErrInvalidCapacity:   "ErrInvalidCapacity",
	ErrStreamLenExceeded: "ErrStreamLenExceeded",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies an estimation error.  The caller can use errors.As to
// determine if an error is an Error and access the ErrorCode field to
// ascertain the specific reason for the failure.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// estimationError creates an Error given a set of arguments.
func estimationError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not err is an Error with the given code.
func IsErrorCode(err error, c ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == c
}
