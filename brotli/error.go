// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "runtime"

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return string(e) }

// The closed set of failure kinds a composite operation can report. These
// mirror the source library's api_error enumeration; Success has no Error
// value because Go operations report it by returning a nil error.
var (
	// ErrMemory reports an allocation or size-overflow failure.
	ErrMemory = Error("brotli: allocation or size overflow")
	// ErrBadParam reports an out-of-range selector or mode argument.
	ErrBadParam = Error("brotli: invalid parameter")
	// ErrOutOfRange reports an access past valid data.
	ErrOutOfRange = Error("brotli: index out of range")
	// ErrBlockOverflow reports a write that would exceed a block's
	// input capacity.
	ErrBlockOverflow = Error("brotli: write exceeds block capacity")
	// ErrInit reports an operation performed on a value moved-from by
	// Take, or otherwise missing state it requires.
	ErrInit = Error("brotli: operation requires state not currently held")
)

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}
