// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package brotli implements the access-layer primitives for a Brotli-style
// text compression pipeline: a sliding window, a hash-chain match finder,
// a lazy two-candidate block buffer that emits a literal/copy command
// stream, a literal/distance context model with Move-To-Front coding, a
// heuristic context-mode classifier, and the built-in static dictionary.
//
// This package does not perform entropy coding, does not emit a standard
// Brotli bitstream, and does not decompress. It supplies the data
// structures and algorithms an external compression driver and bitstream
// serializer would sit on top of.
package brotli

func initLUTs() {
	initDictLUTs()
}

func init() { initLUTs() }
