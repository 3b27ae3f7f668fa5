// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// Literal context modes. LSB6 and MSB6 take bits of the immediately
// preceding byte; UTF8 and Signed look both preceding bytes up in the
// context LUTs below. Every mode yields one of 64 contexts.
const (
	ContextLSB6 = iota
	ContextMSB6
	ContextUTF8
	ContextSigned

	numContextModes
)

// numLiteralContexts is the number of literal contexts any mode produces.
const numLiteralContexts = 64

// ctxtmapLUT0 and ctxtmapLUT1 classify the byte immediately prior and
// the byte two positions back, respectively, for UTF8 context mode;
// ctxtmapLUT2 classifies either byte for Signed mode. These are RFC
// 7932 §7.1's three context lookup tables, transcribed verbatim from
// the source library's ctxtmap.cpp (itself noted there as taken
// directly from the RFC).
var ctxtmapLUT0 = [256]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 4, 4, 0, 0, 4, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	8, 12, 16, 12, 12, 20, 12, 16, 24, 28, 12, 12, 32, 12, 36, 12,
	44, 44, 44, 44, 44, 44, 44, 44, 44, 44, 32, 32, 24, 40, 28, 12,
	12, 48, 52, 52, 52, 48, 52, 52, 52, 48, 52, 52, 52, 52, 52, 48,
	52, 52, 52, 52, 52, 48, 52, 52, 52, 52, 52, 24, 12, 28, 12, 12,
	12, 56, 60, 60, 60, 56, 60, 60, 60, 56, 60, 60, 60, 60, 60, 56,
	60, 60, 60, 60, 60, 56, 60, 60, 60, 60, 60, 24, 12, 28, 12, 0,
	0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3,
	2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3,
	2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3,
	2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3, 2, 3,
}

var ctxtmapLUT1 = [256]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1,
	1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1,
	1, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 1, 1, 1, 1, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
}

var ctxtmapLUT2 = [256]byte{
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 7,
}

// LiteralContext derives a 0..63 literal context from the two bytes that
// precede the byte about to be coded (p1 immediately prior, p2 two
// positions prior), under the given context mode. It reports
// ErrBadParam if mode is not one of the four defined context modes.
func LiteralContext(mode int, p1, p2 byte) (uint32, error) {
	switch mode {
	case ContextLSB6:
		return uint32(p1 & 0x3F), nil
	case ContextMSB6:
		return uint32(p1 >> 2), nil
	case ContextUTF8:
		return uint32(ctxtmapLUT0[p1]) | uint32(ctxtmapLUT1[p2]), nil
	case ContextSigned:
		return uint32(ctxtmapLUT2[p1])<<3 | uint32(ctxtmapLUT2[p2]), nil
	default:
		return 0, ErrBadParam
	}
}

// numDistanceContexts is the number of contexts a copy distance quantizes
// into, keyed off the copy length.
const numDistanceContexts = 4

// DistanceContext buckets a copy length into one of 4 contexts: lengths
// 2, 3, and 4 each get their own context, and every longer length
// shares a fourth. It reports ErrBadParam if copyLen is below the
// minimum copy length of 2.
func DistanceContext(copyLen uint32) (uint32, error) {
	switch {
	case copyLen < 2:
		return 0, ErrBadParam
	case copyLen == 2:
		return 0, nil
	case copyLen == 3:
		return 1, nil
	case copyLen == 4:
		return 2, nil
	default:
		return 3, nil
	}
}

// ContextMap assigns one of numTrees trees to each (block-type, context)
// pair, stored as a dense matrix and coded compactly via move-to-front.
type ContextMap struct {
	numContexts int
	numTrees    int
	m           []byte // numContexts*numTrees entries, row-major
}

// NewContextMap constructs a ContextMap with the given number of
// block-type contexts and trees, all entries initialized to tree 0.
func NewContextMap(numContexts, numTrees int) (*ContextMap, error) {
	if numContexts < 0 || numTrees < 0 {
		return nil, ErrBadParam
	}
	return &ContextMap{
		numContexts: numContexts,
		numTrees:    numTrees,
		m:           make([]byte, numContexts*numTrees),
	}, nil
}

// Resize changes the contexts/trees shape, discarding all prior entries.
func (c *ContextMap) Resize(numContexts, numTrees int) error {
	if numContexts < 0 || numTrees < 0 {
		return ErrBadParam
	}
	c.numContexts, c.numTrees = numContexts, numTrees
	c.m = make([]byte, numContexts*numTrees)
	return nil
}

func (c *ContextMap) index(ctx, tree int) int { return ctx*c.numTrees + tree }

// At returns the tree index assigned to (ctx, tree)'s matrix cell.
func (c *ContextMap) At(ctx, tree int) byte { return c.m[c.index(ctx, tree)] }

// Set assigns v to (ctx, tree)'s matrix cell. It reports ErrOutOfRange
// if either index is outside the configured shape.
func (c *ContextMap) Set(ctx, tree int, v byte) error {
	if ctx < 0 || ctx >= c.numContexts || tree < 0 || tree >= c.numTrees {
		return ErrOutOfRange
	}
	c.m[c.index(ctx, tree)] = v
	return nil
}

// moveToFront is the identity-seeded alphabet an Apply/RevertMTF pass
// permutes in place.
type moveToFront struct {
	tab [256]byte
}

func newMoveToFront() *moveToFront {
	var mtf moveToFront
	for i := range mtf.tab {
		mtf.tab[i] = byte(i)
	}
	return &mtf
}

// encode replaces v with its current rank in the table and promotes it
// to the front, the standard MTF encode step.
func (mtf *moveToFront) encode(v byte) byte {
	var rank byte
	for i, c := range mtf.tab {
		if c == v {
			rank = byte(i)
			break
		}
	}
	copy(mtf.tab[1:rank+1], mtf.tab[:rank])
	mtf.tab[0] = v
	return rank
}

// decode is encode's inverse: given a rank, returns the original symbol
// and promotes it to the front.
func (mtf *moveToFront) decode(rank byte) byte {
	v := mtf.tab[rank]
	copy(mtf.tab[1:rank+1], mtf.tab[:rank])
	mtf.tab[0] = v
	return v
}

// ApplyMTF replaces every entry of the map's flattened matrix with its
// move-to-front rank, in row-major order, readying it for a compact
// byte-oriented encoding.
func (c *ContextMap) ApplyMTF() {
	mtf := newMoveToFront()
	for i, v := range c.m {
		c.m[i] = mtf.encode(v)
	}
}

// RevertMTF inverts ApplyMTF, replacing every rank with its original
// symbol. Calling RevertMTF on a map that was not produced by ApplyMTF
// yields unspecified results.
func (c *ContextMap) RevertMTF() {
	mtf := newMoveToFront()
	for i, r := range c.m {
		c.m[i] = mtf.decode(r)
	}
}

// Clone returns a deep copy of c.
func (c *ContextMap) Clone() *ContextMap {
	return &ContextMap{
		numContexts: c.numContexts,
		numTrees:    c.numTrees,
		m:           append([]byte(nil), c.m...),
	}
}
