// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"hash/crc32"

	"github.com/dsnet/golib/hashutil"
)

// Word is a fixed-capacity byte container used by the static dictionary.
// Its capacity is 37 bytes; bytes beyond the current length are always
// zero. Two words are equal iff their lengths and bytes match.
type Word struct {
	b   [maxDictLen]byte
	len uint8
}

// maxDictLen is the maximum length of a dictionary word (and thus the
// capacity of a Word).
const maxDictLen = 37

// NewWord copies s into a new Word. It panics if len(s) exceeds 37 bytes;
// callers that do not control s's length should check first.
func NewWord(s []byte) Word {
	if len(s) > maxDictLen {
		panic(ErrMemory)
	}
	var w Word
	w.len = uint8(copy(w.b[:], s))
	return w
}

// Len reports the number of meaningful bytes in w.
func (w Word) Len() int { return int(w.len) }

// Bytes returns the meaningful prefix of w's storage. The returned slice
// aliases w and must not be retained past the next mutation of w.
func (w *Word) Bytes() []byte { return w.b[:w.len] }

// At returns the byte at index i, which must be less than w.Len().
func (w Word) At(i int) byte { return w.b[i] }

// Equal reports whether w and other have the same length and bytes.
func (w Word) Equal(other Word) bool {
	return w.len == other.len && w.b == other.b
}

// resize sets w's length, zero-filling any bytes beyond the old length
// that fall within the new length, and always zeroing everything past
// the new length. It reports ErrMemory if n exceeds capacity.
func (w *Word) resize(n int) error {
	if n > maxDictLen {
		return ErrMemory
	}
	for i := n; i < maxDictLen; i++ {
		w.b[i] = 0
	}
	w.len = uint8(n)
	return nil
}

// dictWordCounts holds, for each word length 0..24, the number of words
// the built-in dictionary carries at that length. Lengths outside
// [4,24] carry zero words; this matches RFC 7932's dictionary shape.
var dictWordCounts = [25]uint32{
	0, 0, 0, 0,
	1024, 1024, 2048, 2048, 1024, 1024, 1024, 1024, 1024,
	512, 512, 256, 128, 128, 256, 128, 128, 64, 64, 32, 32,
}

// WordCount returns the number of dictionary words of length j, or 0 if
// j is outside [0,24].
func WordCount(j uint32) uint32 {
	if j >= uint32(len(dictWordCounts)) {
		return 0
	}
	return dictWordCounts[j]
}

// GetWord returns the i-th word of length j. It returns the zero Word if
// j is outside [0,24] or i is outside [0, WordCount(j)).
func GetWord(j, i uint32) Word {
	if j >= uint32(len(dictWordCounts)) || i >= dictWordCounts[j] {
		return Word{}
	}
	return dictWords[j].at(i)
}

// DictionaryTotalWords returns the total number of words carried by the
// built-in dictionary across all lengths (13,504 per spec.md §3).
func DictionaryTotalWords() uint32 {
	var total uint32
	for _, n := range dictWordCounts {
		total += n
	}
	return total
}

// DictionaryChecksum returns a CRC-32 (IEEE) digest of the built-in
// dictionary's word bytes, folding each length table's own CRC into a
// running combined digest with CombineCRC32 rather than recomputing the
// CRC over one concatenated byte slice. Because this module's dictionary
// payload is a deterministic placeholder rather than the real Brotli
// corpus (see DESIGN.md), this does not equal the RFC 7932 dictionary's
// published checksum; it is useful only for detecting drift in this
// module's own generated table.
func DictionaryChecksum() uint32 {
	var combined uint32
	for j, t := range dictWords {
		if dictWordCounts[j] == 0 {
			continue
		}
		crc := crc32.ChecksumIEEE(t.data)
		combined = hashutil.CombineCRC32(crc32.IEEE, combined, crc, int64(len(t.data)))
	}
	return combined
}
