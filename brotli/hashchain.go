// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// NPos is the sentinel HashChain.Find returns when no match exists.
const NPos = 0xFFFFFFFF

const numHashBuckets = 251

// hash3 hashes the three bytes a caller has most recently pushed (or is
// searching for) into one of 251 buckets, per spec.md §3.
func hash3(b0, b1, b2 byte) uint32 {
	return (uint32(b0)<<6 + uint32(b1)<<3 + uint32(b2)) % numHashBuckets
}

// HashChain locates prior occurrences of 3-byte sequences within a Ring,
// for use by a match finder. It owns the Ring exclusively.
type HashChain struct {
	ring      *Ring
	chainLen  uint32
	lastBytes [3]byte
	counter   uint32
	chains    []uint32 // numHashBuckets * chainLen, flattened
	positions []uint32 // numHashBuckets, next-write index mod chainLen
}

// NewHashChain constructs a HashChain over a Ring of extent n, keeping up
// to chainLen candidate positions per hash bucket. It reports ErrMemory
// if chainLen is large enough that chains would overflow addressable
// memory, and propagates NewRing's ErrBadParam for an oversized n.
func NewHashChain(n uint32, chainLen uint32) (*HashChain, error) {
	const maxUint32 = ^uint32(0)
	if chainLen != 0 && chainLen >= maxUint32/numHashBuckets {
		return nil, ErrMemory
	}
	r, err := NewRing(n)
	if err != nil {
		return nil, err
	}
	return &HashChain{
		ring:      r,
		chainLen:  chainLen,
		chains:    make([]uint32, numHashBuckets*chainLen),
		positions: make([]uint32, numHashBuckets),
	}, nil
}

// PushFront records b as the newest byte: it rotates the 3-byte rolling
// window, records the pre-push counter value in the hash bucket for the
// rotated window, and forwards b into the owned Ring.
func (h *HashChain) PushFront(b byte) error {
	h.lastBytes[0], h.lastBytes[1], h.lastBytes[2] = h.lastBytes[1], h.lastBytes[2], b
	i := hash3(h.lastBytes[0], h.lastBytes[1], h.lastBytes[2])
	pos := h.positions[i]
	if h.chainLen > 0 {
		h.chains[i*h.chainLen+pos] = h.counter
		if pos+1 >= h.chainLen {
			h.positions[i] = 0
		} else {
			h.positions[i] = pos + 1
		}
	}
	h.counter++
	return h.ring.PushFront(b)
}

// Size returns the number of valid bytes in the owned Ring.
func (h *HashChain) Size() uint32 { return h.ring.Size() }

// Extent returns the owned Ring's configured window size.
func (h *HashChain) Extent() uint32 { return h.ring.Extent() }

// At returns the byte pushed i+1 steps ago, forwarding to the owned Ring.
func (h *HashChain) At(i uint32) byte { return h.ring.At(i) }

// Find looks up an earlier occurrence of the triple b[0], b[1], b[2],
// given oldest byte first (the order PushFront hashes in). For the
// smallest ring offset y >= pos at which the bytes at offsets y+2, y+1,
// y equal b[0], b[1], b[2] respectively, it returns d = y+2, the offset
// of the occurrence's first byte; it returns NPos if the chain holds no
// such occurrence. b must have at least 3 bytes; only the first three
// are inspected.
func (h *HashChain) Find(b []byte, pos uint32) uint32 {
	if h.ring.Size() < 3 || h.chainLen == 0 {
		return NPos
	}
	i := hash3(b[0], b[1], b[2])
	chainIdx := h.positions[i]
	here := h.counter
	chain := h.chains[i*h.chainLen : (i+1)*h.chainLen]
	size := h.ring.Size() - 2
	for j := uint32(0); j < h.chainLen; j++ {
		if chainIdx == 0 {
			chainIdx = h.chainLen
		}
		chainIdx--
		y := here - chain[chainIdx] - 1
		if y < pos {
			continue
		}
		if y >= size {
			return NPos
		}
		if h.ring.At(y) == b[2] && h.ring.At(y+1) == b[1] && h.ring.At(y+2) == b[0] {
			return y + 2
		}
	}
	return NPos
}
