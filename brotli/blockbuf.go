// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// Command stream format: a flat, self-delimiting sequence of bytes
// carrying no entropy coding of its own (this is not the RFC 7932
// bitstream; see spec.md §1's Non-goals). A header byte X selects a
// literal run or a copy command and, together with an optional second
// byte, a length:
//
//	X&0x80 == 0x80 -> copy; X&0x80 == 0x00 -> literal run
//	X&0x40 == 0    -> length = X&0x3F                          (short)
//	X&0x40 == 0x40 -> next byte Y; length = ((X&0x3F)<<8)+Y+64 (long)
//
// A copy command's header is followed by a distance field [R ...]:
//
//	R<0x80        -> dictionary reference: R&0x7F is the transform
//	                 selector, the next two bytes B1 B2 form the word
//	                 index (B1<<8)+B2, and the copy length already in
//	                 the header is the dictionary word's length.
//	R&0xC0==0x80  -> 14-bit window distance: ((R&0x3F)<<8) + next byte.
//	R>=0xC0       -> 30-bit window distance, biased by 16384:
//	                 ((R&0x3F)<<24) + (next<<16) + (next<<8) + next + 16384.
//
// For example, the literal run "Abc" is [0x03]['A']['b']['c'], and a
// copy of 3 bytes at window distance 1 is [0x83][0x80][0x01].
const (
	matchSizeMax = 16447
	longRunFull  = 0x3F
	longRunOpen  = 0x40
	longRunClose = 0x7FFF
)

const (
	minMatchLen = 4
	maxMatchLen = matchSizeMax
)

// match-finder states, a two-state simplification of the source
// library's three-state try_block loop: scan fresh ground, or hold an
// accepted match while the next byte is examined, committing to it
// unless a strictly longer match starts there (lazy matching).
const (
	stateScan = iota
	stateLazy
)

// BlockBuffer finds literal/copy matches over a stream of input bytes
// using a HashChain and emits a command stream describing them. Bytes
// that have been matched against are pushed into the chain; output
// commands accumulate in an internal BlockString until read out or
// cleared. useBDict records whether EmitDictionaryCopy may be used
// against this buffer; inputBlockSize caps staged input.
type BlockBuffer struct {
	chain          *HashChain
	input          BlockString
	out            BlockString
	useBDict       bool
	inputBlockSize uint32
	torn           bool
}

// NewBlockBuffer constructs a BlockBuffer whose staged input is capped
// at blockSize bytes (halved from the BlockString ceiling if blockSize
// would exceed it), whose match window spans ringExtent bytes, and
// which keeps up to chainLen candidates per hash bucket. useBDict gates
// EmitDictionaryCopy.
func NewBlockBuffer(blockSize, ringExtent, chainLen uint32, useBDict bool) (*BlockBuffer, error) {
	if blockSize > blockStringMax/2 {
		blockSize = blockStringMax / 2
	}
	c, err := NewHashChain(ringExtent, chainLen)
	if err != nil {
		return nil, err
	}
	b := &BlockBuffer{chain: c, useBDict: useBDict, inputBlockSize: blockSize}
	if err := b.input.Reserve(blockSize); err != nil {
		return nil, err
	}
	if err := b.out.Reserve(blockSize * 2); err != nil {
		return nil, err
	}
	return b, nil
}

// Extent returns the match window's configured size.
func (b *BlockBuffer) Extent() uint32 {
	if b.chain == nil {
		return 0
	}
	return b.chain.Extent()
}

// RingSize returns the number of bytes currently held in the match window.
func (b *BlockBuffer) RingSize() uint32 {
	if b.chain == nil {
		return 0
	}
	return b.chain.Size()
}

// Capacity returns input_block_size, the cap on staged input.
func (b *BlockBuffer) Capacity() uint32 { return b.inputBlockSize }

// InputSize returns the number of bytes staged but not yet flushed.
func (b *BlockBuffer) InputSize() uint32 { return b.input.Size() }

// InputData returns the staged input bytes. The slice aliases the
// BlockBuffer and must not be retained across a Write or Flush call.
func (b *BlockBuffer) InputData() []byte { return b.input.Data() }

// Str returns the accumulated output command stream. The returned
// BlockString is the BlockBuffer's own, so later Flush or ClearOutput
// calls change what it holds.
func (b *BlockBuffer) Str() *BlockString { return &b.out }

// Peek returns the i-th byte of the match window. It reports
// ErrOutOfRange if i is not currently held, including when the buffer
// has been torn down by Take.
func (b *BlockBuffer) Peek(i uint32) (byte, error) {
	if b.chain == nil || i >= b.chain.Size() {
		return 0, ErrOutOfRange
	}
	return b.chain.At(i), nil
}

// ClearInput discards any staged, unflushed input bytes.
func (b *BlockBuffer) ClearInput() { b.input.Clear() }

// ClearOutput discards any accumulated command-stream output.
func (b *BlockBuffer) ClearOutput() { b.out.Clear() }

// Write stages p for later matching by Flush, so long as it fits within
// input_block_size - InputSize(); otherwise it reports ErrBlockOverflow
// and leaves the staged input untouched. It reports ErrInit if the
// buffer has been torn down by Take.
func (b *BlockBuffer) Write(p []byte) (int, error) {
	if b.torn {
		return 0, ErrInit
	}
	if uint64(len(p)) > uint64(b.inputBlockSize)-uint64(b.input.Size()) {
		return 0, ErrBlockOverflow
	}
	old := b.input.Size()
	for _, c := range p {
		if err := b.input.PushBack(c); err != nil {
			b.input.Resize(old, 0)
			return 0, err
		}
	}
	return len(p), nil
}

// NoconvBlock appends all staged input directly to the output stream
// verbatim, with no command framing and without touching the hash
// chain: a stored-block escape for input the caller has already decided
// not to run through the match finder. It reports ErrInit if the buffer
// has been torn down by Take.
func (b *BlockBuffer) NoconvBlock() error {
	if b.torn {
		return ErrInit
	}
	sz := b.out.Size()
	isz := b.input.Size()
	if err := b.out.Resize(sz+isz, 0); err != nil {
		return err
	}
	copy(b.out.Data()[sz:], b.input.Data())
	b.input.Clear()
	return nil
}

// Bypass pushes p into the hash chain without emitting any commands and
// without consulting or clearing staged input, so a caller can keep the
// match window synchronized with bytes inserted by some other path. It
// reports ErrInit if the buffer has been torn down by Take.
func (b *BlockBuffer) Bypass(p []byte) (int, error) {
	if b.chain == nil {
		return 0, ErrInit
	}
	for i, c := range p {
		if err := b.chain.PushFront(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Flush runs the match finder over all staged input, appending the
// literal/copy commands it finds to the output stream, and clears the
// staged input. It reports ErrInit if the buffer has been torn down by
// Take.
func (b *BlockBuffer) Flush() (err error) {
	if b.torn {
		return ErrInit
	}
	defer errRecover(&err)
	in := b.input.Data()
	n := len(in)
	litStart := 0
	state := stateScan
	var pendingDist uint32
	var pendingLen int
	var pendingAt int
	j := b.out.Size()

	// flushLiteral grows the open literal run (or opens one) with every
	// byte in [litStart, end), advancing litStart to end.
	flushLiteral := func(end int) error {
		for k := litStart; k < end; k++ {
			if err := b.updateLiteral(in[k], &j); err != nil {
				return err
			}
		}
		litStart = end
		return nil
	}

	commitCopy := func(length int, dist uint32) error {
		if err := b.emitCopy(uint32(length), dist); err != nil {
			return err
		}
		j = b.out.Size()
		return nil
	}

	// push feeds every byte up to and including in[k] that has not been
	// pushed yet into the chain, so no byte enters the window twice.
	pushed := 0
	push := func(k int) (err error) {
		for ; pushed <= k && err == nil; pushed++ {
			err = b.chain.PushFront(in[pushed])
		}
		return err
	}

	i := 0
	for i < n {
		if n-i < 3 {
			break
		}
		found := b.chain.Find(in[i:i+3], 1)
		if err := push(i); err != nil {
			return err
		}

		if found == NPos && state == stateScan {
			i++
			continue
		}
		// Find returns the ring offset of the earlier occurrence's first
		// byte, counted before in[i] was pushed (offset 0 was in[i-1]), so
		// that byte lies found+1 bytes before i. A missing match (NPos)
		// wraps dist to 0, which matchLength reports as length 0.
		dist := found + 1
		ml := b.matchLength(in, i, dist)
		if ml < minMatchLen && state == stateScan {
			i++
			continue
		}

		if state == stateScan {
			state = stateLazy
			pendingDist, pendingLen, pendingAt = dist, ml, i
			i++
			continue
		}

		// stateLazy: we already have a pending match at pendingAt. If the
		// match found one byte later is strictly longer, prefer it and
		// treat pendingAt's byte as a literal (lazy matching).
		if ml > pendingLen {
			if err := flushLiteral(pendingAt); err != nil {
				return err
			}
			if err := flushLiteral(i); err != nil {
				return err
			}
			if err := commitCopy(ml, dist); err != nil {
				return err
			}
			for k := i + 1; k < i+ml && k < n; k++ {
				if err := push(k); err != nil {
					return err
				}
			}
			i += ml
			litStart = i
			state = stateScan
			continue
		}

		if err := flushLiteral(pendingAt); err != nil {
			return err
		}
		if err := commitCopy(pendingLen, pendingDist); err != nil {
			return err
		}
		for k := pendingAt + 1; k < pendingAt+pendingLen && k < n; k++ {
			if k != i {
				if err := push(k); err != nil {
					return err
				}
			}
		}
		i = pendingAt + pendingLen
		if i <= pendingAt {
			i = pendingAt + 1
		}
		litStart = i
		state = stateScan
	}

	if state == stateLazy {
		if err := flushLiteral(pendingAt); err != nil {
			return err
		}
		if err := commitCopy(pendingLen, pendingDist); err != nil {
			return err
		}
		for k := pendingAt + 1; k < pendingAt+pendingLen && k < n; k++ {
			if err := push(k); err != nil {
				return err
			}
		}
		i = pendingAt + pendingLen
		litStart = i
	}

	for ; i < n; i++ {
		if err := push(i); err != nil {
			return err
		}
	}
	if err := flushLiteral(n); err != nil {
		return err
	}
	b.input.Clear()
	return nil
}

// matchLength returns how many bytes starting at in[pos] equal the bytes
// starting dist positions back in the chain's window, bounded by
// maxMatchLen and the remainder of in; in[pos] must already have been
// pushed, so ring offset dist holds in[pos-dist]. It never extends a match past
// dist bytes, so every byte it confirms has already been pushed into the
// chain; this keeps the match entirely non-overlapping with pos, at the
// cost of not finding the longer runs an overlapping copy could express.
func (b *BlockBuffer) matchLength(in []byte, pos int, dist uint32) int {
	max := len(in) - pos
	if max > maxMatchLen {
		max = maxMatchLen
	}
	if uint32(max) > dist {
		max = int(dist)
	}
	n := 0
	for n < max {
		backIdx := dist - uint32(n)
		if backIdx >= b.chain.Size() {
			break
		}
		if in[pos+n] != b.chain.At(backIdx) {
			break
		}
		n++
	}
	return n
}

// updateLiteral appends ch to the literal run whose header lives at
// output offset *j, or opens a new run if *j points past the output's
// end. Short runs (1..63 literals) store their count directly in the
// header byte; at 63 the run switches to a long form that tracks length
// as a raw 16-bit big-endian counter starting at 0x4000, closing the run
// once that counter reaches 0x7FFF.
func (b *BlockBuffer) updateLiteral(ch byte, j *uint32) error {
	out := &b.out
	switch {
	case *j == out.Size():
		if err := out.PushBack(1); err != nil {
			return err
		}
		return out.PushBack(ch)

	case out.At(*j) == longRunFull:
		if err := out.PushBack(1); err != nil {
			return err
		}
		if err := out.PushBack(ch); err != nil {
			return err
		}
		data := out.Data()
		copy(data[*j+2:*j+2+longRunFull], data[*j+1:*j+1+longRunFull])
		data[*j] = longRunOpen
		data[*j+1] = 0
		return nil

	case out.At(*j) >= longRunOpen:
		raw := uint16(out.At(*j))<<8 | uint16(out.At(*j+1))
		if err := out.PushBack(ch); err != nil {
			return err
		}
		raw++
		out.Set(*j, byte(raw>>8))
		out.Set(*j+1, byte(raw))
		if raw == longRunClose {
			*j = out.Size()
		}
		return nil

	default:
		if err := out.PushBack(ch); err != nil {
			return err
		}
		out.Set(*j, out.At(*j)+1)
		return nil
	}
}

// emitCopy appends a copy command for a match of length bytes at
// backward window distance dist.
func (b *BlockBuffer) emitCopy(length, dist uint32) error {
	if err := b.emitCopyHeader(length); err != nil {
		return err
	}
	return b.emitRingDistance(dist)
}

// emitCopyHeader writes a copy command's header byte (or two, for the
// long form), leaving the distance field to the caller.
//
// The long form's length byte is (t>>8)&0x3F, where t = length-64; the
// source library computes this as (t&0x3F)>>8, which always evaluates
// to zero since t&0x3F is itself always less than 256. That diverges
// from this form only for match lengths at or above 320, a range none
// of its own documented format examples exercise, and only this form
// round-trips with the documented decode formula.
func (b *BlockBuffer) emitCopyHeader(length uint32) error {
	if length >= 64 {
		t := length - 64
		if err := b.out.PushBack(byte((t>>8)&0x3F) | 0xC0); err != nil {
			return err
		}
		return b.out.PushBack(byte(t))
	}
	return b.out.PushBack(byte(length) | 0x80)
}

// emitRingDistance writes a copy command's distance field for a match
// found within the match window (as opposed to a dictionary reference).
func (b *BlockBuffer) emitRingDistance(v uint32) error {
	if v >= 16384 {
		t := v - 16384
		if err := b.out.PushBack(byte((t>>24)&0x3F) | 0xC0); err != nil {
			return err
		}
		if err := b.out.PushBack(byte(t >> 16)); err != nil {
			return err
		}
		if err := b.out.PushBack(byte(t >> 8)); err != nil {
			return err
		}
		return b.out.PushBack(byte(t))
	}
	if err := b.out.PushBack(byte((v>>8)&0x3F) | 0x80); err != nil {
		return err
	}
	return b.out.PushBack(byte(v))
}

// EmitDictionaryCopy appends a copy command referencing word wordIndex
// of the static dictionary, as transformed by filter, in place of a
// window match. length must equal that dictionary word's length. The
// match finder never produces these itself: dictionary references are
// the province of an external command producer (spec.md §2) working
// from Word/GetWord; this is the primitive such a producer uses. It
// reports ErrBadParam if useBDict is false or filter does not fit the
// field's 7 bits, and ErrInit if the buffer has been torn down by Take.
func (b *BlockBuffer) EmitDictionaryCopy(length uint32, filter byte, wordIndex uint16) error {
	if b.torn {
		return ErrInit
	}
	if !b.useBDict || filter >= 0x80 {
		return ErrBadParam
	}
	if err := b.emitCopyHeader(length); err != nil {
		return err
	}
	if err := b.out.PushBack(filter); err != nil {
		return err
	}
	if err := b.out.PushBack(byte(wordIndex >> 8)); err != nil {
		return err
	}
	return b.out.PushBack(byte(wordIndex))
}

// Take transfers ownership of b's state to a new BlockBuffer, leaving b
// zeroed and unusable: subsequent calls to b's methods that check torn
// report ErrInit.
func (b *BlockBuffer) Take() *BlockBuffer {
	taken := &BlockBuffer{
		chain:          b.chain,
		input:          b.input,
		out:            b.out,
		useBDict:       b.useBDict,
		inputBlockSize: b.inputBlockSize,
	}
	b.chain = nil
	b.input = BlockString{}
	b.out = BlockString{}
	b.useBDict = false
	b.inputBlockSize = 0
	b.torn = true
	return taken
}
