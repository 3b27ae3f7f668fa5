// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"testing"
)

// decodeCommands is a test-only reconstruction of the bytes a BlockBuffer
// command stream describes, verifying the encoder's literal/copy output
// is self-consistent (round trips back to the original input). It does
// not decode dictionary-reference copies (R<0x80), since nothing this
// package's own match finder emits produces one.
func decodeCommands(t *testing.T, cmds []byte) []byte {
	t.Helper()
	var out []byte
	i := 0
	readLen := func() uint32 {
		x := cmds[i]
		i++
		if x&0x40 == 0 {
			return uint32(x & 0x3F)
		}
		y := cmds[i]
		i++
		return (uint32(x&0x3F)<<8 + uint32(y)) + 64
	}
	for i < len(cmds) {
		x := cmds[i]
		if x&0x80 == 0 {
			length := readLen()
			out = append(out, cmds[i:i+int(length)]...)
			i += int(length)
			continue
		}
		length := readLen()
		r := cmds[i]
		i++
		if r < 0x80 {
			t.Fatalf("unexpected dictionary-reference copy at offset %d", i)
		}
		var dist uint32
		if r&0xC0 == 0xC0 {
			b1, b2, b3 := cmds[i], cmds[i+1], cmds[i+2]
			i += 3
			dist = (uint32(r&0x3F)<<24 + uint32(b1)<<16 + uint32(b2)<<8 + uint32(b3)) + 16384
		} else {
			b1 := cmds[i]
			i++
			dist = uint32(r&0x3F)<<8 + uint32(b1)
		}
		start := len(out) - int(dist)
		if start < 0 {
			t.Fatalf("copy distance %d exceeds output length %d", dist, len(out))
		}
		for k := uint32(0); k < length; k++ {
			out = append(out, out[start+int(k)])
		}
	}
	return out
}

func TestBlockBufferRoundTrip(t *testing.T) {
	vectors := []string{
		"",
		"a",
		"abc",
		"abcabcabcabc",
		"the quick brown fox jumps over the lazy dog",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"abababababababababababab",
		"xyzzy mississippi mississippi banana banana",
	}
	for _, in := range vectors {
		t.Run(in, func(t *testing.T) {
			bb, err := NewBlockBuffer(1<<16, 1<<16, 8, false)
			if err != nil {
				t.Fatalf("NewBlockBuffer error: %v", err)
			}
			if _, err := bb.Write([]byte(in)); err != nil {
				t.Fatalf("Write error: %v", err)
			}
			if err := bb.Flush(); err != nil {
				t.Fatalf("Flush error: %v", err)
			}
			got := decodeCommands(t, bb.Str().Data())
			if !bytes.Equal(got, []byte(in)) {
				t.Errorf("round trip = %q, want %q", got, in)
			}
		})
	}
}

// TestBlockBufferLiteralRun exercises the literal-run growth routine in
// isolation against the format's own worked example: "Abc" encodes as a
// short literal run with a length byte that counts up one per call.
func TestBlockBufferLiteralRun(t *testing.T) {
	bb, err := NewBlockBuffer(64, 64, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	var j uint32
	for _, c := range []byte("Abc") {
		if err := bb.updateLiteral(c, &j); err != nil {
			t.Fatalf("updateLiteral error: %v", err)
		}
	}
	want := []byte{0x03, 'A', 'b', 'c'}
	if got := bb.Str().Data(); !bytes.Equal(got, want) {
		t.Errorf("literal run = % #x, want % #x", got, want)
	}
}

// TestBlockBufferLiteralRunOpensLong exercises updateLiteral's short-to-
// long expansion boundary: the 64th literal in a run must convert the
// header from the short count form to the long open form and shift the
// existing 63 literal bytes over to make room for it, rather than
// simply appending a second run.
func TestBlockBufferLiteralRunOpensLong(t *testing.T) {
	bb, err := NewBlockBuffer(256, 64, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	var j uint32
	for i := 0; i < 64; i++ {
		if err := bb.updateLiteral('x', &j); err != nil {
			t.Fatalf("updateLiteral error: %v", err)
		}
	}
	data := bb.Str().Data()
	if data[0] != longRunOpen || data[1] != 0 {
		t.Fatalf("header after 64th literal = % #x, want long-run-open header", data[:2])
	}
	if len(data) != 2+64 {
		t.Fatalf("output length = %d, want %d", len(data), 2+64)
	}
	for _, c := range data[2:] {
		if c != 'x' {
			t.Fatalf("literal bytes = % #x, want all 'x'", data[2:])
		}
	}
}

// TestBlockBufferCopyEmission exercises emitCopy directly against the
// format's own worked copy examples, independent of whether the match
// finder would discover that particular match from a raw input of that
// shape (matchLength never lets a match overlap the bytes it copies, so
// Flush cannot produce the distance-1 copy of the first vector).
func TestBlockBufferCopyEmission(t *testing.T) {
	tests := []struct {
		name   string
		length uint32
		dist   uint32
		want   []byte
	}{
		{"short copy", 3, 1, []byte{0x83, 0x80, 0x01}},
		{"long length, 14-bit distance", 69, 4098, []byte{0xC0, 0x05, 0x90, 0x02}},
		{"long length, 30-bit distance", 70, 16387, []byte{0xC0, 0x06, 0xC0, 0x00, 0x00, 0x03}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bb, err := NewBlockBuffer(64, 64, 4, false)
			if err != nil {
				t.Fatalf("NewBlockBuffer error: %v", err)
			}
			if err := bb.emitCopy(tt.length, tt.dist); err != nil {
				t.Fatalf("emitCopy error: %v", err)
			}
			if got := bb.Str().Data(); !bytes.Equal(got, tt.want) {
				t.Errorf("emitCopy(%d, %d) = % #x, want % #x", tt.length, tt.dist, got, tt.want)
			}
		})
	}
}

// TestBlockBufferLiteralThenCopy composes a literal run with a
// following copy command, matching the format's own "TTTT" worked
// example (a literal 'T' followed by a copy of the next 3 T's at
// distance 1): one literal byte opens the run, then a copy command
// follows it in the same output stream.
func TestBlockBufferLiteralThenCopy(t *testing.T) {
	bb, err := NewBlockBuffer(64, 64, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	var j uint32
	if err := bb.updateLiteral('T', &j); err != nil {
		t.Fatalf("updateLiteral error: %v", err)
	}
	if err := bb.emitCopy(3, 1); err != nil {
		t.Fatalf("emitCopy error: %v", err)
	}
	want := []byte{0x01, 'T', 0x83, 0x80, 0x01}
	if got := bb.Str().Data(); !bytes.Equal(got, want) {
		t.Errorf("output = % #x, want % #x", got, want)
	}
}

func TestBlockBufferEmitDictionaryCopy(t *testing.T) {
	bb, err := NewBlockBuffer(64, 64, 4, true)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	if err := bb.EmitDictionaryCopy(4, 5, 2); err != nil {
		t.Fatalf("EmitDictionaryCopy error: %v", err)
	}
	want := []byte{0x84, 0x05, 0x00, 0x02}
	if got := bb.Str().Data(); !bytes.Equal(got, want) {
		t.Errorf("output = % #x, want % #x", got, want)
	}
}

func TestBlockBufferEmitDictionaryCopyRequiresUseBDict(t *testing.T) {
	bb, err := NewBlockBuffer(64, 64, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	if err := bb.EmitDictionaryCopy(4, 5, 2); err != ErrBadParam {
		t.Errorf("EmitDictionaryCopy without useBDict error = %v, want ErrBadParam", err)
	}
}

func TestBlockBufferWriteBoundsAgainstBlockSize(t *testing.T) {
	bb, err := NewBlockBuffer(4, 64, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	if _, err := bb.Write([]byte("abcd")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if _, err := bb.Write([]byte("e")); err != ErrBlockOverflow {
		t.Errorf("Write past input_block_size error = %v, want ErrBlockOverflow", err)
	}
}

func TestBlockBufferBypassAndNoconv(t *testing.T) {
	bb, err := NewBlockBuffer(1<<12, 1<<12, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	if _, err := bb.Bypass([]byte("hello")); err != nil {
		t.Fatalf("Bypass error: %v", err)
	}
	if bb.Str().Size() != 0 {
		t.Errorf("Str() after Bypass size = %d, want 0 (Bypass emits no commands)", bb.Str().Size())
	}
	if bb.RingSize() != 5 {
		t.Errorf("RingSize() after Bypass = %d, want 5 (bytes must enter the chain)", bb.RingSize())
	}

	if _, err := bb.Write([]byte("world")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := bb.NoconvBlock(); err != nil {
		t.Fatalf("NoconvBlock error: %v", err)
	}
	if got := bb.Str().Data(); !bytes.Equal(got, []byte("world")) {
		t.Errorf("Str() after NoconvBlock = %q, want %q", got, "world")
	}
	if bb.RingSize() != 5 {
		t.Errorf("RingSize() after NoconvBlock = %d, want 5 (NoconvBlock must not touch the chain)", bb.RingSize())
	}
}

func TestBlockBufferPeekOutOfRange(t *testing.T) {
	bb, err := NewBlockBuffer(1<<12, 1<<12, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	if _, err := bb.Peek(0); err != ErrOutOfRange {
		t.Errorf("Peek on empty buffer error = %v, want ErrOutOfRange", err)
	}
	if _, err := bb.Bypass([]byte("ab")); err != nil {
		t.Fatalf("Bypass error: %v", err)
	}
	if c, err := bb.Peek(0); err != nil || c != 'b' {
		t.Errorf("Peek(0) = (%q, %v), want ('b', nil)", c, err)
	}
	if _, err := bb.Peek(2); err != ErrOutOfRange {
		t.Errorf("Peek past RingSize error = %v, want ErrOutOfRange", err)
	}
}

func TestBlockBufferTakeErrInit(t *testing.T) {
	bb, err := NewBlockBuffer(1<<12, 1<<12, 4, false)
	if err != nil {
		t.Fatalf("NewBlockBuffer error: %v", err)
	}
	_ = bb.Take()
	if _, err := bb.Write([]byte("x")); err != ErrInit {
		t.Errorf("Write after Take error = %v, want ErrInit", err)
	}
	if err := bb.Flush(); err != ErrInit {
		t.Errorf("Flush after Take error = %v, want ErrInit", err)
	}
	if _, err := bb.Bypass([]byte("x")); err != ErrInit {
		t.Errorf("Bypass after Take error = %v, want ErrInit", err)
	}
	if err := bb.NoconvBlock(); err != ErrInit {
		t.Errorf("NoconvBlock after Take error = %v, want ErrInit", err)
	}
	if err := bb.EmitDictionaryCopy(1, 0, 0); err != ErrInit {
		t.Errorf("EmitDictionaryCopy after Take error = %v, want ErrInit", err)
	}
	if _, err := bb.Peek(0); err != ErrOutOfRange {
		t.Errorf("Peek after Take error = %v, want ErrOutOfRange", err)
	}
}
