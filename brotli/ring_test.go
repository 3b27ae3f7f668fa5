// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "testing"

func TestRingBasic(t *testing.T) {
	vectors := []struct {
		desc  string
		n     uint32
		push  string
		want  string // want[i] is the expected byte at At(i) for i in [0,len(want))
		wantSize uint32
	}{{
		desc:     "no wrap",
		n:        8,
		push:     "abcd",
		want:     "dcba",
		wantSize: 4,
	}, {
		desc:     "exact fill",
		n:        4,
		push:     "abcd",
		want:     "dcba",
		wantSize: 4,
	}, {
		desc:     "wraps once",
		n:        4,
		push:     "abcde",
		want:     "edcb",
		wantSize: 4,
	}, {
		desc:     "wraps many times",
		n:        3,
		push:     "abcdefgh",
		want:     "hgf",
		wantSize: 3,
	}}

	for _, v := range vectors {
		t.Run(v.desc, func(t *testing.T) {
			r, err := NewRing(v.n)
			if err != nil {
				t.Fatalf("NewRing error: %v", err)
			}
			for i := 0; i < len(v.push); i++ {
				if err := r.PushFront(v.push[i]); err != nil {
					t.Fatalf("PushFront error: %v", err)
				}
			}
			if got := r.Size(); got != v.wantSize {
				t.Errorf("Size() = %d, want %d", got, v.wantSize)
			}
			for i := 0; i < len(v.want); i++ {
				if got := r.At(uint32(i)); got != v.want[i] {
					t.Errorf("At(%d) = %c, want %c", i, got, v.want[i])
				}
			}
		})
	}
}

func TestRingBadParam(t *testing.T) {
	if _, err := NewRing(MaxRingExtent + 1); err != ErrBadParam {
		t.Errorf("NewRing(oversized) error = %v, want ErrBadParam", err)
	}
}

func TestRingClone(t *testing.T) {
	r, err := NewRing(4)
	if err != nil {
		t.Fatalf("NewRing error: %v", err)
	}
	for _, b := range []byte("abc") {
		if err := r.PushFront(b); err != nil {
			t.Fatalf("PushFront error: %v", err)
		}
	}
	c := r.Clone()
	if err := r.PushFront('d'); err != nil {
		t.Fatalf("PushFront error: %v", err)
	}
	if c.Size() != 3 || c.At(0) != 'c' {
		t.Errorf("clone mutated: size=%d at0=%c", c.Size(), c.At(0))
	}
	if r.Size() != 4 || r.At(0) != 'd' {
		t.Errorf("original not advanced: size=%d at0=%c", r.Size(), r.At(0))
	}
}
