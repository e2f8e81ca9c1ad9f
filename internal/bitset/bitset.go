// Copyright 2021 The bit Authors and Caleb Spare. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitset

import (
	"math/bits"
)

// Bitset is an in-memory bitmap that is conceptually similar to []bool, but more memory efficient.
// It is not safe for concurrent mutation.
type Bitset struct {
	bits   []uint64
	length int64
}

func getOffsets(off int64) (sliceOff int64, bitOff uint64) {
	sliceOff = off / 64
	bitOff = uint64(off) % 64
	return
}

// Len returns the number of bits in the set.
func (b *Bitset) Len() int64 {
	return b.length
}

// Set sets the bit at position `off` to 1.
func (b *Bitset) Set(off int64) {
	if off < 0 || off >= b.length {
		return
	}
	sliceOff, bitOff := getOffsets(off)
	b.bits[sliceOff] |= 1 << bitOff
}

// SetRange sets every bit in [start, end), clamped to the bitset's length.
func (b *Bitset) SetRange(start, end int64) {
	if start < 0 {
		start = 0
	}
	if end > b.length {
		end = b.length
	}
	for off := start; off < end; off++ {
		b.Set(off)
	}
}

// Clear sets the bit at position `off` to 0.
func (b *Bitset) Clear(off int64) {
	if off < 0 || off >= b.length {
		return
	}
	sliceOff, bitOff := getOffsets(off)
	b.bits[sliceOff] &= ^(1 << bitOff)
}

// IsSet returns true if the bit at position `off` is 1.
func (b *Bitset) IsSet(off int64) bool {
	if off < 0 || off >= b.length {
		return false
	}
	sliceOff, bitOff := getOffsets(off)
	return b.bits[sliceOff]&(1<<bitOff) != 0
}

// Count returns the number of bits set to 1.
func (b *Bitset) Count() int64 {
	var n int
	for _, u64 := range b.bits {
		n += bits.OnesCount64(u64)
	}
	return int64(n)
}

// Runs calls fn with each maximal run [start, end) of consecutive set bits,
// in increasing order.
func (b *Bitset) Runs(fn func(start, end int64)) {
	start := int64(-1)
	for off := int64(0); off < b.length; off++ {
		sliceOff, bitOff := getOffsets(off)
		if bitOff == 0 && b.bits[sliceOff] == 0 && start < 0 {
			// skip empty words quickly
			off += 63
			continue
		}
		if b.IsSet(off) {
			if start < 0 {
				start = off
			}
		} else if start >= 0 {
			fn(start, off)
			start = -1
		}
	}
	if start >= 0 {
		fn(start, b.length)
	}
}

// New returns a new in-memory bitset where you can set, clear and test for individual bits.
func New(length int64) *Bitset {
	sliceLen := (length + 63) / 64
	return &Bitset{
		bits:   make([]uint64, sliceLen),
		length: length,
	}
}
