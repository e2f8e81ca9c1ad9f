// Copyright 2021 The bit Authors and Caleb Spare. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitset(t *testing.T) {
	b := New(128)

	require.Equal(t, 2, len(b.bits))
	require.Equal(t, int64(128), b.Len())

	// should do nothing
	b.Set(132)
	b.Set(-1)

	zero := []uint64{0, 0}
	require.Equal(t, zero, b.bits)

	require.False(t, b.IsSet(7))
	b.Set(7)
	require.True(t, b.IsSet(7))
	b.Set(8)
	require.True(t, b.IsSet(8))
	require.Equal(t, int64(2), b.Count())
	b.Clear(7)
	require.False(t, b.IsSet(7))
	require.True(t, b.IsSet(8))
	b.Clear(8)
	require.Equal(t, zero, b.bits)

	for i := int64(0); i < 128; i++ {
		b.Set(i)
	}

	full := []uint64{^uint64(0), ^uint64(0)}
	require.Equal(t, full, b.bits)
	require.Equal(t, int64(128), b.Count())

	// should do nothing
	b.Clear(137)
	require.Equal(t, full, b.bits)
}

type run struct{ start, end int64 }

func collectRuns(b *Bitset) []run {
	var runs []run
	b.Runs(func(start, end int64) {
		runs = append(runs, run{start, end})
	})
	return runs
}

func TestBitset_Runs(t *testing.T) {
	b := New(200)
	require.Empty(t, collectRuns(b))

	b.SetRange(3, 6)
	b.SetRange(5, 9)
	b.Set(63)
	b.Set(64)
	b.SetRange(190, 500)

	require.Equal(t, []run{{3, 9}, {63, 65}, {190, 200}}, collectRuns(b))
	require.Equal(t, int64(6+2+10), b.Count())

	b.SetRange(-10, 2)
	require.Equal(t, []run{{0, 2}, {3, 9}, {63, 65}, {190, 200}}, collectRuns(b))
}
