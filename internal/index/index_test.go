// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Basics(t *testing.T) {
	t.Parallel()

	idx := New()
	require.Equal(t, 0, idx.Len())

	_, ok := idx.Get(42)
	require.False(t, ok)
	require.False(t, idx.Contains(42))

	idx.Insert(42, Location{Offset: 40, Length: 5})
	loc, ok := idx.Get(42)
	require.True(t, ok)
	assert.Equal(t, Location{Offset: 40, Length: 5}, loc)
	assert.Equal(t, uint64(45), loc.End())
	assert.True(t, idx.Contains(42))
	assert.Equal(t, 1, idx.Len())

	// overwrite doesn't change the count
	idx.Insert(42, Location{Offset: 100, Length: 1})
	loc, _ = idx.Get(42)
	assert.Equal(t, uint64(100), loc.Offset)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_InsertIfAbsent(t *testing.T) {
	t.Parallel()

	idx := New()
	first := Location{Offset: 40, Length: 5}
	got, inserted := idx.InsertIfAbsent(7, first)
	require.True(t, inserted)
	require.Equal(t, first, got)

	got, inserted = idx.InsertIfAbsent(7, Location{Offset: 99, Length: 5})
	require.False(t, inserted)
	require.Equal(t, first, got)
	require.Equal(t, 1, idx.Len())
}

func TestIndex_Range(t *testing.T) {
	t.Parallel()

	idx := New()
	for i := uint64(0); i < 1000; i++ {
		idx.Insert(i, Location{Offset: i * 10, Length: uint32(i)})
	}

	seen := make(map[uint64]bool)
	idx.Range(func(id uint64, loc Location) bool {
		require.Equal(t, id*10, loc.Offset)
		seen[id] = true
		return true
	})
	assert.Len(t, seen, 1000)

	n := 0
	idx.Range(func(uint64, Location) bool {
		n++
		return n < 3
	})
	assert.Equal(t, 3, n)
}

func TestIndex_SpreadsSmallIds(t *testing.T) {
	t.Parallel()

	idx := New()
	used := make(map[*shard]bool)
	for i := uint64(0); i < numShards*4; i++ {
		used[idx.shardFor(i)] = true
	}
	// sequential ids shouldn't pile up in a handful of shards
	assert.Greater(t, len(used), numShards/2)
}

func TestIndex_Concurrent(t *testing.T) {
	t.Parallel()

	idx := New()
	const (
		goroutines = 16
		perG       = 1000
	)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				// every goroutine races on the same ids
				id := uint64(i)
				idx.InsertIfAbsent(id, Location{Offset: uint64(g), Length: 1})
				_, ok := idx.Get(id)
				assert.True(t, ok)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, perG, idx.Len())
}
