// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package store

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/puf/internal/datafile"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "dir", "test.puf"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestOpen_CreatesParents(t *testing.T) {
	s := openTestStore(t)
	_, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), s.Size())

	// nothing to map yet
	_, err = s.MapAtLeast(0)
	assert.Error(t, err)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// a regular file where a parent directory should be
	_, err := Open(filepath.Join(blocker, "sub", "test.puf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, datafile.ErrIO))
}

func TestOpen_MapsExistingContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.puf")
	require.NoError(t, os.WriteFile(path, []byte("some bytes"), 0644))

	s, err := Open(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, s.Close())
	}()

	assert.Equal(t, uint64(10), s.Size())
	m, err := s.MapAtLeast(10)
	require.NoError(t, err)
	assert.Equal(t, "some bytes", string(m.Data()))
	require.NoError(t, m.Release())
	// served from the initial mapping
	assert.Equal(t, uint64(0), s.Remaps())
}

func TestAppend_Offsets(t *testing.T) {
	var appended []int
	s := openTestStore(t, WithAppendHook(func(n int, _ time.Duration) {
		appended = append(appended, n)
	}))

	off, err := s.Append([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), off)

	off, err = s.Append([]byte("defg"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), off)

	off, err = s.AppendWith(func(off uint64) []byte {
		return []byte(strconv.FormatUint(off, 10))
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), off)
	assert.Equal(t, uint64(8), s.Size())
	assert.Equal(t, []int{3, 4, 1}, appended)

	contents, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "abcdefg7", string(contents))
}

func TestAppend_ConcurrentWritersDontInterleave(t *testing.T) {
	s := openTestStore(t, WithSyncWrites(true))

	const (
		writers = 8
		perW    = 50
	)
	var wg sync.WaitGroup
	var mu sync.Mutex
	offsets := make(map[uint64]string)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perW; i++ {
				payload := "w" + strconv.Itoa(w) + "-" + strconv.Itoa(i) + ";"
				off, err := s.AppendWith(func(uint64) []byte { return []byte(payload) })
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				offsets[off] = payload
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	require.Len(t, offsets, writers*perW)
	m, err := s.MapAtLeast(s.Size())
	require.NoError(t, err)
	defer func() {
		require.NoError(t, m.Release())
	}()
	for off, payload := range offsets {
		got := string(m.Data()[off : off+uint64(len(payload))])
		require.Equal(t, payload, got)
	}
}

func TestMapAtLeast_Growth(t *testing.T) {
	var remaps [][2]int
	s := openTestStore(t, WithRemapHook(func(oldLen, newLen int) {
		remaps = append(remaps, [2]int{oldLen, newLen})
	}))

	_, err := s.Append([]byte("first"))
	require.NoError(t, err)

	first, err := s.MapAtLeast(5)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Len())
	// held by the store and by us
	assert.Equal(t, int64(2), first.Refs())

	// already covered: no remap, same mapping
	again, err := s.MapAtLeast(3)
	require.NoError(t, err)
	assert.Same(t, first, again)
	require.NoError(t, again.Release())

	_, err = s.Append([]byte(" second"))
	require.NoError(t, err)

	second, err := s.MapAtLeast(12)
	require.NoError(t, err)
	assert.Equal(t, 12, second.Len())
	assert.NotSame(t, first, second)
	assert.Equal(t, uint64(2), s.Remaps())
	assert.Equal(t, [][2]int{{0, 5}, {5, 12}}, remaps)

	// the store dropped its reference to the old mapping, but ours keeps it alive
	assert.Equal(t, int64(1), first.Refs())
	assert.Equal(t, "first", string(first.Data()))
	require.NoError(t, first.Release())

	assert.Equal(t, "first second", string(second.Data()))
	require.NoError(t, second.Release())

	// beyond the end of the file
	_, err = s.MapAtLeast(13)
	assert.Error(t, err)
}

func TestMapAtLeast_ConcurrentReaders(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Append(make([]byte, 64))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i == 0 && j%10 == 0 {
					_, err := s.Append([]byte{byte(j)})
					assert.NoError(t, err)
				}
				m, err := s.MapAtLeast(s.Size())
				if !assert.NoError(t, err) {
					return
				}
				assert.GreaterOrEqual(t, m.Len(), 64)
				assert.NoError(t, m.Release())
			}
		}(i)
	}
	wg.Wait()
}

func TestClose(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Append([]byte("data"))
	require.NoError(t, err)
	m, err := s.MapAtLeast(4)
	require.NoError(t, err)
	require.NoError(t, s.Sync())

	require.NoError(t, s.Close())
	// multiple closes should be fine
	require.NoError(t, s.Close())

	// outstanding mappings outlive the store
	assert.Equal(t, "data", string(m.Data()))
	require.NoError(t, m.Release())

	_, err = s.Append([]byte("more"))
	assert.Error(t, err)
	_, err = s.MapAtLeast(1)
	assert.Error(t, err)
}
