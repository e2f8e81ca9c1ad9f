// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents []byte) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "mmap-test.data"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
	})
	_, err = f.Write(contents)
	require.NoError(t, err)
	return f
}

func TestMap_RefCounting(t *testing.T) {
	f := writeTempFile(t, []byte("hello, world"))

	m, err := Map(f, 12)
	require.NoError(t, err)
	require.Equal(t, int64(1), m.Refs())
	require.Equal(t, 12, m.Len())
	require.Equal(t, "hello, world", string(m.Data()))

	m.Acquire()
	require.Equal(t, int64(2), m.Refs())

	require.NoError(t, m.Release())
	// still mapped: one reference is outstanding
	require.Equal(t, "hello", string(m.Data()[:5]))

	require.NoError(t, m.Release())
	assert.Equal(t, int64(0), m.Refs())
	assert.Nil(t, m.Data())

	assert.Panics(t, func() { _ = m.Release() })
	assert.Panics(t, func() { m.Acquire() })
}

func TestMap_Errors(t *testing.T) {
	f := writeTempFile(t, []byte("x"))

	_, err := Map(f, 0)
	assert.Error(t, err)
	_, err = Map(f, -1)
	assert.Error(t, err)
}

func TestMapping_Slice(t *testing.T) {
	f := writeTempFile(t, []byte("0123456789"))
	m, err := Map(f, 10)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, m.Release())
	}()

	b, err := m.Slice(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "234", string(b))
	assert.Equal(t, 3, cap(b))

	b, err = m.Slice(10, 0)
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = m.Slice(8, 3)
	assert.Error(t, err)
	_, err = m.Slice(^uint64(0), 2)
	assert.Error(t, err)
}

func TestMapping_OldMappingSurvivesGrowth(t *testing.T) {
	f := writeTempFile(t, []byte("first"))
	old, err := Map(f, 5)
	require.NoError(t, err)

	_, err = f.Write([]byte(" second"))
	require.NoError(t, err)
	grown, err := Map(f, 12)
	require.NoError(t, err)

	require.Equal(t, "first", string(old.Data()))
	require.Equal(t, "first second", string(grown.Data()))

	require.NoError(t, grown.Release())
	require.Equal(t, "first", string(old.Data()))
	require.NoError(t, old.Release())
}

func TestMapping_TouchAndWillNeed(t *testing.T) {
	contents := make([]byte, 3*PageSize()+17)
	for i := range contents {
		contents[i] = byte(i)
	}
	f := writeTempFile(t, contents)
	m, err := Map(f, len(contents))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, m.Release())
	}()

	before := sink.Load()
	m.Touch(1, len(contents))
	m.Touch(0, 0)
	m.Touch(len(contents), 10)
	assert.NotEqual(t, before, sink.Load())

	assert.NoError(t, m.WillNeed(PageSize()+3, 100))
	assert.NoError(t, m.WillNeed(0, len(contents)*2))
	assert.NoError(t, m.WillNeed(len(contents), 1))
}
