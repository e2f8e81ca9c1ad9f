// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFile lays out payloads the way the store appends them.
func buildFile(payloads ...string) []byte {
	buf := NewHeader().AppendTo(nil)
	for i, p := range payloads {
		r := Record{
			Offset: uint64(len(buf)) + RecordSize,
			Length: uint32(len(p)),
			Hash:   uint64(i + 1),
		}
		buf = r.AppendTo(buf)
		buf = append(buf, p...)
	}
	return buf
}

func TestIter_RoundTrip(t *testing.T) {
	var payloads []string
	for i := 0; i < 1000; i++ {
		payloads = append(payloads, strconv.Itoa(i))
	}
	payloads = append(payloads, "")
	data := buildFile(payloads...)

	it, err := NewIter(data)
	require.NoError(t, err)
	assert.Equal(t, *NewHeader(), it.Header())

	i := 0
	for item, ok := it.Next(); ok; item, ok = it.Next() {
		require.Equal(t, payloads[i], string(item.Payload))
		require.Equal(t, uint64(i+1), item.Hash)
		require.Equal(t, item.RecordOffset+RecordSize, item.Offset)
		i++
	}
	require.NoError(t, it.Err())
	require.Equal(t, len(payloads), i)
	assert.Equal(t, uint64(len(data)), it.Offset())

	// iteration stays finished
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestIter_HeaderOnly(t *testing.T) {
	it, err := NewIter(NewHeader().AppendTo(nil))
	require.NoError(t, err)
	_, ok := it.Next()
	assert.False(t, ok)
	assert.NoError(t, it.Err())
}

func TestIter_Errors(t *testing.T) {
	_, err := NewIter(nil)
	assert.True(t, errors.Is(err, ErrCorruption))

	_, err = NewIter([]byte("NOPE0000000000000000"))
	assert.True(t, errors.Is(err, ErrCorruption))

	good := buildFile("hello", "world")

	for name, data := range map[string][]byte{
		"partial record":  good[:HeaderSize+RecordSize-1],
		"partial payload": good[:len(good)-1],
		"trailing bytes":  append(append([]byte{}, good...), 1, 2, 3),
	} {
		t.Run(name, func(t *testing.T) {
			it, err := NewIter(data)
			require.NoError(t, err)
			for _, ok := it.Next(); ok; _, ok = it.Next() {
			}
			assert.True(t, errors.Is(it.Err(), ErrCorruption), "%v", it.Err())
		})
	}

	t.Run("misplaced payload offset", func(t *testing.T) {
		data := append([]byte{}, good...)
		r := Record{Offset: 7, Length: 5, Hash: 1}
		require.NoError(t, r.MarshalTo(data[HeaderSize:]))
		it, err := NewIter(data)
		require.NoError(t, err)
		_, ok := it.Next()
		assert.False(t, ok)
		assert.True(t, errors.Is(it.Err(), ErrCorruption))
	})
}
