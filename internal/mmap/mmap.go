// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmap provides reference-counted, read-only memory mappings of
// append-only files.
//
// A Mapping starts out with a single reference owned by whoever called
// Map.  Every additional holder calls Acquire and, when done, Release;
// the final Release unmaps the memory.  Because the files mapped here
// are only ever appended to, a mapping never needs to be invalidated
// when the file grows: it simply covers a prefix of the file.
package mmap

import (
	"os"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

var pageSize = os.Getpagesize()

// PageSize returns the size of a virtual memory page.
func PageSize() int {
	return pageSize
}

// sink keeps the compiler from discarding the loads done in Touch.
var sink atomic.Uint64

// Mapping is a read-only view of the first Len() bytes of a file.
// It is safe for concurrent use by multiple goroutines: its bytes are
// immutable and its only mutable state is an atomic reference count.
type Mapping struct {
	data []byte
	refs atomic.Int64
}

// Map maps the first size bytes of f read-only.  The returned Mapping
// holds one reference.
func Map(f *os.File, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, errors.Newf("mmap: invalid size %d", size)
	}
	b, err := mmap(f, size)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap(%s, %d)", f.Name(), size)
	}
	m := &Mapping{data: b}
	m.refs.Store(1)
	return m, nil
}

// Acquire adds a reference.  It must only be called while the caller
// already knows the mapping is live (holds a reference, or is protected
// by a lock under which some other holder's reference can't be dropped).
func (m *Mapping) Acquire() {
	if m.refs.Add(1) <= 1 {
		panic("mmap: Acquire on a released mapping")
	}
}

// Release drops a reference, unmapping the memory when it was the last.
func (m *Mapping) Release() error {
	n := m.refs.Add(-1)
	switch {
	case n > 0:
		return nil
	case n < 0:
		panic("mmap: Release called more times than Acquire")
	}
	data := m.data
	m.data = nil
	return munmap(data)
}

// Refs reports the current reference count.
func (m *Mapping) Refs() int64 {
	return m.refs.Load()
}

// Len is the number of mapped bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Data returns the mapped bytes.  They must never be written to, and must
// not be used after the caller's reference has been released.
func (m *Mapping) Data() []byte {
	return m.data
}

// Slice returns Data()[off:off+n], or an error if that range isn't mapped.
func (m *Mapping) Slice(off uint64, n uint32) ([]byte, error) {
	end := off + uint64(n)
	if end < off || end > uint64(len(m.data)) {
		return nil, errors.Newf("mmap: range [%d, %d) beyond bounds (%d)", off, end, len(m.data))
	}
	return m.data[off:end:end], nil
}

// Touch reads one byte from every page overlapping [off, off+n), plus the
// final byte, so the OS faults those pages in ahead of real use.
func (m *Mapping) Touch(off, n int) {
	if n <= 0 || off < 0 || off >= len(m.data) {
		return
	}
	end := off + n
	if end > len(m.data) {
		end = len(m.data)
	}
	var sum uint64
	for p := off; p < end; p += pageSize {
		sum += uint64(m.data[p])
	}
	sum += uint64(m.data[end-1])
	sink.Add(sum)
}

// WillNeed hints to the OS that [off, off+n) will be read soon.  It is
// best effort; platforms without the advice return nil.
func (m *Mapping) WillNeed(off, n int) error {
	if n <= 0 || off < 0 || off >= len(m.data) {
		return nil
	}
	start := off &^ (pageSize - 1)
	end := off + n
	if end > len(m.data) {
		end = len(m.data)
	}
	return willNeed(m.data[start:end])
}
