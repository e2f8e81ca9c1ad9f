// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package puf

import (
	"sync/atomic"

	"github.com/bpowers/puf/internal/mmap"
	"github.com/bpowers/puf/internal/unsafestring"
)

// Ref is a read-only view of a resolved string.  It either points straight
// into the store's memory mapping, or at an owned string from the warm
// cache; callers can't tell the difference.
//
// A Ref is safe to pass between goroutines and to read concurrently: its
// byte range is fixed when it is created, and the only shared mutable
// state is the mapping's atomic reference count.  Call Release exactly
// once when done.  Strings and slices obtained from String and Bytes are
// valid until then; use Clone to keep a copy around longer.
type Ref struct {
	// set for the mapped variant; the Ref holds one reference to m
	m *mmap.Mapping
	b []byte
	// set for the owned variant
	s string

	released atomic.Bool
}

func newMappedRef(m *mmap.Mapping, b []byte) *Ref {
	return &Ref{m: m, b: b}
}

func newOwnedRef(s string) *Ref {
	return &Ref{s: s}
}

// String returns the content without copying.
func (r *Ref) String() string {
	if r.m != nil {
		return unsafestring.FromBytes(r.b)
	}
	return r.s
}

// Bytes returns the content without copying.  The slice must never be
// written to.
func (r *Ref) Bytes() []byte {
	if r.m != nil {
		return r.b
	}
	return unsafestring.ToBytes(r.s)
}

// Len returns the length of the content in bytes.
func (r *Ref) Len() int {
	if r.m != nil {
		return len(r.b)
	}
	return len(r.s)
}

// Clone returns a copy of the content that stays valid after Release.
func (r *Ref) Clone() string {
	if r.m != nil {
		return string(r.b)
	}
	// cached strings are already owned
	return r.s
}

// Release gives up the Ref's hold on the underlying mapping.  Calling it
// more than once is a no-op.
func (r *Ref) Release() error {
	if r.released.Swap(true) {
		return nil
	}
	if r.m == nil {
		return nil
	}
	m := r.m
	r.b = nil
	return m.Release()
}

func (r *Ref) isMapped() bool {
	return r.m != nil
}
