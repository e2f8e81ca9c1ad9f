// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package store owns a puf data file: it serializes appends to the end of
// the file and hands out shared, reference-counted mappings of it that grow
// on demand.
package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/bpowers/puf/internal/datafile"
	"github.com/bpowers/puf/internal/mmap"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	syncWrites bool
	onRemap    func(oldLen, newLen int)
	onAppend   func(n int, d time.Duration)
}

// WithLogger sets an optional logger.  If not provided, no logging output
// will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithSyncWrites makes every append fsync the file before returning.
func WithSyncWrites(sync bool) Option {
	return func(opts *options) {
		opts.syncWrites = sync
	}
}

// WithRemapHook registers fn to be called whenever a larger mapping
// replaces the cached one.
func WithRemapHook(fn func(oldLen, newLen int)) Option {
	return func(opts *options) {
		opts.onRemap = fn
	}
}

// WithAppendHook registers fn to be called after every successful append
// with the number of bytes written and how long the write took.
func WithAppendHook(fn func(n int, d time.Duration)) Option {
	return func(opts *options) {
		opts.onAppend = fn
	}
}

// Store is an append-only file plus a growable read-only mapping of it.
// All methods are safe for concurrent use.
type Store struct {
	path   string
	opts   options
	logger *slog.Logger

	// mu serializes writers; off is the current end of file and is only
	// written with mu held.
	mu  sync.Mutex
	f   *os.File
	off atomic.Uint64

	mapMu  sync.RWMutex
	m      *mmap.Mapping // nil until the file is non-empty and mapped
	remaps atomic.Uint64

	closed atomic.Bool
}

// Open opens the data file at path, creating it and any missing parent
// directories if necessary.  If the file is non-empty its current contents
// are mapped.
func Open(path string, opts ...Option) (*Store, error) {
	var options options
	options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&options)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, datafile.MarkIO(err, "os.MkdirAll")
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, datafile.MarkIO(err, "os.OpenFile")
	}

	stats, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, datafile.MarkIO(err, "f.Stat")
	}

	s := &Store{
		path:   path,
		opts:   options,
		logger: options.logger,
		f:      f,
	}
	s.off.Store(uint64(stats.Size()))

	if stats.Size() > 0 {
		m, err := mmap.Map(f, int(stats.Size()))
		if err != nil {
			_ = f.Close()
			return nil, datafile.MarkIO(err, "initial mapping")
		}
		s.m = m
	}

	return s, nil
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Size returns the number of bytes appended to the file so far.
func (s *Store) Size() uint64 {
	return s.off.Load()
}

// Remaps returns how many times the cached mapping has been replaced.
func (s *Store) Remaps() uint64 {
	return s.remaps.Load()
}

// Append writes b to the end of the file and returns the offset it was
// written at.
func (s *Store) Append(b []byte) (uint64, error) {
	return s.AppendWith(func(uint64) []byte {
		return b
	})
}

// AppendWith calls build with the offset at which its result will be
// written, then writes the result there.  The writer lock is held across
// both, so nothing else can be appended in between.
func (s *Store) AppendWith(build func(off uint64) []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return 0, errors.New("store: append on closed store")
	}

	start := time.Now()
	off := s.off.Load()
	data := build(off)

	n, err := s.f.WriteAt(data, int64(off))
	if err != nil {
		// drop any partial write so the next append starts at a record boundary
		if n > 0 {
			if terr := s.f.Truncate(int64(off)); terr != nil {
				s.off.Store(off + uint64(n))
				s.logger.Warn("truncating partial append failed", "path", s.path, "off", off, "err", terr)
			}
		}
		return 0, datafile.MarkIO(err, "f.WriteAt")
	}
	s.off.Store(off + uint64(n))
	if s.opts.syncWrites {
		if err := s.f.Sync(); err != nil {
			return 0, datafile.MarkIO(err, "f.Sync")
		}
	}

	if s.opts.onAppend != nil {
		s.opts.onAppend(n, time.Since(start))
	}

	return off, nil
}

// MapAtLeast returns a mapping that covers at least requiredLen bytes of
// the file.  The caller owns one reference to it and must Release it.
func (s *Store) MapAtLeast(requiredLen uint64) (*mmap.Mapping, error) {
	// fast path: readers share the cached mapping
	s.mapMu.RLock()
	if m := s.m; m != nil && uint64(m.Len()) >= requiredLen {
		m.Acquire()
		s.mapMu.RUnlock()
		return m, nil
	}
	s.mapMu.RUnlock()

	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	// someone may have remapped while we waited for the lock
	if m := s.m; m != nil && uint64(m.Len()) >= requiredLen {
		m.Acquire()
		return m, nil
	}

	if s.closed.Load() {
		return nil, errors.New("store: map on closed store")
	}

	fileLen := s.off.Load()
	if fileLen < requiredLen {
		return nil, errors.Newf("store: requested %d bytes but file is only %d bytes", requiredLen, fileLen)
	}
	if fileLen == 0 {
		return nil, errors.New("store: can't map an empty file")
	}

	m, err := mmap.Map(s.f, int(fileLen))
	if err != nil {
		return nil, datafile.MarkIO(err, "remap")
	}

	old := s.m
	oldLen := 0
	if old != nil {
		oldLen = old.Len()
	}
	s.m = m
	s.remaps.Add(1)
	s.logger.Debug("remapped data file", "path", s.path, "old_len", oldLen, "new_len", m.Len())
	if s.opts.onRemap != nil {
		s.opts.onRemap(oldLen, m.Len())
	}

	// the old mapping stays valid for anyone still holding a reference
	if old != nil {
		if err := old.Release(); err != nil {
			s.logger.Warn("unmapping old mapping failed", "err", err)
		}
	}

	m.Acquire()
	return m, nil
}

// Sync flushes the file's contents to stable storage.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return datafile.MarkIO(s.f.Sync(), "f.Sync")
}

// Close releases the store's reference to its mapping and closes the file.
// Mappings still referenced elsewhere stay valid until released.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	var err error
	if s.m != nil {
		err = s.m.Release()
		s.m = nil
	}
	if cerr := s.f.Close(); cerr != nil && err == nil {
		err = datafile.MarkIO(cerr, "f.Close")
	}
	return err
}
