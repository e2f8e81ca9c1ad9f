// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package puf is a persistent, content-addressed store for immutable UTF-8
// strings.  Register appends a string to a data file once and returns its
// 64-bit content hash; Resolve turns that ID back into the string through
// a zero-copy view of the memory-mapped file.
//
// The index from ID to file location lives in memory only and is rebuilt
// by scanning the data file on Open.
package puf

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"

	"github.com/bpowers/puf/internal/cache"
	"github.com/bpowers/puf/internal/datafile"
	"github.com/bpowers/puf/internal/index"
	"github.com/bpowers/puf/internal/store"
)

// ID identifies a registered string: the XXH64 (seed 0) hash of its bytes.
// Two strings with the same hash are, by definition, the same string.
type ID uint64

// Hash returns the ID that Register assigns to text, without storing it.
func Hash(text string) ID {
	return ID(xxhash.Sum64String(text))
}

// String formats the ID as 16 hex digits.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// ParseID parses the format produced by ID.String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing id %q", s)
	}
	return ID(v), nil
}

// Stats is a point-in-time snapshot of a Resolver.
type Stats struct {
	// Entries is the number of distinct strings in the index.
	Entries int
	// Orphans counts records found on open whose hash was already indexed
	// by an earlier record.  They are unreachable but harmless.
	Orphans int
	// FileSize is the length of the data file in bytes.
	FileSize uint64
	// Remaps counts how many times the data file mapping has grown.
	Remaps        uint64
	CacheLen      int
	CacheCapacity int
}

// Resolver registers and resolves strings in a single data file.  All
// methods are safe for concurrent use by multiple goroutines.
type Resolver struct {
	store       *store.Store
	index       *index.Index
	cache       *cache.Cache
	logger      *slog.Logger
	metrics     *Metrics
	concurrency int

	// regMu serializes registration of content that isn't indexed yet, so
	// concurrent registrations of the same string append it only once.
	regMu sync.Mutex

	orphans int
}

// Open opens the data file at path, creating it (and its parent
// directories) if needed, and rebuilds the index from its contents.
func Open(path string, opts ...Option) (*Resolver, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	m := options.metrics
	s, err := store.Open(path,
		store.WithLogger(options.logger),
		store.WithSyncWrites(options.syncWrites),
		store.WithRemapHook(func(int, int) { m.remapped() }),
		store.WithAppendHook(func(n int, d time.Duration) { m.appended(n, d) }),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "store.Open(%s)", path)
	}

	r := &Resolver{
		store:       s,
		index:       index.New(),
		cache:       cache.New(options.cacheCapacity),
		logger:      options.logger,
		metrics:     m,
		concurrency: options.concurrency,
	}

	if err := r.load(); err != nil {
		_ = s.Close()
		return nil, errors.Wrapf(err, "loading %s", path)
	}

	r.logger.Info("opened puf store",
		"path", path,
		"entries", r.index.Len(),
		"orphans", r.orphans,
		"size", s.Size())

	return r, nil
}

// load writes the header of a new file, or rebuilds the index of an
// existing one.
func (r *Resolver) load() error {
	size := r.store.Size()
	if size == 0 {
		if _, err := r.store.Append(datafile.NewHeader().AppendTo(nil)); err != nil {
			return errors.Wrap(err, "writing header")
		}
		return nil
	}

	m, err := r.store.MapAtLeast(size)
	if err != nil {
		return err
	}
	defer func() {
		_ = m.Release()
	}()

	it, err := datafile.NewIter(m.Data())
	if err != nil {
		return err
	}
	for item, ok := it.Next(); ok; item, ok = it.Next() {
		loc := index.Location{Offset: item.Offset, Length: item.Length}
		if _, inserted := r.index.InsertIfAbsent(item.Hash, loc); !inserted {
			r.orphans++
			r.logger.Warn("skipping duplicate record", "id", ID(item.Hash), "off", item.RecordOffset)
		}
	}
	if err := it.Err(); err != nil {
		return errors.Wrap(err, "rebuilding index")
	}
	return nil
}

// Register stores text, if it isn't stored already, and returns its ID.
// Registering the same text again returns the same ID without touching
// the file.
func (r *Resolver) Register(text string) (ID, error) {
	if uint64(len(text)) > datafile.MaxPayloadLen {
		return 0, errors.Wrapf(ErrTooLarge, "%d bytes", len(text))
	}
	if !utf8.ValidString(text) {
		return 0, ErrInvalidUTF8
	}

	id := xxhash.Sum64String(text)
	if r.index.Contains(id) {
		r.metrics.deduped()
		return ID(id), nil
	}

	r.regMu.Lock()
	defer r.regMu.Unlock()

	// someone may have registered the same text while we waited
	if r.index.Contains(id) {
		r.metrics.deduped()
		return ID(id), nil
	}

	length := uint32(len(text))
	recordOff, err := r.store.AppendWith(func(off uint64) []byte {
		rec := datafile.Record{
			Offset: off + datafile.RecordSize,
			Length: length,
			Hash:   id,
		}
		buf := make([]byte, 0, datafile.RecordSize+len(text))
		buf = rec.AppendTo(buf)
		return append(buf, text...)
	})
	if err != nil {
		return 0, errors.Wrap(err, "appending entry")
	}

	// only visible once the bytes are in the file
	r.index.Insert(id, index.Location{
		Offset: recordOff + datafile.RecordSize,
		Length: length,
	})
	r.metrics.registered()

	return ID(id), nil
}

// Resolve returns a view of the string registered under id.  It returns
// false if id is unknown; that is a normal outcome, not an error.  The
// caller must Release the returned Ref.
func (r *Resolver) Resolve(id ID) (*Ref, bool) {
	if s, ok := r.cache.Get(uint64(id)); ok {
		r.metrics.resolved(sourceCache)
		return newOwnedRef(s), true
	}

	loc, ok := r.index.Get(uint64(id))
	if !ok {
		r.metrics.resolved(sourceMiss)
		return nil, false
	}

	m, err := r.store.MapAtLeast(loc.End())
	if err != nil {
		r.logger.Warn("mapping indexed entry failed", "id", id, "off", loc.Offset, "len", loc.Length, "err", err)
		r.metrics.resolved(sourceMiss)
		return nil, false
	}
	b, err := m.Slice(loc.Offset, loc.Length)
	if err != nil {
		_ = m.Release()
		r.logger.Warn("indexed entry outside mapping", "id", id, "err", err)
		r.metrics.resolved(sourceMiss)
		return nil, false
	}

	r.metrics.resolved(sourceMapped)
	return newMappedRef(m, b), true
}

// ResolveString returns an owned copy of the string registered under id.
func (r *Resolver) ResolveString(id ID) (string, bool) {
	ref, ok := r.Resolve(id)
	if !ok {
		return "", false
	}
	defer func() {
		_ = ref.Release()
	}()
	return ref.Clone(), true
}

// Warm copies the strings for ids into the in-memory cache, so later
// Resolves of them skip the mapping.  Resolve never fills the cache on
// its own.  Warm returns how many ids were known.
func (r *Resolver) Warm(ids ...ID) int {
	n := 0
	for _, id := range ids {
		if _, ok := r.cache.Get(uint64(id)); ok {
			n++
			continue
		}
		s, ok := r.ResolveString(id)
		if !ok {
			continue
		}
		r.cache.Put(uint64(id), s)
		n++
	}
	return n
}

// Stats returns a snapshot of the resolver's state.
func (r *Resolver) Stats() Stats {
	return Stats{
		Entries:       r.index.Len(),
		Orphans:       r.orphans,
		FileSize:      r.store.Size(),
		Remaps:        r.store.Remaps(),
		CacheLen:      r.cache.Len(),
		CacheCapacity: r.cache.Capacity(),
	}
}

// Sync flushes the data file to stable storage.
func (r *Resolver) Sync() error {
	return r.store.Sync()
}

// Close closes the data file.  Refs that haven't been released yet stay
// readable until they are.
func (r *Resolver) Close() error {
	return r.store.Close()
}
