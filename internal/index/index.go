// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package index maps content hashes to the location of their payload in a
// data file.  The index lives only in memory and is rebuilt from the data
// file every time a store is opened.
package index

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/swiss"
	"github.com/dgryski/go-farm"
)

const (
	shardBits = 6
	numShards = 1 << shardBits

	// Choice of 16 is arbitrary.
	initialShardCapacity = 16
)

// Location is where a payload lives in the data file.
type Location struct {
	// Offset is the absolute offset of the payload (not its record).
	Offset uint64
	Length uint32
}

// End returns the offset one past the last payload byte.
func (l Location) End() uint64 {
	return l.Offset + uint64(l.Length)
}

type shard struct {
	mu sync.RWMutex
	m  swiss.Map[uint64, Location]
}

// Index is a concurrent map from content hash to Location.  It is safe
// for concurrent use by multiple goroutines.
type Index struct {
	shards [numShards]shard
	len    atomic.Int64
}

// New returns an empty Index.
func New() *Index {
	idx := &Index{}
	for i := range idx.shards {
		idx.shards[i].m.Init(initialShardCapacity)
	}
	return idx
}

// shardFor picks a shard by re-hashing the id.  Ids handed to Get by
// callers aren't necessarily hashes, so their low bits can't be trusted
// to be well distributed.
func (idx *Index) shardFor(id uint64) *shard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	return &idx.shards[farm.Hash64(buf[:])&(numShards-1)]
}

// Insert records loc for id, replacing any previous location.
func (idx *Index) Insert(id uint64, loc Location) {
	s := idx.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m.Get(id); !ok {
		idx.len.Add(1)
	}
	s.m.Put(id, loc)
}

// InsertIfAbsent records loc for id unless id is already present.  It
// returns the location now associated with id and whether loc was
// inserted.
func (idx *Index) InsertIfAbsent(id uint64, loc Location) (Location, bool) {
	s := idx.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m.Get(id); ok {
		return existing, false
	}
	s.m.Put(id, loc)
	idx.len.Add(1)
	return loc, true
}

// Get returns the location of id, if known.
func (idx *Index) Get(id uint64) (Location, bool) {
	s := idx.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Get(id)
}

// Contains reports whether id is present.
func (idx *Index) Contains(id uint64) bool {
	_, ok := idx.Get(id)
	return ok
}

// Len returns the number of distinct ids.
func (idx *Index) Len() int {
	return int(idx.len.Load())
}

// Range calls fn for every entry until fn returns false.  Entries inserted
// concurrently may or may not be visited; no order is guaranteed.  fn must
// not call back into the Index.
func (idx *Index) Range(fn func(id uint64, loc Location) bool) {
	for i := range idx.shards {
		s := &idx.shards[i]
		cont := true
		s.mu.RLock()
		s.m.All(func(id uint64, loc Location) bool {
			cont = fn(id, loc)
			return cont
		})
		s.mu.RUnlock()
		if !cont {
			return
		}
	}
}
