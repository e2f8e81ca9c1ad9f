// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package puf

import (
	"golang.org/x/sync/errgroup"

	"github.com/bpowers/puf/internal/bitset"
	"github.com/bpowers/puf/internal/index"
	"github.com/bpowers/puf/internal/mmap"
)

const (
	// prefetchChunkPages bounds how many contiguous pages one worker
	// touches, so a single huge entry still spreads across workers.
	prefetchChunkPages = 256

	// resolveBatchSize is how many ids one ResolveMany worker handles.
	resolveBatchSize = 64
)

// Prefetch hints that the strings for ids will be resolved soon.  It
// faults their pages into memory by reading one byte per page across a
// pool of goroutines.  Unknown ids are ignored, and skipping Prefetch
// never changes what Resolve returns.
func (r *Resolver) Prefetch(ids []ID) {
	var end uint64
	locs := make([]index.Location, 0, len(ids))
	for _, id := range ids {
		if loc, ok := r.index.Get(uint64(id)); ok && loc.Length > 0 {
			locs = append(locs, loc)
			end = max(end, loc.End())
		}
	}
	if len(locs) == 0 {
		return
	}

	m, err := r.store.MapAtLeast(end)
	if err != nil {
		r.logger.Warn("prefetch: mapping failed", "err", err)
		return
	}
	defer func() {
		_ = m.Release()
	}()

	// several small strings usually share a page; touch each page once
	pageSize := int64(mmap.PageSize())
	pages := bitset.New((int64(m.Len()) + pageSize - 1) / pageSize)
	for _, loc := range locs {
		pages.SetRange(int64(loc.Offset)/pageSize, (int64(loc.End())-1)/pageSize+1)
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	pages.Runs(func(start, end int64) {
		off, n := int(start*pageSize), int((end-start)*pageSize)
		if err := m.WillNeed(off, n); err != nil {
			r.logger.Debug("prefetch: madvise failed", "err", err)
		}
		for s := start; s < end; s += prefetchChunkPages {
			s, e := s, min(s+prefetchChunkPages, end)
			g.Go(func() error {
				m.Touch(int(s*pageSize), int((e-s)*pageSize))
				return nil
			})
		}
	})
	_ = g.Wait()

	r.metrics.prefetched(pages.Count())
}

// ResolveMany resolves ids concurrently, calling fn once per id with its
// Ref, or with nil if the id is unknown.  fn may be called from several
// goroutines at once and in any order.  The Ref is released when fn
// returns, so fn must Clone anything it wants to keep.
func (r *Resolver) ResolveMany(ids []ID, fn func(id ID, ref *Ref)) {
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for start := 0; start < len(ids); start += resolveBatchSize {
		batch := ids[start:min(start+resolveBatchSize, len(ids))]
		g.Go(func() error {
			for _, id := range batch {
				r.resolveInto(id, fn)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Resolver) resolveInto(id ID, fn func(id ID, ref *Ref)) {
	ref, ok := r.Resolve(id)
	if !ok {
		fn(id, nil)
		return
	}
	defer func() {
		if err := ref.Release(); err != nil {
			r.logger.Warn("releasing ref failed", "id", id, "err", err)
		}
	}()
	fn(id, ref)
}
