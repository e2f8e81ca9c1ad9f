// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package puf

import (
	"io"
	"log/slog"
	"runtime"
)

// DefaultCacheCapacity is the number of strings the warm cache holds
// unless WithCacheCapacity says otherwise.
const DefaultCacheCapacity = 1000

// Option configures a Resolver.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	cacheCapacity int
	concurrency   int
	syncWrites    bool
	metrics       *Metrics
}

func defaultOptions() options {
	return options{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		cacheCapacity: DefaultCacheCapacity,
		concurrency:   runtime.GOMAXPROCS(0),
	}
}

// WithLogger sets an optional logger for the resolver and its store.
// If not provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithCacheCapacity sets how many strings Warm can keep in memory.  Values
// below 1 are treated as 1.
func WithCacheCapacity(n int) Option {
	return func(opts *options) {
		opts.cacheCapacity = n
	}
}

// WithConcurrency bounds the number of goroutines Prefetch and ResolveMany
// use.  Values below 1 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(opts *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		opts.concurrency = n
	}
}

// WithSyncWrites makes every append fsync the data file before Register
// returns.  Without it, appends are handed to the OS but not synced.
func WithSyncWrites(sync bool) Option {
	return func(opts *options) {
		opts.syncWrites = sync
	}
}

// WithMetrics records resolver activity in m.
func WithMetrics(m *Metrics) Option {
	return func(opts *options) {
		opts.metrics = m
	}
}
