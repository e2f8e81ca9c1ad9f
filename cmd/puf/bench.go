// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bpowers/puf"
)

const (
	minLatency = 10 * time.Nanosecond
	maxLatency = 10 * time.Second
)

var benchConfig struct {
	count  int
	length int
	seed   int64
	keep   bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "compare puf against an in-memory slice",
	Long: `Generates random alphanumeric strings, registers them in a fresh
data file and in a plain slice, then resolves each one from several
goroutines and reports latency percentiles for both.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVarP(
		&benchConfig.count, "count", "n", 1000, "number of strings")
	benchCmd.Flags().IntVarP(
		&benchConfig.length, "length", "l", 100, "length of each string")
	benchCmd.Flags().Int64Var(
		&benchConfig.seed, "seed", 1, "random seed (0 picks one at random)")
	benchCmd.Flags().BoolVar(
		&benchConfig.keep, "keep", false, "keep the benchmark data file")
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 2)
}

func record(h *hdrhistogram.Histogram, d time.Duration) {
	// out of range values are dropped by the histogram; clamp instead
	_ = h.RecordValue(min(max(d.Nanoseconds(), minLatency.Nanoseconds()), maxLatency.Nanoseconds()))
}

type benchResult struct {
	name    string
	elapsed time.Duration
	hist    *hdrhistogram.Histogram
}

// concurrently runs fn for every index in [0, n) across workers
// goroutines and merges their latency histograms.
func concurrently(name string, n, workers int, fn func(i int) error) (benchResult, error) {
	hists := make([]*hdrhistogram.Histogram, workers)
	var next atomic.Int64
	var g errgroup.Group
	start := time.Now()
	for w := range hists {
		h := newHistogram()
		hists[w] = h
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return nil
				}
				opStart := time.Now()
				if err := fn(i); err != nil {
					return err
				}
				record(h, time.Since(opStart))
			}
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)

	merged := newHistogram()
	for _, h := range hists {
		merged.Merge(h)
	}
	return benchResult{name: name, elapsed: elapsed, hist: merged}, err
}

func runBench(cmd *cobra.Command, _ []string) error {
	workers := cfg.Concurrency
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	inputs := randomStrings(newRand(benchConfig.seed), benchConfig.count, benchConfig.length)

	dir, err := os.MkdirTemp("", "puf-bench")
	if err != nil {
		return err
	}
	if benchConfig.keep {
		defer fmt.Fprintf(cmd.ErrOrStderr(), "data file kept in %s\n", dir)
	} else {
		defer os.RemoveAll(dir)
	}

	reg := prometheus.NewRegistry()
	r, err := puf.Open(filepath.Join(dir, "bench.puf"), append(cfg.options(), puf.WithMetrics(puf.NewMetrics(reg)))...)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()

	var results []benchResult

	// the in-memory baseline: a slice indexed by position
	ram := make([]string, 0, len(inputs))
	res, _ := concurrently("ram register", len(inputs), 1, func(i int) error {
		ram = append(ram, inputs[i])
		return nil
	})
	results = append(results, res)

	var sink atomic.Int64
	res, _ = concurrently("ram resolve", len(ram), workers, func(i int) error {
		sink.Add(int64(len(ram[i])))
		return nil
	})
	results = append(results, res)

	ids := make([]puf.ID, len(inputs))
	res, err = concurrently("puf register", len(inputs), 1, func(i int) error {
		id, err := r.Register(inputs[i])
		ids[i] = id
		return err
	})
	if err != nil {
		return err
	}
	results = append(results, res)

	res, err = concurrently("puf resolve", len(ids), workers, func(i int) error {
		ref, ok := r.Resolve(ids[i])
		if !ok {
			return errors.Newf("id %s missing", ids[i])
		}
		sink.Add(int64(ref.Len()))
		return ref.Release()
	})
	if err != nil {
		return err
	}
	results = append(results, res)

	r.Prefetch(ids)
	res, err = concurrently("puf resolve (prefetched)", len(ids), workers, func(i int) error {
		ref, ok := r.Resolve(ids[i])
		if !ok {
			return errors.Newf("id %s missing", ids[i])
		}
		sink.Add(int64(ref.Len()))
		return ref.Release()
	})
	if err != nil {
		return err
	}
	results = append(results, res)

	start := time.Now()
	var resolved atomic.Int64
	r.ResolveMany(ids, func(_ puf.ID, ref *puf.Ref) {
		if ref != nil {
			resolved.Add(1)
			sink.Add(int64(ref.Len()))
		}
	})
	elapsed := time.Since(start)
	if int(resolved.Load()) != len(ids) {
		return errors.Newf("ResolveMany found %d of %d ids", resolved.Load(), len(ids))
	}
	many := newHistogram()
	record(many, elapsed/time.Duration(max(len(ids), 1)))
	results = append(results, benchResult{name: "puf resolve many (avg)", elapsed: elapsed, hist: many})

	out := cmd.OutOrStdout()
	writeBenchResults(out, len(inputs), results)
	return writeMetrics(out, reg)
}

func writeBenchResults(w io.Writer, n int, results []benchResult) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Op", "ops/sec", "p50(us)", "p95(us)", "p99(us)", "pMax(us)"})
	us := func(v int64) string {
		return fmt.Sprintf("%.2f", float64(v)/1e3)
	}
	for _, res := range results {
		h := res.hist
		tbl.Append([]string{
			res.name,
			fmt.Sprintf("%.0f", float64(n)/res.elapsed.Seconds()),
			us(h.ValueAtQuantile(50)),
			us(h.ValueAtQuantile(95)),
			us(h.ValueAtQuantile(99)),
			us(h.Max()),
		})
	}
	tbl.Render()
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Metric", "Labels", "Value"})
	var rows [][]string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels string
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf("%s=%s", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				rows = append(rows, []string{mf.GetName(), labels, fmt.Sprintf("%.0f", m.GetCounter().GetValue())})
			case m.GetHistogram() != nil:
				rows = append(rows, []string{mf.GetName(), labels, fmt.Sprintf("%d samples", m.GetHistogram().GetSampleCount())})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i][0]+rows[i][1] < rows[j][0]+rows[j][1]
	})
	tbl.AppendBulk(rows)
	tbl.Render()
	return nil
}
