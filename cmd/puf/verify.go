// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bpowers/puf/internal/datafile"
	"github.com/bpowers/puf/internal/mmap"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "check every entry's hash against its content",
	Long: `Scans the data file without building an index and recomputes the
hash of every payload.  Entries whose stored hash doesn't match, or
whose payload isn't UTF-8, are reported.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

type badEntry struct {
	recordOff uint64
	stored    uint64
	computed  uint64
	utf8      bool
}

type verifyResult struct {
	entries    int
	duplicates int
	payload    uint64
	bad        []badEntry
}

func verifyFile(path string) (verifyResult, error) {
	var res verifyResult

	f, err := os.Open(path)
	if err != nil {
		return res, datafile.MarkIO(err, "os.Open")
	}
	defer func() {
		_ = f.Close()
	}()
	fi, err := f.Stat()
	if err != nil {
		return res, datafile.MarkIO(err, "f.Stat")
	}
	if fi.Size() == 0 {
		return res, datafile.CorruptionErrorf("%s is empty", path)
	}

	m, err := mmap.Map(f, int(fi.Size()))
	if err != nil {
		return res, datafile.MarkIO(err, "mmap")
	}
	defer func() {
		_ = m.Release()
	}()

	it, err := datafile.NewIter(m.Data())
	if err != nil {
		return res, err
	}
	seen := make(map[uint64]struct{})
	for item, ok := it.Next(); ok; item, ok = it.Next() {
		res.entries++
		res.payload += uint64(item.Length)
		if _, dup := seen[item.Hash]; dup {
			res.duplicates++
		}
		seen[item.Hash] = struct{}{}

		computed := xxhash.Sum64(item.Payload)
		validUTF8 := utf8.Valid(item.Payload)
		if computed != item.Hash || !validUTF8 {
			res.bad = append(res.bad, badEntry{
				recordOff: item.RecordOffset,
				stored:    item.Hash,
				computed:  computed,
				utf8:      validUTF8,
			})
		}
	}
	return res, it.Err()
}

func runVerify(cmd *cobra.Command, _ []string) error {
	res, err := verifyFile(cfg.Path)
	writeVerifyResult(cmd.OutOrStdout(), res)
	if err != nil {
		return err
	}
	if len(res.bad) > 0 {
		return errors.Newf("%d of %d entries failed verification", len(res.bad), res.entries)
	}
	return nil
}

func writeVerifyResult(w io.Writer, res verifyResult) {
	if len(res.bad) > 0 {
		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Record Offset", "Stored", "Computed", "UTF-8"})
		for _, b := range res.bad {
			tbl.Append([]string{
				fmt.Sprintf("%d", b.recordOff),
				fmt.Sprintf("%016x", b.stored),
				fmt.Sprintf("%016x", b.computed),
				fmt.Sprintf("%t", b.utf8),
			})
		}
		tbl.Render()
	}
	fmt.Fprintf(w, "%d entries, %d payload bytes, %d duplicates, %d bad\n",
		res.entries, res.payload, res.duplicates, len(res.bad))
}
