// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bpowers/puf"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "print statistics about a data file",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	r, err := openResolver()
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()

	writeStats(cmd.OutOrStdout(), cfg.Path, r.Stats())
	return nil
}

func writeStats(w io.Writer, path string, s puf.Stats) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Stat", "Value"})
	tbl.Append([]string{"path", path})
	tbl.Append([]string{"entries", fmt.Sprintf("%d", s.Entries)})
	tbl.Append([]string{"orphans", fmt.Sprintf("%d", s.Orphans)})
	tbl.Append([]string{"file size", fmt.Sprintf("%d", s.FileSize)})
	tbl.Append([]string{"remaps", fmt.Sprintf("%d", s.Remaps)})
	tbl.Append([]string{"cache", fmt.Sprintf("%d/%d", s.CacheLen, s.CacheCapacity)})
	tbl.Render()
}
