// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/bpowers/puf"
)

var getCmd = &cobra.Command{
	Use:   "get <id>...",
	Short: "print the strings registered under ids",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ids := make([]puf.ID, 0, len(args))
	for _, arg := range args {
		id, err := puf.ParseID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	r, err := openResolver()
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()

	r.Prefetch(ids)

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	var missing int
	for _, id := range ids {
		s, ok := r.ResolveString(id)
		if !ok {
			missing++
			logger.Warn("id not found", "id", id)
			continue
		}
		if _, err := fmt.Fprintln(out, s); err != nil {
			return err
		}
	}
	if missing > 0 {
		return errors.Newf("%d of %d ids not found", missing, len(ids))
	}
	return nil
}
