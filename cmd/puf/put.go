// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/bpowers/puf"
)

var putCmd = &cobra.Command{
	Use:   "put [text...]",
	Short: "register strings and print their ids",
	Long: `Registers each argument, or each line of standard input if no
arguments are given, and prints one id per string.`,
	RunE: runPut,
}

func runPut(cmd *cobra.Command, args []string) error {
	r, err := openResolver()
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	if len(args) > 0 {
		for _, text := range args {
			if err := putOne(r, out, text); err != nil {
				return err
			}
		}
	} else if err := putLines(r, out, os.Stdin); err != nil {
		return err
	}
	return r.Sync()
}

func putLines(r *puf.Resolver, out io.Writer, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<30)
	for scanner.Scan() {
		if err := putOne(r, out, scanner.Text()); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "reading stdin")
}

func putOne(r *puf.Resolver, out io.Writer, text string) error {
	id, err := r.Register(text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, id)
	return err
}
