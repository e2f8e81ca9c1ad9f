// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"

	"github.com/spf13/cobra"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var genConfig struct {
	count  int
	length int
	seed   int64
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "print random alphanumeric strings, one per line",
	Long: `Prints random strings suitable for piping into "puf put" or for
building benchmark inputs.`,
	Args: cobra.NoArgs,
	RunE: runGen,
}

func init() {
	genCmd.Flags().IntVarP(
		&genConfig.count, "count", "n", 1000, "number of strings to generate")
	genCmd.Flags().IntVarP(
		&genConfig.length, "length", "l", 100, "length of each string")
	genCmd.Flags().Int64Var(
		&genConfig.seed, "seed", 0, "random seed (0 picks one at random)")
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		var seedBytes [8]byte
		_, _ = crand.Read(seedBytes[:])
		seed = int64(binary.LittleEndian.Uint64(seedBytes[:]))
	}
	return rand.New(rand.NewSource(seed))
}

// randomStrings returns n alphanumeric strings of the given length.
func randomStrings(rng *rand.Rand, n, length int) []string {
	out := make([]string, n)
	buf := make([]byte, length)
	for i := range out {
		for j := range buf {
			buf[j] = alphanumeric[rng.Intn(len(alphanumeric))]
		}
		out[i] = string(buf)
	}
	return out
}

func runGen(cmd *cobra.Command, _ []string) error {
	rng := newRand(genConfig.seed)
	out := bufio.NewWriter(cmd.OutOrStdout())
	for _, s := range randomStrings(rng, genConfig.count, genConfig.length) {
		if _, err := out.WriteString(s); err != nil {
			return err
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
	}
	return out.Flush()
}
