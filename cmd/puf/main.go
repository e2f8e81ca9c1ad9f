// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command puf stores, looks up and inspects strings in a puf data file.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "puf [command] (flags)",
	Short:             "persistent content-addressed string store tool",
	Long:              ``,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		putCmd,
		getCmd,
		statsCmd,
		verifyCmd,
		genCmd,
		benchCmd,
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(
		&configPath, "config", "", "YAML config file (flags override its values)")
	flags.StringVarP(
		&cfg.Path, "path", "p", cfg.Path, "data file to operate on")
	flags.IntVar(
		&cfg.CacheCapacity, "cache-capacity", cfg.CacheCapacity, "number of strings the warm cache holds")
	flags.IntVarP(
		&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "number of concurrent workers")
	flags.BoolVar(
		&cfg.SyncWrites, "sync", cfg.SyncWrites, "fsync the data file after every new string")
	flags.BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
