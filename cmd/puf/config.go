// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bpowers/puf"
)

// config holds the settings shared by every subcommand.  They can come
// from a YAML file, and flags given on the command line win.
type config struct {
	Path          string `yaml:"path"`
	CacheCapacity int    `yaml:"cache_capacity"`
	Concurrency   int    `yaml:"concurrency"`
	SyncWrites    bool   `yaml:"sync_writes"`
	LogLevel      string `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Path:          "strings.puf",
		CacheCapacity: puf.DefaultCacheCapacity,
		LogLevel:      "warn",
	}
}

var (
	cfg        = defaultConfig()
	configPath string
	verbose    bool
	logger     *slog.Logger
)

// flagNames maps config fields to the flags that override them.
var flagNames = map[string]func(dst, src *config){
	"path":           func(dst, src *config) { dst.Path = src.Path },
	"cache-capacity": func(dst, src *config) { dst.CacheCapacity = src.CacheCapacity },
	"concurrency":    func(dst, src *config) { dst.Concurrency = src.Concurrency },
	"sync":           func(dst, src *config) { dst.SyncWrites = src.SyncWrites },
}

// readConfig decodes a config file on top of base.
func readConfig(path string, base config) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, errors.Wrapf(err, "reading config %s", path)
	}
	c := base
	if err := yaml.Unmarshal(data, &c); err != nil {
		return config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return c, nil
}

// mergeFlags copies the settings of every flag the user set explicitly
// from flagged into file.
func mergeFlags(file, flagged config, fs *pflag.FlagSet) config {
	for name, apply := range flagNames {
		if f := fs.Lookup(name); f != nil && f.Changed {
			apply(&file, &flagged)
		}
	}
	return file
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, errors.Wrapf(err, "log level %q", s)
	}
	return level, nil
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if configPath != "" {
		file, err := readConfig(configPath, defaultConfig())
		if err != nil {
			return err
		}
		cfg = mergeFlags(file, cfg, cmd.Flags())
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (c config) options() []puf.Option {
	return []puf.Option{
		puf.WithLogger(logger),
		puf.WithCacheCapacity(c.CacheCapacity),
		puf.WithConcurrency(c.Concurrency),
		puf.WithSyncWrites(c.SyncWrites),
	}
}

func openResolver(extra ...puf.Option) (*puf.Resolver, error) {
	return puf.Open(cfg.Path, append(cfg.options(), extra...)...)
}
