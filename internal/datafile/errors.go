// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrCorruption marks errors caused by a store file whose contents
	// don't decode: a bad magic number, a truncated record, or a record
	// pointing outside the file.
	ErrCorruption = errors.New("puf: corrupted data file")

	// ErrFormat marks errors caused by a well-formed file written in a
	// format version this package can't read.
	ErrFormat = errors.New("puf: unsupported data file format")

	// ErrIO marks failures reported by the operating system while opening,
	// writing or mapping a store file.
	ErrIO = errors.New("puf: i/o error")
)

// CorruptionErrorf formats an error and marks it as ErrCorruption.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruption)
}

// MarkIO marks err as ErrIO, wrapping it with msg.  A nil err stays nil.
func MarkIO(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrIO)
}
