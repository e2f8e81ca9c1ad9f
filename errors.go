// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package puf

import (
	"github.com/cockroachdb/errors"

	"github.com/bpowers/puf/internal/datafile"
)

var (
	// ErrCorruption marks errors from opening a data file whose contents
	// don't decode: bad magic, truncated or misplaced records.
	ErrCorruption = datafile.ErrCorruption

	// ErrFormat marks errors from opening a data file written in an
	// unsupported format version.
	ErrFormat = datafile.ErrFormat

	// ErrIO marks failures reported by the operating system.
	ErrIO = datafile.ErrIO

	// ErrInvalidUTF8 is returned by Register for text that isn't UTF-8.
	ErrInvalidUTF8 = errors.New("puf: text is not valid UTF-8")

	// ErrTooLarge is returned by Register for text longer than a record
	// can describe.
	ErrTooLarge = errors.New("puf: text too large")
)

// IsCorruptionError reports whether err was caused by a corrupted data file.
func IsCorruptionError(err error) bool {
	return errors.Is(err, ErrCorruption)
}

// IsFormatError reports whether err was caused by an unsupported data file version.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsIOError reports whether err was caused by an operating system failure.
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO)
}
