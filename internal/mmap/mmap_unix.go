// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

package mmap

import (
	"os"
	"syscall"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

func mmap(f *os.File, size int) ([]byte, error) {
	b, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	// lookups are by content hash, so access is random
	if err := unix.Madvise(b, unix.MADV_RANDOM); err != nil && err != syscall.ENOSYS {
		_ = unix.Munmap(b)
		return nil, errors.Wrap(err, "madvise(MADV_RANDOM)")
	}

	return b, nil
}

func munmap(b []byte) error {
	return unix.Munmap(b)
}

func willNeed(b []byte) error {
	if err := unix.Madvise(b, unix.MADV_WILLNEED); err != nil && err != syscall.ENOSYS {
		return errors.Wrap(err, "madvise(MADV_WILLNEED)")
	}
	return nil
}
