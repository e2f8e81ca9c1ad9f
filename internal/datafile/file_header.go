// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const (
	// HeaderSize is the encoded size of a Header: magic + version + entry count.
	HeaderSize = 4 + 4 + 8

	// FormatVersion is the only version this package reads and writes.
	FormatVersion = 1
)

// Magic identifies a puf data file.
var Magic = [4]byte{'P', 'U', 'F', '1'}

// Header is written once, at offset 0, when a data file is created.
type Header struct {
	Magic   [4]byte
	Version uint32
	// EntryCount is advisory: it is written as 0 and never updated, since
	// bytes in the file never change once written.
	EntryCount uint64
}

// NewHeader returns the header for a freshly created data file.
func NewHeader() *Header {
	return &Header{
		Magic:   Magic,
		Version: FormatVersion,
	}
}

// AppendTo appends the encoded header to buf.
func (h *Header) AppendTo(buf []byte) []byte {
	buf = append(buf, h.Magic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = binary.LittleEndian.AppendUint64(buf, h.EntryCount)
	return buf
}

// MarshalTo encodes the header into the first HeaderSize bytes of buf.
func (h *Header) MarshalTo(buf []byte) error {
	if len(buf) < HeaderSize {
		return errors.Newf("buf too short: %d < %d", len(buf), HeaderSize)
	}
	copy(buf[:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.EntryCount)
	return nil
}

// UnmarshalBytes decodes and validates a header from the start of headerBytes.
func (h *Header) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < HeaderSize {
		return CorruptionErrorf("header too short: %d < %d", len(headerBytes), HeaderSize)
	}

	headerBytes = headerBytes[:HeaderSize]

	copy(h.Magic[:], headerBytes[:4])
	if h.Magic != Magic {
		return CorruptionErrorf("bad magic number on data file (%q) -- not a puf data file or corrupted", h.Magic[:])
	}

	h.Version = binary.LittleEndian.Uint32(headerBytes[4:8])
	if h.Version != FormatVersion {
		return errors.Mark(
			errors.Newf("this version of puf can only read v%d data files; found v%d", FormatVersion, h.Version),
			ErrFormat)
	}

	h.EntryCount = binary.LittleEndian.Uint64(headerBytes[8:16])

	return nil
}
