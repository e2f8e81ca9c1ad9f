// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const (
	// RecordSize is the encoded size of a Record: offset + length + pad + hash.
	RecordSize = 8 + 4 + 4 + 8

	// MaxPayloadLen is the largest payload a single record can describe.
	MaxPayloadLen = (1 << 32) - 1

	recordLengthOff = 8
	recordPadOff    = 12
	recordHashOff   = 16
)

// Record precedes every payload in a data file.  Offset and Length
// duplicate the payload's location so the file can be scanned without
// any other bookkeeping.
type Record struct {
	// Offset is the absolute file offset of the payload, which is
	// always the record's own offset + RecordSize.
	Offset uint64
	Length uint32
	Hash   uint64
}

// End returns the offset one past the last payload byte.
func (r Record) End() uint64 {
	return r.Offset + uint64(r.Length)
}

// AppendTo appends the encoded record to buf.
func (r *Record) AppendTo(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, r.Offset)
	buf = binary.LittleEndian.AppendUint32(buf, r.Length)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint64(buf, r.Hash)
	return buf
}

// MarshalTo encodes the record into the first RecordSize bytes of buf.
func (r *Record) MarshalTo(buf []byte) error {
	if len(buf) < RecordSize {
		return errors.Newf("buf too short: %d < %d", len(buf), RecordSize)
	}
	binary.LittleEndian.PutUint64(buf[:recordLengthOff], r.Offset)
	binary.LittleEndian.PutUint32(buf[recordLengthOff:recordPadOff], r.Length)
	binary.LittleEndian.PutUint32(buf[recordPadOff:recordHashOff], 0)
	binary.LittleEndian.PutUint64(buf[recordHashOff:RecordSize], r.Hash)
	return nil
}

// UnmarshalBytes decodes a record from the start of b.
func (r *Record) UnmarshalBytes(b []byte) error {
	if len(b) < RecordSize {
		return CorruptionErrorf("record too short: %d < %d", len(b), RecordSize)
	}
	// bounds check elimination
	_ = b[RecordSize-1]

	r.Offset = binary.LittleEndian.Uint64(b[:recordLengthOff])
	r.Length = binary.LittleEndian.Uint32(b[recordLengthOff:recordPadOff])
	r.Hash = binary.LittleEndian.Uint64(b[recordHashOff:RecordSize])
	return nil
}
