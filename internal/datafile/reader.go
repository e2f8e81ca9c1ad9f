// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

// IterItem is a single record yielded by Iter, together with its position.
type IterItem struct {
	Record
	// RecordOffset is the file offset of the record itself; the payload
	// starts RecordSize bytes later.
	RecordOffset uint64
	// Payload aliases the bytes Iter was created over.
	Payload []byte
}

// Iter walks the (record, payload) pairs of a data file from just after
// the header to the end of data.  It is not safe for concurrent use.
type Iter struct {
	h   Header
	m   []byte
	off uint64
	err error
}

// NewIter validates the header at the start of data and returns an
// iterator positioned at the first record.
func NewIter(data []byte) (*Iter, error) {
	it := &Iter{m: data, off: HeaderSize}
	if err := it.h.UnmarshalBytes(data); err != nil {
		return nil, err
	}
	return it, nil
}

// Header returns the decoded file header.
func (i *Iter) Header() Header {
	return i.h
}

// Next returns the next record.  It returns false at the end of data or on
// corruption; check Err to tell the two apart.
func (i *Iter) Next() (IterItem, bool) {
	if i.err != nil {
		return IterItem{}, false
	}
	mLen := uint64(len(i.m))
	if i.off == mLen {
		return IterItem{}, false
	}
	if i.off+RecordSize > mLen {
		i.err = CorruptionErrorf("truncated record at off %d (file length %d)", i.off, mLen)
		return IterItem{}, false
	}

	var r Record
	if err := r.UnmarshalBytes(i.m[i.off : i.off+RecordSize]); err != nil {
		i.err = err
		return IterItem{}, false
	}
	if r.Offset != i.off+RecordSize {
		i.err = CorruptionErrorf("record at off %d claims payload offset %d (expected %d)", i.off, r.Offset, i.off+RecordSize)
		return IterItem{}, false
	}
	if r.End() > mLen {
		i.err = CorruptionErrorf("off %d + length %d beyond bounds (%d)", r.Offset, r.Length, mLen)
		return IterItem{}, false
	}

	item := IterItem{
		Record:       r,
		RecordOffset: i.off,
		Payload:      i.m[r.Offset:r.End()],
	}
	i.off = r.End()

	return item, true
}

// Offset returns the offset of the next record to be read.
func (i *Iter) Offset() uint64 {
	return i.off
}

// Err returns the corruption error that stopped iteration, if any.
func (i *Iter) Err() error {
	return i.err
}
