// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package datafile describes the on-disk layout of a puf store: an
// append-only log of UTF-8 payloads, each preceded by a fixed-size record.
//
// A datafile looks like:
//
//	┌───────────────────┐
//	│ file header       │
//	├───────────────────┤
//	│ record            │
//	│ payload           │
//	├───────────────────┤
//	│ record            │
//	│ payload           │
//	│ ...               │
//	└───────────────────┘
//
// The 16-byte header is:
//
//	 0    1    2    3    4    5    6    7
//	+----+----+----+----+----+----+----+----+
//	| 'P'  'U'  'F'  '1'| version           |
//	+----+----+----+----+----+----+----+----+
//	| entry count (advisory)                |
//	+----+----+----+----+----+----+----+----+
//
// and each 24-byte record is:
//
//	 0    1    2    3    4    5    6    7
//	+----+----+----+----+----+----+----+----+
//	| payload offset                        |
//	+----+----+----+----+----+----+----+----+
//	| payload length    | pad (zero)        |
//	+----+----+----+----+----+----+----+----+
//	| content hash                          |
//	+----+----+----+----+----+----+----+----+
//
// All integers are little-endian.  Records carry no checksum: payload
// corruption is not detected here.  Bytes are never rewritten once they
// have been appended, which is what lets readers hold on to old mappings
// while the file keeps growing.
package datafile
