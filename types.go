// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package httpmsg implements incremental HTTP/1.1 message parsing over a
// parser-owned byte buffer: callers commit bytes, the parser reports
// "need more" until the message (or the requested part of it) is complete.
package httpmsg

// OffsT is the type used internally for offsets and lengths inside the
// message buffer.
type OffsT uint32

// Span points at a byte run inside a message buffer as offset + length,
// so buffer relocation never invalidates it.
type Span struct {
	Offs OffsT
	Len  OffsT
}

// MkSpan returns a Span covering [start:end).
func MkSpan(start, end int) Span {
	var s Span
	s.Set(start, end)
	return s
}

// Set points the Span at [start:end).
func (s *Span) Set(start, end int) {
	if end < start {
		panic("httpmsg: invalid span range")
	}
	s.Offs = OffsT(start)
	s.Len = OffsT(end - start)
}

// Reset sets the Span to the empty value.
func (s *Span) Reset() {
	s.Offs = 0
	s.Len = 0
}

// Extend grows the Span to the new end offset.
func (s *Span) Extend(newEnd int) {
	if newEnd < int(s.Offs) {
		panic("httpmsg: invalid span end offset")
	}
	s.Len = OffsT(newEnd) - s.Offs
}

// Empty returns true if the Span has 0 length.
func (s Span) Empty() bool {
	return s.Len == 0
}

// End returns the offset directly after the last byte of the Span.
func (s Span) End() int {
	return int(s.Offs) + int(s.Len)
}

// Get returns the byte slice inside buf corresponding to the Span.
func (s Span) Get(buf []byte) []byte {
	return buf[s.Offs : s.Offs+s.Len]
}
