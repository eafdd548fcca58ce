// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"math/rand"
	"testing"
)

type chExpR struct {
	err  ErrorHdr
	offs int // expected data offset, -1 => len(chHdr)
	size uint64
	ext  string
}

type chTestCase struct {
	chHdr string
	desc  string
	e     chExpR
}

var chunkTests = [...]chTestCase{
	// from https://en.wikipedia.org/wiki/Chunked_transfer_encoding
	{chHdr: "4\r\n", desc: "small chunk",
		e: chExpR{err: 0, offs: -1, size: 4}},
	{chHdr: "E\r\n", desc: "upper hex",
		e: chExpR{err: 0, offs: -1, size: 14}},
	{chHdr: "000e\r\n", desc: "leading zeros",
		e: chExpR{err: 0, offs: -1, size: 14}},
	{chHdr: "ffffffffffffffff\r\n", desc: "max size",
		e: chExpR{err: 0, offs: -1, size: ^uint64(0)}},
	{chHdr: "0\r\n", desc: "last chunk",
		e: chExpR{err: 0, offs: -1, size: 0}},
	{chHdr: "4;name=value\r\n", desc: "extension",
		e: chExpR{err: 0, offs: -1, size: 4, ext: ";name=value"}},
	{chHdr: "4;a;b=\"q v\"\r\n", desc: "multiple extensions",
		e: chExpR{err: 0, offs: -1, size: 4, ext: ";a;b=\"q v\""}},
	{chHdr: "4 ;x\r\n", desc: "OWS before extension",
		e: chExpR{err: ErrBadChunk}},
	{chHdr: "g\r\n", desc: "non hex size",
		e: chExpR{err: ErrBadChunk}},
	{chHdr: " 4\r\n", desc: "leading whitespace",
		e: chExpR{err: ErrBadChunk}},
	{chHdr: "\r\n", desc: "missing size",
		e: chExpR{err: ErrBadChunk}},
	{chHdr: "4\nX", desc: "bare LF after size",
		e: chExpR{err: ErrBadChunk}},
	{chHdr: "fffffffffffffffff\r\n", desc: "size overflow",
		e: chExpR{err: ErrBadChunk}},
	{chHdr: "4;=x\r\n", desc: "extension without name",
		e: chExpR{err: ErrBadChunk}},
}

func testParseChunkHead(t *testing.T, buf []byte, cv *ChunkVal,
	tc *chTestCase) {
	o, err := parseChunkHead(buf, 0, cv)
	if err != tc.e.err {
		t.Errorf("parseChunkHead(%q) = [%d, %d(%q)] error %d(%q) expected"+
			" (%s)", buf, o, err, err, tc.e.err, tc.e.err, tc.desc)
		return
	}
	if tc.e.err != 0 {
		return
	}
	eOffs := tc.e.offs
	if eOffs < 0 {
		eOffs = len(buf)
	}
	if o != eOffs {
		t.Errorf("parseChunkHead(%q): offset %d, %d expected (%s)",
			buf, o, eOffs, tc.desc)
	}
	if cv.Size != tc.e.size {
		t.Errorf("parseChunkHead(%q): size %d, %d expected (%s)",
			buf, cv.Size, tc.e.size, tc.desc)
	}
	if string(cv.Ext.Get(buf)) != tc.e.ext {
		t.Errorf("parseChunkHead(%q): ext %q, %q expected (%s)",
			buf, cv.Ext.Get(buf), tc.e.ext, tc.desc)
	}
}

func TestParseChunkHead(t *testing.T) {
	for _, c := range chunkTests {
		var cv ChunkVal
		testParseChunkHead(t, []byte(c.chHdr), &cv, &c)
	}
}

// deliver each chunk header in random pieces; resumed parsing must end
// with the same result
func TestParseChunkHeadPieces(t *testing.T) {
	const rounds = 10
	for _, c := range chunkTests {
		for k := 0; k < rounds; k++ {
			full := []byte(c.chHdr)
			var cv ChunkVal
			o := 0
			var err ErrorHdr
			end := rand.Intn(len(full))
			for {
				o, err = parseChunkHead(full[:end], o, &cv)
				if err != ErrMoreBytes {
					break
				}
				if end >= len(full) {
					t.Fatalf("parseChunkHead(%q): ErrMoreBytes with the"+
						" whole header (%s)", full, c.desc)
				}
				end += rand.Intn(len(full)-end) + 1
			}
			if err != c.e.err {
				t.Errorf("piecewise parseChunkHead(%q) error %d(%q),"+
					" %d(%q) expected (%s)", full, err, err, c.e.err,
					c.e.err, c.desc)
				continue
			}
			if c.e.err == 0 {
				if o != len(full) || cv.Size != c.e.size {
					t.Errorf("piecewise parseChunkHead(%q) = [%d, size %d],"+
						" [%d, size %d] expected (%s)", full, o, cv.Size,
						len(full), c.e.size, c.desc)
				}
			}
		}
	}
}
