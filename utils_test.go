// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Test utils

package httpmsg

import (
	"math/rand"

	"github.com/intuitivelabs/bytescase"
)

// unescapeCRLF turns literal `\r` and `\n` escape sequences inside a
// (typically backquoted) test string into the real bytes.
func unescapeCRLF(s string) []byte {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'r':
				b = append(b, '\r')
				i++
				continue
			case 'n':
				b = append(b, '\n')
				i++
				continue
			}
		}
		b = append(b, s[i])
	}
	return b
}

// randomize case in a string
func randCase(s string) string {
	r := make([]byte, len(s))
	for i, b := range []byte(s) {
		switch rand.Intn(3) {
		case 0:
			r[i] = bytescase.ByteToLower(b)
		case 1:
			r[i] = bytescase.ByteToUpper(b)
		default:
			r[i] = b
		}
	}
	return string(r)
}

// feedParser delivers data to p in random sized pieces (at most maxPiece
// bytes each), invoking step after each commit. It stops early if step
// returns false.
func feedParser(p *Parser, data []byte, maxPiece int,
	step func() bool) {
	for len(data) > 0 {
		n := rand.Intn(maxPiece) + 1
		if n > len(data) {
			n = len(data)
		}
		dst := p.Prepare()
		if len(dst) < n {
			n = len(dst)
		}
		copy(dst, data[:n])
		p.Commit(n)
		data = data[n:]
		if !step() {
			return
		}
	}
}

// feedAll delivers the whole of data, filling each prepared region
// completely (several prepare/commit rounds when data exceeds one region).
func feedAll(p *Parser, data []byte) {
	for len(data) > 0 {
		dst := p.Prepare()
		n := copy(dst, data)
		p.Commit(n)
		data = data[n:]
	}
}
