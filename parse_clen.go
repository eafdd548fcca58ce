// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

// PCLen contains the parsed Content-Length value(s) of a message.
// Repeated Content-Length fields are legal only if every value is
// identical (rfc7230 3.3.2).
type PCLen struct {
	UIVal uint64 // parsed length
	SVal  Span   // value text of the first Content-Length field
	N     int    // number of Content-Length fields seen
}

// Reset re-initializes the parsed value.
func (cl *PCLen) Reset() {
	*cl = PCLen{}
}

// Parsed returns true if at least one Content-Length was parsed.
func (cl *PCLen) Parsed() bool {
	return cl.N > 0
}

// parseCLenVal parses a complete Content-Length value: 1*DIGIT with no
// sign, no surrounding whitespace and no overflow. The value bytes are
// already OWS-trimmed by the field parser, so any whitespace left means a
// split value ("5 5") and is rejected too.
func parseCLenVal(v []byte) (uint64, ErrorHdr) {
	if len(v) == 0 {
		return 0, ErrBadCLen
	}
	var n uint64
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, ErrBadCLen
		}
		d := uint64(c - '0')
		if n > (^uint64(0)-d)/10 {
			return 0, ErrBadCLen // overflow
		}
		n = n*10 + d
	}
	return n, ErrOk
}

// addCLen accumulates one Content-Length field value, enforcing the
// repeated-field consistency rule.
func (cl *PCLen) addCLen(buf []byte, val Span) ErrorHdr {
	n, err := parseCLenVal(val.Get(buf))
	if err != ErrOk {
		return err
	}
	if cl.N > 0 && n != cl.UIVal {
		return ErrBadCLen // conflicting values
	}
	if cl.N == 0 {
		cl.UIVal = n
		cl.SVal = val
	}
	cl.N++
	return ErrOk
}
