// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"github.com/intuitivelabs/bytescase"
)

// ConnT is the type for Connection option tokens converted to flag
// values.
type ConnT uint

// Connection option flags.
const (
	ConnNone   ConnT = 0
	ConnCloseF ConnT = 1 << iota
	ConnKeepAliveF
	ConnUpgradeF
	ConnOtherF // unknown/other option
)

// ConnResolve maps a Connection option token to its numeric flag.
func ConnResolve(n []byte) ConnT {
	switch len(n) {
	case 5:
		if bytescase.CmpEq(n, []byte("close")) {
			return ConnCloseF
		}
	case 7:
		if bytescase.CmpEq(n, []byte("upgrade")) {
			return ConnUpgradeF
		}
	case 10:
		if bytescase.CmpEq(n, []byte("keep-alive")) {
			return ConnKeepAliveF
		}
	}
	return ConnOtherF
}

// PConn accumulates Connection / Proxy-Connection option tokens.
type PConn struct {
	Opts ConnT // flags for all options seen
	N    int   // number of option tokens seen
}

// Reset re-initializes the parsed values.
func (c *PConn) Reset() {
	*c = PConn{}
}

// addConn parses one complete Connection (or Proxy-Connection) field
// value: a #token list, iterated with the TokenList grammar rules.
func (c *PConn) addConn(buf []byte, val Span) ErrorHdr {
	s, e := int(val.Offs), val.End()
	tok, next, err := nextListTok(buf, s, e)
	for err == ErrOk {
		c.Opts |= ConnResolve(tok.Get(buf))
		c.N++
		// only OWS and ',' may separate list tokens
		i := skipWS(buf, next)
		if i < e && buf[i] != ',' {
			return ErrBadValue
		}
		tok, next, err = nextListTok(buf, i, e)
	}
	if err != ErrElemEnd {
		return ErrBadValue
	}
	return ErrOk
}

// KeepAlive computes the connection disposition: an explicit "close"
// wins, then an explicit "keep-alive", then the HTTP version default
// (1.1 persistent, 1.0 not).
func (c *PConn) KeepAlive(minor uint8) bool {
	if c.Opts&ConnCloseF != 0 {
		return false
	}
	if c.Opts&ConnKeepAliveF != 0 {
		return true
	}
	return minor >= 1
}
