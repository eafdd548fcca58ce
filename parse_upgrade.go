// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"github.com/intuitivelabs/bytescase"
)

// UpgProtoT is the type for an upgrade protocol converted to a numeric
// flag.
type UpgProtoT uint

// Upgrade protocol flag values, see
// https://www.iana.org/assignments/http-upgrade-tokens/http-upgrade-tokens.xhtml
const (
	UProtoNone   UpgProtoT = 0
	UProtoWSockF UpgProtoT = 1 << iota
	UProtoHTTP2F
	UProtoOtherF // unknown/other
)

// UpgProtoResolve maps a protocol name to its numeric flag.
func UpgProtoResolve(n []byte) UpgProtoT {
	if len(n) == 9 && bytescase.CmpEq(n, []byte("websocket")) {
		return UProtoWSockF
	} else if len(n) == 3 && bytescase.CmpEq(n, []byte("h2c")) {
		return UProtoHTTP2F
	} else if len(n) == 8 && bytescase.CmpEq(n, []byte("http/2.0")) {
		return UProtoHTTP2F
	}
	return UProtoOtherF
}

// PUpgrade accumulates the parsed Upgrade header values of a message.
// Protocol tokens may carry a "/version" suffix (e.g. "HTTP/2.0",
// "irc/6.9"); the suffix is preserved in First/Last.
type PUpgrade struct {
	Protos UpgProtoT // flags for all protocols seen
	N      int       // number of protocol values seen
	First  PTok      // first protocol token
	Last   PTok      // last protocol token
}

// Reset re-initializes the parsed values.
func (u *PUpgrade) Reset() {
	*u = PUpgrade{}
}

// Parsed returns true if at least one protocol was seen.
func (u *PUpgrade) Parsed() bool {
	return u.N > 0
}

// addUpgrade parses one complete Upgrade field value: a comma separated
// list of protocol[/version] tokens.
func (u *PUpgrade) addUpgrade(buf []byte, val Span) ErrorHdr {
	var it TokIter
	var tok PTok
	it.Init(buf, int(val.Offs), val.End(), TokCommaSepF|TokAllowSlashF)
	for {
		tok.Reset()
		switch err := it.Next(&tok); err {
		case ErrOk:
			// resolve on the full token: registered names may contain
			// the version part (e.g. "HTTP/2.0")
			p := UpgProtoResolve(tok.V.Get(buf))
			if p == UProtoOtherF && tok.SepOffs != 0 {
				p = UpgProtoResolve(tok.Name().Get(buf))
			}
			u.Protos |= p
			if u.N == 0 {
				u.First = tok
			}
			u.Last = tok
			u.N++
		case ErrElemEnd:
			return ErrOk
		default:
			return ErrBadValue
		}
	}
}
