// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"github.com/intuitivelabs/bytescase"
)

// TrEncT is the type for a transfer coding converted to a flag value.
type TrEncT uint

// Transfer-Encoding flag values, see
// https://www.rfc-editor.org/rfc/rfc7230#section-4 and
// http://www.iana.org/assignments/http-parameters/http-parameters.xhtml#transfer-coding
const (
	TrEncNone     TrEncT = 0
	TrEncChunkedF TrEncT = 1 << iota
	TrEncCompressF
	TrEncDeflateF
	TrEncGzipF
	TrEncIdentityF
	TrEncXCompressF // obsolete
	TrEncXGzipF     // obsolete
	TrEncOtherF     // unknown/other
)

// TrEncResolve maps a coding name to its numeric flag.
func TrEncResolve(n []byte) TrEncT {
	switch len(n) {
	case 7:
		if bytescase.CmpEq(n, []byte("chunked")) {
			return TrEncChunkedF
		} else if bytescase.CmpEq(n, []byte("deflate")) {
			return TrEncDeflateF
		}
	case 8:
		if bytescase.CmpEq(n, []byte("compress")) {
			return TrEncCompressF
		} else if bytescase.CmpEq(n, []byte("identity")) {
			return TrEncIdentityF
		}
	case 4:
		if bytescase.CmpEq(n, []byte("gzip")) {
			return TrEncGzipF
		}
	case 10:
		if bytescase.CmpEq(n, []byte("x-compress")) {
			return TrEncXCompressF
		}
	case 6:
		if bytescase.CmpEq(n, []byte("x-gzip")) {
			return TrEncXGzipF
		}
	}
	return TrEncOtherF
}

// PTrEnc accumulates the parsed Transfer-Encoding values of a message
// (possibly across several Transfer-Encoding fields).
type PTrEnc struct {
	Encodings TrEncT // flags for all codings seen
	N         int    // number of coding values seen
	Last      TrEncT // the final coding (message framing depends on it)
	LastTok   PTok   // the final coding token
}

// Reset re-initializes the parsed values.
func (te *PTrEnc) Reset() {
	*te = PTrEnc{}
}

// Parsed returns true if at least one coding was seen.
func (te *PTrEnc) Parsed() bool {
	return te.N > 0
}

// Chunked returns true if the final transfer coding is "chunked", i.e.
// the body is chunk-framed.
func (te *PTrEnc) Chunked() bool {
	return te.Last == TrEncChunkedF
}

// addTrEnc parses one complete Transfer-Encoding field value and
// accumulates its codings. "chunked" anywhere but the final position of
// the final field is rejected (a chunked-framed prefix cannot be followed
// by further codings, rfc7230 3.3.1).
func (te *PTrEnc) addTrEnc(buf []byte, val Span) ErrorHdr {
	var it TokIter
	var tok PTok
	it.Init(buf, int(val.Offs), val.End(), TokCommaSepF|TokAllowParamsF)
	for {
		tok.Reset()
		switch err := it.Next(&tok); err {
		case ErrOk:
			if te.Last == TrEncChunkedF {
				// a previous coding was chunked and was not last
				return ErrBadTrEnc
			}
			e := TrEncResolve(tok.V.Get(buf))
			te.Encodings |= e
			te.Last = e
			te.LastTok = tok
			te.N++
		case ErrElemEnd:
			return ErrOk
		default:
			return ErrBadTrEnc
		}
	}
}
