// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package httpmsg

// Token list scanning over complete header values. By the time per-field
// semantics run the whole value is materialized in the message buffer, so
// unlike the line-level parsers these scanners never report ErrMoreBytes.
// Generic token format: token ["/" suffix] *( ";" param [ "=" val ] )

// PTok contains one parsed token of a list value.
type PTok struct {
	V       Span  // complete token (name or name/suffix)
	SepOffs OffsT // offset of the '/' separator inside V, or 0
	Params  Span  // raw params region (";p=v;q" text), empty if none
}

// Reset re-initializes the parsed token.
func (pt *PTok) Reset() {
	*pt = PTok{}
}

// Name returns the name part of the token (e.g. "websocket" for
// "websocket/13").
func (pt *PTok) Name() Span {
	if pt.SepOffs != 0 {
		return MkSpan(int(pt.V.Offs), int(pt.SepOffs))
	}
	return pt.V
}

// Suffix returns the sub-name part of the token (e.g. "13" for
// "websocket/13"), empty if there is none.
func (pt *PTok) Suffix() Span {
	if pt.SepOffs != 0 {
		return MkSpan(int(pt.SepOffs)+1, pt.V.End())
	}
	return Span{}
}

// token scanning flags
type TokFlags uint

const (
	TokNoneF        TokFlags = 0
	TokCommaSepF    TokFlags = 1 << iota // comma separated token list
	TokAllowSlashF                       // allow one '/' inside the token
	TokAllowParamsF                      // allow ";param[=val]" suffixes
)

// TokIter iterates over the tokens of a complete list value.
type TokIter struct {
	buf   []byte
	pos   int
	end   int
	flags TokFlags
}

// Init prepares the iterator for the value region [start:end) of buf.
func (it *TokIter) Init(buf []byte, start, end int, flags TokFlags) {
	it.buf = buf
	it.pos = start
	it.end = end
	it.flags = flags
}

// Next parses the next token of the list into ptok. It returns ErrOk when
// a token was parsed, ErrElemEnd when the list is exhausted or a syntax
// error with the iterator left at the offending byte.
func (it *TokIter) Next(ptok *PTok) ErrorHdr {
	buf := it.buf
	i := it.pos
	// skip whitespace and (if comma-separated) empty list elements
	for i < it.end && (buf[i] == ' ' || buf[i] == '\t' ||
		(buf[i] == ',' && it.flags&TokCommaSepF != 0)) {
		i++
	}
	if i >= it.end {
		it.pos = i
		return ErrElemEnd
	}
	if !tokenT[buf[i]] {
		it.pos = i
		return ErrBadValue
	}
	s := i
	for i < it.end && tokenT[buf[i]] {
		i++
	}
	if it.flags&TokAllowSlashF != 0 && i < it.end && buf[i] == '/' {
		ptok.SepOffs = OffsT(i)
		i++
		n := i
		for i < it.end && tokenT[buf[i]] {
			i++
		}
		if i == n {
			it.pos = i
			return ErrBadValue // '/' with no suffix
		}
	}
	ptok.V.Set(s, i)
	i = skipWS(buf, i)
	if it.flags&TokAllowParamsF != 0 && i < it.end && buf[i] == ';' {
		n, err := scanTokParams(buf, i, it.end, it.flags)
		if err != ErrOk {
			it.pos = n
			return err
		}
		ptok.Params.Set(i, n)
		i = skipWS(buf, n)
	}
	if i < it.end {
		if it.flags&TokCommaSepF == 0 || buf[i] != ',' {
			it.pos = i
			return ErrBadValue // trailing junk after the token
		}
	}
	it.pos = i
	return ErrOk
}

// scanTokParams validates a ";param[=token|quoted-string]" run starting at
// the leading ';' and bounded by end. It stops before a list ',' (when
// comma-separated) and returns the offset after the last param.
func scanTokParams(buf []byte, offs, end int, flags TokFlags) (int, ErrorHdr) {
	i := offs
	for i < end && buf[i] == ';' {
		i++
		i = skipWS(buf, i)
		// tolerate empty params (";;")
		for i < end && buf[i] == ';' {
			i++
			i = skipWS(buf, i)
		}
		if i >= end {
			return i, ErrOk
		}
		if flags&TokCommaSepF != 0 && buf[i] == ',' {
			return i, ErrOk
		}
		// param name
		n := skipTokenChars(buf, i)
		if n == i {
			return i, ErrBadValue
		}
		i = skipWS(buf, n)
		if i < end && buf[i] == '=' {
			i = skipWS(buf, i+1)
			if i >= end {
				return i, ErrBadValue // '=' with no value
			}
			if buf[i] == '"' {
				var err ErrorHdr
				if i, err = skipQuotedVal(buf, i+1, end); err != ErrOk {
					return i, err
				}
			} else {
				n = skipTokenChars(buf, i)
				if n == i {
					return i, ErrBadValue
				}
				i = n
			}
		}
		i = skipWS(buf, i)
	}
	if i < end && !(flags&TokCommaSepF != 0 && buf[i] == ',') {
		return i, ErrBadValue
	}
	return i, ErrOk
}

// skipQuotedVal skips a quoted string, handling quoted-pair escapes. offs
// must point after the opening '"'. It returns the offset after the
// closing quote. CR and LF are never legal inside quotes (rfc7230 3.2.6);
// an unterminated quote in a complete value is an error too.
func skipQuotedVal(buf []byte, offs, end int) (int, ErrorHdr) {
	i := offs
	for i < end {
		c := buf[i]
		switch c {
		case '"':
			return i + 1, ErrOk
		case '\\': // quoted-pair
			if i+1 >= end {
				return i, ErrBadValue
			}
			if buf[i+1] == '\r' || buf[i+1] == '\n' {
				return i + 1, ErrBadValue
			}
			i += 2
			continue
		case '\n', '\r', 0x7f:
			return i, ErrBadValue
		default:
			if c < 0x21 && c != ' ' && c != '\t' {
				return i, ErrBadValue
			}
		}
		i++
	}
	return i, ErrBadValue // no closing quote
}
