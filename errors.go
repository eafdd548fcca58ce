// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

// ErrorHdr is the type for all the parsing and container error codes.
// 0 means success; ErrMoreBytes and ErrElemEnd are not failures (see below).
type ErrorHdr uint8

// Error code values.
const (
	ErrOk ErrorHdr = iota // no error
	// ErrMoreBytes means the input ended before the current element could
	// be decided. Not a failure: commit more bytes and repeat the call.
	ErrMoreBytes
	// ErrElemEnd is the grammar-element "terminator found" signal. The
	// field-line parser also uses it for the bare CRLF that ends the
	// header block.
	ErrElemEnd

	// syntax errors
	ErrBadVersion    // HTTP-version is not HTTP/1.0 or HTTP/1.1
	ErrBadField      // invalid field name or missing colon
	ErrBadLineEnding // bare CR, bare LF or CR not followed by LF
	ErrBadValue      // invalid field value (bad char or illegal fold)
	ErrBadCLen       // invalid or conflicting Content-Length
	ErrBadTrEnc      // invalid Transfer-Encoding (e.g. chunked not last)
	ErrBadChunk      // invalid chunk size, extension or framing CRLF
	ErrBadMessage    // invalid field combination (Content-Length + TE)

	// policy errors
	ErrHdrLimit  // header block exceeds the configured limit
	ErrBodyLimit // body exceeds the configured limit

	// completion / transport
	ErrIncomplete // EOF in the middle of a message

	// container errors
	ErrNotFound   // no field with the requested id or name
	ErrOutOfRange // index out of range
	ErrInvalidArg // invalid argument (failed validation, bad commit size)

	ErrBug // internal error, should never be returned
)

var errHdrStr = [...]string{
	ErrOk:            "no error",
	ErrMoreBytes:     "need more bytes",
	ErrElemEnd:       "element end",
	ErrBadVersion:    "bad HTTP version",
	ErrBadField:      "bad field name",
	ErrBadLineEnding: "bad line ending",
	ErrBadValue:      "bad field value",
	ErrBadCLen:       "bad Content-Length",
	ErrBadTrEnc:      "bad Transfer-Encoding",
	ErrBadChunk:      "bad chunk",
	ErrBadMessage:    "bad message",
	ErrHdrLimit:      "header limit exceeded",
	ErrBodyLimit:     "body limit exceeded",
	ErrIncomplete:    "incomplete message",
	ErrNotFound:      "field not found",
	ErrOutOfRange:    "index out of range",
	ErrInvalidArg:    "invalid argument",
	ErrBug:           "internal BUG",
}

// String implements the Stringer interface.
func (e ErrorHdr) String() string {
	if int(e) >= len(errHdrStr) {
		return "invalid error code"
	}
	return errHdrStr[e]
}

// Error implements the error interface.
func (e ErrorHdr) Error() string {
	return e.String()
}

// Fatal returns true if the code is a real failure (as opposed to ErrOk
// or one of the resume/terminator signals).
func (e ErrorHdr) Fatal() bool {
	return e != ErrOk && e != ErrMoreBytes && e != ErrElemEnd
}
