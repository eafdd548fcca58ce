// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"github.com/valyala/bytebufferpool"
)

// Variant selects the start-line grammar a Parser runs with.
type Variant uint8

// parser variants
const (
	Request Variant = iota
	Response
)

// Config carries the recognized parser options. The zero value means:
// request variant, 8 KiB header limit, unbounded body, field validation
// on.
type Config struct {
	// HeaderLimit is the maximum size of start-line + fields +
	// terminating CRLF in bytes; 0 selects DefaultHeaderLimit.
	HeaderLimit int
	// BodyLimit is the maximum body size when the framing is known;
	// <= 0 means unbounded.
	BodyLimit int64
	// Variant chooses between request-line and status-line parsing.
	Variant Variant
	// SkipValidation disables token / field-content validation on
	// Header.Append for containers produced by this parser (trusted
	// serialization paths).
	SkipValidation bool
}

// DefaultHeaderLimit is the default maximum header block size.
const DefaultHeaderLimit = 8192

// bufGrowChunk is the fixed buffer growth increment.
const bufGrowChunk = 4096

// State is the externally visible parser state.
type State uint8

// parser states
const (
	StateNothingYet State = iota
	StateStartLine
	StateFields
	StateBody
	StateChunkHeader
	StateChunkBody
	StateChunkTrailer
	StateComplete
	StateFailed
)

// body framing kinds
const (
	bodyNone uint8 = iota
	bodyCLen
	bodyEOF
	bodyChunked
)

// Parser is a resumable HTTP/1.1 message parser. It owns its message
// buffer: callers obtain a writable region with Prepare, fill it, Commit
// a byte count and call ParseHeader / ParseBody (or the streaming /
// chunk-level variants) until ErrOk or a fatal error. ErrMoreBytes always
// means "commit more input and repeat the same call"; no progress is ever
// lost or repeated.
//
// A Parser is not internally synchronized: one instance serves one
// logical flow at a time.
type Parser struct {
	cfg Config

	buf       []byte // message bytes [0:committed)
	committed int    // bytes supplied by the caller
	parsed    int    // bytes consumed by the state machine
	scan      int    // resume offset inside the current element
	eof       bool

	state State
	err   ErrorHdr // sticky error once state == StateFailed

	fl      StartLine
	flEnd   int // offset after the start line
	field   fieldLine
	hdr     Header
	trailer Header

	// per-field semantic values
	clen  PCLen
	trEnc PTrEnc
	conn  PConn
	upg   PUpgrade

	hdrEnd    int // offset after the header block terminating CRLF
	bodyKind  uint8
	keepAlive bool

	bodyStart    int
	bodyN        uint64 // payload bytes seen so far
	chunk        ChunkVal
	chunkLeft    uint64 // data bytes left in the current chunk
	trailerStart int
	streamed     bool // body handed out via Parse*Part; Body() stays empty

	// aggregated de-framed chunked body (ParseBody); pooled
	bodyBuf *bytebufferpool.ByteBuffer
}

// NewParser returns a parser configured with cfg.
func NewParser(cfg Config) *Parser {
	if cfg.HeaderLimit <= 0 {
		cfg.HeaderLimit = DefaultHeaderLimit
	}
	p := &Parser{cfg: cfg}
	p.field.reset()
	p.hdr.validate = !cfg.SkipValidation
	p.trailer.validate = !cfg.SkipValidation
	return p
}

// NewRequestParser returns a request parser with default limits.
func NewRequestParser() *Parser {
	return NewParser(Config{Variant: Request})
}

// NewResponseParser returns a response parser with default limits.
func NewResponseParser() *Parser {
	return NewParser(Config{Variant: Response})
}

// Reset returns the parser to its initial state, retaining buffer
// capacity. No state from the previous message survives.
func (p *Parser) Reset() {
	if p.bodyBuf != nil {
		bytebufferpool.Put(p.bodyBuf)
		p.bodyBuf = nil
	}
	p.buf = p.buf[:0]
	p.committed = 0
	p.parsed = 0
	p.scan = 0
	p.eof = false
	p.state = StateNothingYet
	p.err = ErrOk
	p.fl.Reset()
	p.flEnd = 0
	p.field.reset()
	p.hdr.reset()
	p.hdr.validate = !p.cfg.SkipValidation
	p.trailer.reset()
	p.trailer.validate = !p.cfg.SkipValidation
	p.clen.Reset()
	p.trEnc.Reset()
	p.conn.Reset()
	p.upg.Reset()
	p.hdrEnd = 0
	p.bodyKind = bodyNone
	p.keepAlive = false
	p.bodyStart = 0
	p.bodyN = 0
	p.chunk.Reset()
	p.chunkLeft = 0
	p.trailerStart = 0
	p.streamed = false
}

// Prepare returns a writable region of at least 1 byte. Fill some prefix
// of it and report the length with Commit. Growing relocates the buffer;
// internal state survives (offsets, not pointers), previously handed out
// views do not.
func (p *Parser) Prepare() []byte {
	if cap(p.buf)-p.committed < 1 {
		nb := make([]byte, p.committed, cap(p.buf)+bufGrowChunk)
		copy(nb, p.buf)
		p.buf = nb
	}
	return p.buf[p.committed:cap(p.buf)]
}

// Commit reports that the first n bytes of the prepared region now hold
// input. Commit(0) is a legal no-op. A size beyond the prepared region is
// a fatal precondition violation.
func (p *Parser) Commit(n int) ErrorHdr {
	if n == 0 {
		return ErrOk
	}
	if n < 0 || p.committed+n > cap(p.buf) {
		return p.fail(ErrInvalidArg)
	}
	p.committed += n
	p.buf = p.buf[:p.committed]
	return ErrOk
}

// CommitEOF marks the end of the input stream: no more bytes will follow.
func (p *Parser) CommitEOF() {
	p.eof = true
}

func (p *Parser) fail(e ErrorHdr) ErrorHdr {
	p.state = StateFailed
	p.err = e
	return e
}

// hdrSuspend maps ErrMoreBytes during header parsing to the final outcome:
// a header that cannot fit the limit anymore fails early and EOF makes
// the message incomplete.
func (p *Parser) hdrSuspend() ErrorHdr {
	if p.eof {
		return p.fail(ErrIncomplete)
	}
	if p.committed >= p.cfg.HeaderLimit {
		// even one more byte would put the header block over the limit
		return p.fail(ErrHdrLimit)
	}
	return ErrMoreBytes
}

// ParseHeader parses the start line and all the fields, up to and
// including the terminating CRLF. It returns ErrOk once the header block
// is complete (possibly on an earlier call), ErrMoreBytes to ask for more
// input, or a fatal error. After ErrOk the header container, the framing
// accessors and the start line values are valid.
func (p *Parser) ParseHeader() ErrorHdr {
	switch p.state {
	case StateFailed:
		return p.err
	case StateNothingYet:
		p.state = StateStartLine
		p.scan = 0
		fallthrough
	case StateStartLine:
		n, err := parseStartLine(p.buf, p.scan, &p.fl, p.cfg.Variant)
		p.scan = n
		if err == ErrMoreBytes {
			return p.hdrSuspend()
		}
		if err != ErrOk {
			return p.fail(err)
		}
		if n > p.cfg.HeaderLimit {
			return p.fail(ErrHdrLimit)
		}
		p.parsed = n
		p.flEnd = n
		p.field.reset()
		p.state = StateFields
		fallthrough
	case StateFields:
		for {
			n, err := parseFieldLine(p.buf, p.scan, &p.field)
			switch err {
			case ErrOk:
				p.scan = n
				p.parsed = n
				if n > p.cfg.HeaderLimit {
					return p.fail(ErrHdrLimit)
				}
				if e := p.addField(); e != ErrOk {
					return p.fail(e)
				}
				p.field.reset()
			case ErrElemEnd:
				if n > p.cfg.HeaderLimit {
					return p.fail(ErrHdrLimit)
				}
				p.scan = n
				p.parsed = n
				return p.finishHeader(n)
			case ErrMoreBytes:
				p.scan = n
				return p.hdrSuspend()
			default:
				return p.fail(err)
			}
		}
	}
	// headers already parsed
	return ErrOk
}

// addField records the field just parsed in the header container and
// runs the per-field semantics of the well-known ones.
func (p *Parser) addField() ErrorHdr {
	name := p.field.name()
	val := p.field.value()
	id := LookupField(name.Get(p.buf))
	p.hdr.addEntry(id, name, val)
	switch id {
	case FieldContentLength:
		return p.clen.addCLen(p.buf, val)
	case FieldTransferEncoding:
		return p.trEnc.addTrEnc(p.buf, val)
	case FieldConnection, FieldProxyConnection:
		return p.conn.addConn(p.buf, val)
	case FieldUpgrade:
		return p.upg.addUpgrade(p.buf, val)
	}
	return ErrOk
}

// finishHeader computes the message framing (rfc7230 3.3.3) and installs
// the header container view.
func (p *Parser) finishHeader(end int) ErrorHdr {
	if p.trEnc.Parsed() && p.clen.Parsed() {
		// Transfer-Encoding would win, but the framing is ambiguous
		return p.fail(ErrBadMessage)
	}
	p.hdrEnd = end
	p.bodyStart = end
	p.keepAlive = p.conn.KeepAlive(p.fl.Minor)
	p.hdr.setBuf(p.buf[:end], p.flEnd, true)

	switch {
	case p.cfg.Variant == Response &&
		(p.fl.Status < 200 || p.fl.Status == 204 || p.fl.Status == 304):
		// 1xx, 204, 304: never a body, any length fields are framing
		// metadata only
		p.bodyKind = bodyNone
		p.state = StateComplete
	case p.trEnc.Parsed() && p.trEnc.Chunked():
		p.bodyKind = bodyChunked
		p.chunk.Reset()
		p.state = StateChunkHeader
	case p.clen.Parsed():
		if p.cfg.BodyLimit > 0 && p.clen.UIVal > uint64(p.cfg.BodyLimit) {
			return p.fail(ErrBodyLimit)
		}
		p.bodyKind = bodyCLen
		if p.clen.UIVal == 0 {
			p.state = StateComplete
		} else {
			p.state = StateBody
		}
	case p.cfg.Variant == Request:
		// no framing in a request: zero length body (this includes
		// a Transfer-Encoding list not ending in chunked; the codings
		// stay visible through TransferCodings for the caller to
		// judge)
		p.bodyKind = bodyNone
		p.state = StateComplete
	default:
		// response without framing: the body runs until EOF
		p.bodyKind = bodyEOF
		p.state = StateBody
	}
	return ErrOk
}

// bodySuspend maps an empty read during body parsing to ErrMoreBytes or,
// at EOF, to ErrIncomplete.
func (p *Parser) bodySuspend() ErrorHdr {
	if p.eof {
		return p.fail(ErrIncomplete)
	}
	return ErrMoreBytes
}

// nextBodyPart advances the body state machine and returns the next
// available payload fragment (borrowed from the message buffer, no
// copy). A nil fragment with ErrOk means the message just completed.
func (p *Parser) nextBodyPart() ([]byte, ErrorHdr) {
	for {
		switch p.state {
		case StateFailed:
			return nil, p.err
		case StateComplete:
			return nil, ErrOk
		case StateNothingYet, StateStartLine, StateFields:
			if err := p.ParseHeader(); err != ErrOk {
				return nil, err
			}
		case StateBody:
			switch p.bodyKind {
			case bodyCLen:
				left := p.clen.UIVal - p.bodyN
				avail := uint64(p.committed - p.parsed)
				if avail == 0 {
					return nil, p.bodySuspend()
				}
				n := min(avail, left)
				frag := p.buf[p.parsed : p.parsed+int(n)]
				p.parsed += int(n)
				p.bodyN += n
				if p.bodyN == p.clen.UIVal {
					p.state = StateComplete
				}
				return frag, ErrOk
			case bodyEOF:
				avail := p.committed - p.parsed
				if avail == 0 {
					if p.eof {
						p.state = StateComplete
						return nil, ErrOk
					}
					return nil, ErrMoreBytes
				}
				if p.cfg.BodyLimit > 0 &&
					p.bodyN+uint64(avail) > uint64(p.cfg.BodyLimit) {
					return nil, p.fail(ErrBodyLimit)
				}
				frag := p.buf[p.parsed:p.committed]
				p.parsed = p.committed
				p.bodyN += uint64(avail)
				return frag, ErrOk
			default:
				return nil, p.fail(ErrBug)
			}
		case StateChunkHeader:
			n, err := parseChunkHead(p.buf, p.scan, &p.chunk)
			p.scan = n
			if err == ErrMoreBytes {
				return nil, p.bodySuspend()
			}
			if err != ErrOk {
				return nil, p.fail(err)
			}
			p.parsed = n
			if p.chunk.Size == 0 {
				p.trailerStart = n
				p.field.reset()
				p.state = StateChunkTrailer
				continue
			}
			if p.cfg.BodyLimit > 0 &&
				p.bodyN+p.chunk.Size > uint64(p.cfg.BodyLimit) {
				return nil, p.fail(ErrBodyLimit)
			}
			p.chunkLeft = p.chunk.Size
			p.state = StateChunkBody
		case StateChunkBody:
			if p.chunkLeft > 0 {
				avail := uint64(p.committed - p.parsed)
				if avail == 0 {
					return nil, p.bodySuspend()
				}
				n := min(avail, p.chunkLeft)
				frag := p.buf[p.parsed : p.parsed+int(n)]
				p.parsed += int(n)
				p.chunkLeft -= n
				p.bodyN += n
				return frag, ErrOk
			}
			// chunk data consumed: a strict CRLF must follow
			if p.committed-p.parsed < 2 {
				return nil, p.bodySuspend()
			}
			if p.buf[p.parsed] != '\r' || p.buf[p.parsed+1] != '\n' {
				return nil, p.fail(ErrBadChunk)
			}
			p.parsed += 2
			p.chunk.Reset()
			p.scan = p.parsed
			p.state = StateChunkHeader
		case StateChunkTrailer:
			n, err := parseFieldLine(p.buf, p.scan, &p.field)
			switch err {
			case ErrOk:
				p.scan = n
				p.parsed = n
				// trailer entry spans are relative to the trailer
				// container buffer
				name := p.field.name()
				val := p.field.value()
				base := OffsT(p.trailerStart)
				name.Offs -= base
				if !val.Empty() {
					val.Offs -= base
				}
				p.trailer.addEntry(
					LookupField(p.field.name().Get(p.buf)), name, val)
				p.field.reset()
			case ErrElemEnd:
				p.scan = n
				p.parsed = n
				p.trailer.setBuf(p.buf[p.trailerStart:n], 0, true)
				p.state = StateComplete
				return nil, ErrOk
			case ErrMoreBytes:
				p.scan = n
				return nil, p.bodySuspend()
			default:
				return nil, p.fail(err)
			}
		default:
			return nil, p.fail(ErrBug)
		}
	}
}

// ParseBodyPart returns the next available body fragment without copying.
// The fragment borrows parser storage and stays valid until the next
// Prepare-triggered growth or Reset. A message whose body is consumed
// this way reports an empty Body().
func (p *Parser) ParseBodyPart() ([]byte, ErrorHdr) {
	p.streamed = true
	return p.nextBodyPart()
}

// ParseBody advances until the body is complete or the committed input is
// exhausted. The de-framed body accumulates and is available through
// Body. It returns ErrOk when the message is complete, ErrMoreBytes to
// ask for more input or a fatal error.
func (p *Parser) ParseBody() ErrorHdr {
	for {
		frag, err := p.nextBodyPart()
		if err != ErrOk {
			return err
		}
		if p.bodyKind == bodyChunked && len(frag) > 0 && !p.streamed {
			if p.bodyBuf == nil {
				p.bodyBuf = bytebufferpool.Get()
			}
			p.bodyBuf.Write(frag) //nolint:errcheck // cannot fail
		}
		if p.state == StateComplete {
			return ErrOk
		}
	}
}

// ParseChunkExt parses up to the end of the current chunk header and
// returns the raw chunk-extension text (empty if the chunk has none).
// Valid only for chunk-framed bodies.
func (p *Parser) ParseChunkExt() ([]byte, ErrorHdr) {
	if p.state == StateFailed {
		return nil, p.err
	}
	if p.bodyKind != bodyChunked {
		return nil, ErrInvalidArg
	}
	if p.state == StateChunkHeader {
		n, err := parseChunkHead(p.buf, p.scan, &p.chunk)
		p.scan = n
		if err == ErrMoreBytes {
			return nil, p.bodySuspend()
		}
		if err != ErrOk {
			return nil, p.fail(err)
		}
		p.parsed = n
		if p.chunk.Size == 0 {
			p.trailerStart = n
			p.field.reset()
			p.state = StateChunkTrailer
		} else {
			if p.cfg.BodyLimit > 0 &&
				p.bodyN+p.chunk.Size > uint64(p.cfg.BodyLimit) {
				return nil, p.fail(ErrBodyLimit)
			}
			p.chunkLeft = p.chunk.Size
			p.state = StateChunkBody
		}
	}
	return p.chunk.Ext.Get(p.buf), ErrOk
}

// ParseChunkPart returns the next available chunk payload fragment
// without copying (driving chunk headers and inter-chunk CRLFs as
// needed). Valid only for chunk-framed bodies.
func (p *Parser) ParseChunkPart() ([]byte, ErrorHdr) {
	if p.state == StateFailed {
		return nil, p.err
	}
	if p.bodyKind != bodyChunked {
		return nil, ErrInvalidArg
	}
	return p.ParseBodyPart()
}

// ParseChunkTrailer parses the trailer section of a chunk-framed body and
// returns the trailer container once the message is complete.
func (p *Parser) ParseChunkTrailer() (*Header, ErrorHdr) {
	if p.state == StateFailed {
		return nil, p.err
	}
	if p.bodyKind != bodyChunked {
		return nil, ErrInvalidArg
	}
	if p.state == StateComplete {
		return &p.trailer, ErrOk
	}
	if p.state != StateChunkTrailer {
		return nil, ErrInvalidArg
	}
	if _, err := p.nextBodyPart(); err != ErrOk {
		return nil, err
	}
	if p.state != StateComplete {
		return nil, ErrMoreBytes
	}
	return &p.trailer, ErrOk
}

// Body returns the materialized body: the contiguous payload for
// length- or EOF-framed messages, the de-framed aggregate for chunked
// ones. Empty if the body was streamed out via ParseBodyPart /
// ParseChunkPart.
func (p *Parser) Body() []byte {
	if p.streamed {
		return nil
	}
	switch p.bodyKind {
	case bodyCLen, bodyEOF:
		return p.buf[p.bodyStart : p.bodyStart+int(p.bodyN)]
	case bodyChunked:
		if p.bodyBuf == nil {
			return nil
		}
		return p.bodyBuf.B
	}
	return nil
}

// State returns the current parser state.
func (p *Parser) State() State {
	return p.state
}

// Complete returns true once the whole message has been parsed.
func (p *Parser) Complete() bool {
	return p.state == StateComplete
}

// Failed returns true if parsing hit a fatal error (only Reset recovers).
func (p *Parser) Failed() bool {
	return p.state == StateFailed
}

// ParsedHdrs returns true once the header block is fully parsed.
func (p *Parser) ParsedHdrs() bool {
	switch p.state {
	case StateBody, StateChunkHeader, StateChunkBody, StateChunkTrailer,
		StateComplete:
		return true
	}
	return false
}

// Err returns the sticky error of a failed parser (ErrOk otherwise).
func (p *Parser) Err() ErrorHdr {
	return p.err
}

// FLine returns the parsed start line (valid once ParsedHdrs is true).
func (p *Parser) FLine() *StartLine {
	return &p.fl
}

// Version returns the HTTP minor version (0 or 1).
func (p *Parser) Version() int {
	return int(p.fl.Minor)
}

// Method returns the request method (MUndef for responses).
func (p *Parser) Method() HTTPMethod {
	if p.fl.Request() {
		return p.fl.MethodNo
	}
	return MUndef
}

// Target returns the raw request-target bytes.
func (p *Parser) Target() []byte {
	return p.fl.Target.Get(p.buf)
}

// Status returns the response status code (0 for requests).
func (p *Parser) Status() uint16 {
	return p.fl.Status
}

// IsChunked returns true if the body is chunk-framed.
func (p *Parser) IsChunked() bool {
	return p.bodyKind == bodyChunked
}

// ContentLength returns the declared Content-Length, false if none.
func (p *Parser) ContentLength() (uint64, bool) {
	return p.clen.UIVal, p.clen.Parsed()
}

// KeepAlive returns the connection disposition (valid once ParsedHdrs is
// true).
func (p *Parser) KeepAlive() bool {
	return p.keepAlive
}

// UpgradeRequested returns true if the message asked for a protocol
// upgrade (Connection: upgrade token or an Upgrade field).
func (p *Parser) UpgradeRequested() bool {
	return p.conn.Opts&ConnUpgradeF != 0 || p.upg.Parsed()
}

// UpgradeProtos returns the flags of the recognized Upgrade protocols.
func (p *Parser) UpgradeProtos() UpgProtoT {
	return p.upg.Protos
}

// TransferCodings returns the flags of all Transfer-Encoding codings
// seen.
func (p *Parser) TransferCodings() TrEncT {
	return p.trEnc.Encodings
}

// HasBody returns true if the message framing implies a non-empty body
// may follow the header block.
func (p *Parser) HasBody() bool {
	switch p.bodyKind {
	case bodyChunked, bodyEOF:
		return true
	case bodyCLen:
		return p.clen.UIVal > 0
	}
	return false
}

// BodyLen returns the number of payload bytes seen so far.
func (p *Parser) BodyLen() uint64 {
	return p.bodyN
}

// Header returns the header container (valid once ParsedHdrs is true).
// The container aliases parser storage until detached or mutated.
func (p *Parser) Header() *Header {
	return &p.hdr
}

// Trailer returns the trailer container of a chunk-framed message
// (empty until the trailer section is parsed).
func (p *Parser) Trailer() *Header {
	return &p.trailer
}

// DetachHeader returns the header container as an independent value: a
// deep copy that survives Reset and further parsing.
func (p *Parser) DetachHeader() *Header {
	return p.hdr.Detach()
}
