// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"github.com/intuitivelabs/bytescase"
)

// fieldEntry is one (id, name, value) triple; the spans point inside the
// owning Header's buffer.
type fieldEntry struct {
	id   FieldId
	name Span
	val  Span
}

// Header is a compact, append-only, multi-valued field container over a
// single contiguous byte buffer laid out as:
//
//	prefix  +  serialized field lines  +  terminating CRLF
//
// The prefix holds start-line text (filled by the parser, or reserved via
// ResizePrefix for serialization use). Field order is insertion order ==
// on-wire order; repeated names are kept as separate entries. Name
// lookups are ASCII case-insensitive; value bytes are preserved verbatim
// (folds already normalized by the parser). Str returns the exact
// serialized form.
//
// Containers produced by a Parser alias parser storage until the first
// mutation or Detach; mutating operations relocate to an owned copy
// first, so handed-out views stay valid until the next mutation.
type Header struct {
	buf      []byte
	prefix   int
	ents     []fieldEntry
	shared   bool // buf aliases parser memory: copy before any mutation
	validate bool // validate names/values on Append
}

// headerAlign is the capacity rounding quantum.
const headerAlign = 16

func alignUp(n int) int {
	return (n + headerAlign - 1) &^ (headerAlign - 1)
}

var crlf = []byte("\r\n")

// NewHeader returns an empty container (serialized form "\r\n") that
// validates appended fields.
func NewHeader() *Header {
	h := &Header{validate: true}
	h.buf = make([]byte, 2, headerAlign)
	copy(h.buf, crlf)
	return h
}

// SetValidate controls whether Append checks names and values against the
// token / field-content grammar (on by default).
func (h *Header) SetValidate(on bool) {
	h.validate = on
}

// Size returns the number of field entries.
func (h *Header) Size() int {
	return len(h.ents)
}

// Index returns the id, name bytes and value bytes of the i-th field in
// insertion order. The index must be < Size.
func (h *Header) Index(i int) (FieldId, []byte, []byte) {
	e := h.ents[i]
	return e.id, e.name.Get(h.buf), e.val.Get(h.buf)
}

// At is Index with bounds checking: it reports ErrOutOfRange instead of
// panicking.
func (h *Header) At(i int) (FieldId, []byte, []byte, ErrorHdr) {
	if i < 0 || i >= len(h.ents) {
		return FieldUnknown, nil, nil, ErrOutOfRange
	}
	id, n, v := h.Index(i)
	return id, n, v, ErrOk
}

// matchEntry returns true if entry e matches the lookup key: a non
// FieldUnknown id matches on id alone, otherwise the name is compared
// ASCII case-insensitively.
func (h *Header) matchEntry(e *fieldEntry, id FieldId, name []byte) bool {
	if id != FieldUnknown {
		return e.id == id
	}
	return bytescase.CmpEq(e.name.Get(h.buf), name)
}

func (h *Header) findFrom(start int, id FieldId, name []byte) int {
	for i := start; i < len(h.ents); i++ {
		if h.matchEntry(&h.ents[i], id, name) {
			return i
		}
	}
	return -1
}

// Find returns the index of the first field with the given id, or -1.
func (h *Header) Find(id FieldId) int {
	return h.findFrom(0, id, nil)
}

// FindName returns the index of the first field whose name matches
// (case-insensitive), or -1.
func (h *Header) FindName(name []byte) int {
	return h.findFrom(0, LookupField(name), name)
}

// Exists returns true if a field with the given id is present.
func (h *Header) Exists(id FieldId) bool {
	return h.Find(id) >= 0
}

// ExistsName returns true if a field with a matching name is present.
func (h *Header) ExistsName(name []byte) bool {
	return h.FindName(name) >= 0
}

// Count returns the number of fields with the given id.
func (h *Header) Count(id FieldId) int {
	n := 0
	for i := range h.ents {
		if h.matchEntry(&h.ents[i], id, nil) {
			n++
		}
	}
	return n
}

// CountName returns the number of fields with a matching name.
func (h *Header) CountName(name []byte) int {
	id := LookupField(name)
	n := 0
	for i := range h.ents {
		if h.matchEntry(&h.ents[i], id, name) {
			n++
		}
	}
	return n
}

// Get returns the value of the first field with the given id, or
// ErrNotFound.
func (h *Header) Get(id FieldId) ([]byte, ErrorHdr) {
	if i := h.Find(id); i >= 0 {
		return h.ents[i].val.Get(h.buf), ErrOk
	}
	return nil, ErrNotFound
}

// GetName returns the value of the first field with a matching name, or
// ErrNotFound.
func (h *Header) GetName(name []byte) ([]byte, ErrorHdr) {
	if i := h.FindName(name); i >= 0 {
		return h.ents[i].val.Get(h.buf), ErrOk
	}
	return nil, ErrNotFound
}

// ValueOr returns the value of the first field with the given id, or the
// supplied default.
func (h *Header) ValueOr(id FieldId, def []byte) []byte {
	if v, err := h.Get(id); err == ErrOk {
		return v
	}
	return def
}

// ValueOrName returns the value of the first field with a matching name,
// or the supplied default.
func (h *Header) ValueOrName(name []byte, def []byte) []byte {
	if v, err := h.GetName(name); err == ErrOk {
		return v
	}
	return def
}

// FieldIter walks all fields matching an id or name, in insertion order,
// without allocating.
type FieldIter struct {
	h    *Header
	id   FieldId
	name []byte
	next int
}

// Next returns the value of the next matching field, or false when the
// matches are exhausted.
func (it *FieldIter) Next() ([]byte, bool) {
	i := it.h.findFrom(it.next, it.id, it.name)
	if i < 0 {
		return nil, false
	}
	it.next = i + 1
	return it.h.ents[i].val.Get(it.h.buf), true
}

// Matching returns an iterator over all fields with the given id.
func (h *Header) Matching(id FieldId) FieldIter {
	return FieldIter{h: h, id: id}
}

// MatchingName returns an iterator over all fields with a matching name.
func (h *Header) MatchingName(name []byte) FieldIter {
	return FieldIter{h: h, id: LookupField(name), name: name}
}

// Str returns the full serialized form: prefix + field lines +
// terminating CRLF. The returned slice borrows container storage and is
// valid until the next mutation.
func (h *Header) Str() []byte {
	return h.buf
}

// Prefix returns the current prefix region (borrowed).
func (h *Header) Prefix() []byte {
	return h.buf[:h.prefix]
}

// makeOwned relocates the contents into an owned buffer with room for at
// least extra additional bytes. Internal spans survive relocation
// unchanged (they are offsets, not pointers); external views do not.
func (h *Header) makeOwned(extra int) {
	need := len(h.buf) + extra
	if !h.shared && need <= cap(h.buf) {
		return
	}
	nb := make([]byte, len(h.buf), alignUp(need))
	copy(nb, h.buf)
	h.buf = nb
	h.shared = false
}

// Reserve grows the buffer capacity to at least n bytes (rounded up to
// the alignment quantum). It invalidates previously handed out views.
func (h *Header) Reserve(n int) {
	if n > len(h.buf) {
		h.makeOwned(n - len(h.buf))
	} else {
		h.makeOwned(0)
	}
}

// ShrinkToFit drops excess capacity.
func (h *Header) ShrinkToFit() {
	if h.shared || cap(h.buf) <= alignUp(len(h.buf)) {
		return
	}
	nb := make([]byte, len(h.buf), alignUp(len(h.buf)))
	copy(nb, h.buf)
	h.buf = nb
}

// Clear removes all fields and the prefix, keeping capacity when the
// storage is owned.
func (h *Header) Clear() {
	h.ents = h.ents[:0]
	h.prefix = 0
	if h.shared || cap(h.buf) < 2 {
		h.buf = make([]byte, 2, headerAlign)
		h.shared = false
	} else {
		h.buf = h.buf[:2]
	}
	copy(h.buf, crlf)
}

// ResizePrefix reserves exactly n bytes of prefix, moving the field
// region, and returns the writable prefix slice. Previous views are
// invalidated; field entries are re-anchored internally.
func (h *Header) ResizePrefix(n int) []byte {
	if n < 0 {
		n = 0
	}
	delta := n - h.prefix
	if delta == 0 {
		h.makeOwned(0)
		return h.buf[:n]
	}
	old := h.buf
	nb := make([]byte, len(old)+delta, alignUp(len(old)+delta))
	copy(nb[n:], old[h.prefix:])
	if delta < 0 {
		copy(nb, old[:n])
	} else {
		copy(nb, old[:h.prefix])
	}
	h.buf = nb
	h.shared = false
	for i := range h.ents {
		h.ents[i].name.Offs = OffsT(int(h.ents[i].name.Offs) + delta)
		h.ents[i].val.Offs = OffsT(int(h.ents[i].val.Offs) + delta)
	}
	h.prefix = n
	return h.buf[:n]
}

// Append adds a field by well-known id, serialized with the canonical
// name spelling.
func (h *Header) Append(id FieldId, val []byte) ErrorHdr {
	if id == FieldUnknown || id >= fieldIdMax {
		return ErrInvalidArg
	}
	return h.append(id, []byte(id.Name()), val)
}

// AppendName adds a field by name. Multi-valued ordering is preserved:
// the new entry goes last.
func (h *Header) AppendName(name, val []byte) ErrorHdr {
	return h.append(LookupField(name), name, val)
}

func (h *Header) append(id FieldId, name, val []byte) ErrorHdr {
	if h.validate {
		if !IsValid[Token](name) {
			return ErrInvalidArg
		}
		if err := Validate[FieldContent](val); err != ErrOk {
			return err
		}
	} else if len(name) == 0 {
		return ErrInvalidArg
	}
	need := len(name) + 2 + len(val) + 2
	h.makeOwned(need)
	// insert the new line before the terminating CRLF
	ins := len(h.buf) - 2
	h.buf = h.buf[:len(h.buf)+need]
	copy(h.buf[ins+need:], crlf)
	i := ins
	copy(h.buf[i:], name)
	nameSpan := MkSpan(i, i+len(name))
	i += len(name)
	h.buf[i] = ':'
	h.buf[i+1] = ' '
	i += 2
	copy(h.buf[i:], val)
	valSpan := MkSpan(i, i+len(val))
	i += len(val)
	copy(h.buf[i:], crlf)
	h.ents = append(h.ents, fieldEntry{id: id, name: nameSpan, val: valSpan})
	return ErrOk
}

// addEntry records an already-serialized field (used by the parser; the
// spans are relative to the buffer later installed via setBuf).
func (h *Header) addEntry(id FieldId, name, val Span) {
	h.ents = append(h.ents, fieldEntry{id: id, name: name, val: val})
}

// setBuf installs the serialized bytes backing the recorded entries.
func (h *Header) setBuf(buf []byte, prefix int, shared bool) {
	h.buf = buf
	h.prefix = prefix
	h.shared = shared
}

// Detach returns an independent deep copy of the container; the copy owns
// its storage and does not alias parser memory.
func (h *Header) Detach() *Header {
	nb := make([]byte, len(h.buf), alignUp(len(h.buf)))
	copy(nb, h.buf)
	d := &Header{
		buf:      nb,
		prefix:   h.prefix,
		ents:     append([]fieldEntry(nil), h.ents...),
		validate: h.validate,
	}
	return d
}

// reset returns the container to the zero state without allocating
// (parser reuse).
func (h *Header) reset() {
	h.buf = nil
	h.prefix = 0
	h.ents = h.ents[:0]
	h.shared = false
}
