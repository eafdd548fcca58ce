// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package httpmsg

import (
	"testing"
)

type tokTestCase struct {
	val   string
	flags TokFlags
	desc  string
	err   ErrorHdr // expected final error (0 == clean end of list)
	toks  []string // expected token texts (V spans)
}

var tokTests = [...]tokTestCase{
	{val: "chunked", flags: TokCommaSepF,
		desc: "single token", toks: []string{"chunked"}},
	{val: "gzip, chunked", flags: TokCommaSepF,
		desc: "two tokens", toks: []string{"gzip", "chunked"}},
	{val: " gzip ,, chunked  ", flags: TokCommaSepF,
		desc: "extra separators and OWS",
		toks: []string{"gzip", "chunked"}},
	{val: "gzip;q=1, chunked", flags: TokCommaSepF | TokAllowParamsF,
		desc: "token with param", toks: []string{"gzip", "chunked"}},
	{val: "ext;a=\"b\\\"c\";b=tok", flags: TokCommaSepF | TokAllowParamsF,
		desc: "quoted param with escape", toks: []string{"ext"}},
	{val: "websocket/13, h2c", flags: TokCommaSepF | TokAllowSlashF,
		desc: "slash suffixed tokens", toks: []string{"websocket/13", "h2c"}},
	{val: "", flags: TokCommaSepF,
		desc: "empty value", toks: nil},
	{val: "  ,  ", flags: TokCommaSepF,
		desc: "separators only", toks: nil},
	{val: "gz ip", flags: TokCommaSepF,
		desc: "space separated tokens", err: ErrBadValue},
	{val: "a;=x", flags: TokCommaSepF | TokAllowParamsF,
		desc: "param without name", err: ErrBadValue},
	{val: "a;p=\"unterminated", flags: TokCommaSepF | TokAllowParamsF,
		desc: "unterminated quote", err: ErrBadValue},
	{val: "gzip;q=1", flags: TokCommaSepF,
		desc: "params not allowed", err: ErrBadValue},
	{val: "a/b", flags: TokCommaSepF,
		desc: "slash not allowed", err: ErrBadValue},
	{val: "a/", flags: TokCommaSepF | TokAllowSlashF,
		desc: "slash without suffix", err: ErrBadValue},
}

func TestTokIter(t *testing.T) {
	for _, c := range tokTests {
		buf := []byte(c.val)
		var it TokIter
		var tok PTok
		it.Init(buf, 0, len(buf), c.flags)
		var got []string
		var err ErrorHdr
	loop:
		for {
			tok.Reset()
			switch err = it.Next(&tok); err {
			case ErrOk:
				got = append(got, string(tok.V.Get(buf)))
			case ErrElemEnd:
				err = 0
				break loop
			default:
				break loop
			}
		}
		if err != c.err {
			t.Errorf("TokIter(%q, %#x) error %d(%q), %d(%q) expected (%s)",
				c.val, c.flags, err, err, c.err, c.err, c.desc)
			continue
		}
		if len(got) != len(c.toks) {
			t.Errorf("TokIter(%q): got %d tokens %v, expected %v (%s)",
				c.val, len(got), got, c.toks, c.desc)
			continue
		}
		for i := range got {
			if got[i] != c.toks[i] {
				t.Errorf("TokIter(%q): token %d is %q, %q expected (%s)",
					c.val, i, got[i], c.toks[i], c.desc)
			}
		}
	}
}

func TestPTokNameSuffix(t *testing.T) {
	buf := []byte("websocket/13")
	var it TokIter
	var tok PTok
	it.Init(buf, 0, len(buf), TokAllowSlashF)
	if err := it.Next(&tok); err != ErrOk {
		t.Fatalf("Next failed: %d(%q)", err, err)
	}
	if string(tok.Name().Get(buf)) != "websocket" {
		t.Errorf("Name() = %q, \"websocket\" expected", tok.Name().Get(buf))
	}
	if string(tok.Suffix().Get(buf)) != "13" {
		t.Errorf("Suffix() = %q, \"13\" expected", tok.Suffix().Get(buf))
	}
	tok.Reset()
	it.Init(buf, 0, len("websocket"), TokAllowSlashF)
	if err := it.Next(&tok); err != ErrOk {
		t.Fatalf("Next failed: %d(%q)", err, err)
	}
	if !tok.Suffix().Empty() {
		t.Errorf("Suffix() not empty for a plain token")
	}
}

func TestTokIterParamsSpan(t *testing.T) {
	buf := []byte("gzip ;q=1;x, more")
	var it TokIter
	var tok PTok
	it.Init(buf, 0, len(buf), TokCommaSepF|TokAllowParamsF)
	if err := it.Next(&tok); err != ErrOk {
		t.Fatalf("Next failed: %d(%q)", err, err)
	}
	if string(tok.Params.Get(buf)) != ";q=1;x" {
		t.Errorf("Params = %q, \";q=1;x\" expected", tok.Params.Get(buf))
	}
}
