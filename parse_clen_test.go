// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"testing"
)

func TestParseCLenVal(t *testing.T) {
	tests := [...]struct {
		val  string
		err  ErrorHdr
		n    uint64
		desc string
	}{
		{"0", 0, 0, "zero"},
		{"5", 0, 5, "small"},
		{"007", 0, 7, "leading zeros"},
		{"4294967296", 0, 4294967296, "over 32 bit"},
		{"18446744073709551615", 0, ^uint64(0), "max uint64"},
		{"18446744073709551616", ErrBadCLen, 0, "overflow"},
		{"99999999999999999999", ErrBadCLen, 0, "big overflow"},
		{"", ErrBadCLen, 0, "empty"},
		{"+5", ErrBadCLen, 0, "leading plus"},
		{"-5", ErrBadCLen, 0, "leading minus"},
		{"5 5", ErrBadCLen, 0, "split value"},
		{"5x", ErrBadCLen, 0, "trailing garbage"},
		{"0x10", ErrBadCLen, 0, "hex"},
	}
	for _, c := range tests {
		n, err := parseCLenVal([]byte(c.val))
		if err != c.err {
			t.Errorf("parseCLenVal(%q) error %d(%q), %d(%q) expected (%s)",
				c.val, err, err, c.err, c.err, c.desc)
			continue
		}
		if err == 0 && n != c.n {
			t.Errorf("parseCLenVal(%q) = %d, %d expected (%s)",
				c.val, n, c.n, c.desc)
		}
	}
}

func TestCLenRepeated(t *testing.T) {
	buf := []byte("55")
	var cl PCLen
	if err := cl.addCLen(buf, MkSpan(0, 2)); err != 0 {
		t.Fatalf("first addCLen failed: %d(%q)", err, err)
	}
	// identical repeated value is fine
	if err := cl.addCLen(buf, MkSpan(0, 2)); err != 0 {
		t.Errorf("identical repeated Content-Length rejected: %d(%q)",
			err, err)
	}
	if cl.N != 2 || cl.UIVal != 55 {
		t.Errorf("got N=%d UIVal=%d, N=2 UIVal=55 expected", cl.N, cl.UIVal)
	}
	// conflicting value is not
	if err := cl.addCLen(buf, MkSpan(0, 1)); err != ErrBadCLen {
		t.Errorf("conflicting Content-Length: error %d(%q), ErrBadCLen"+
			" expected", err, err)
	}
}
