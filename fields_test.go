// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"testing"
)

func TestLookupFieldCanonical(t *testing.T) {
	for id := FieldUnknown + 1; id < fieldIdMax; id++ {
		n := id.Name()
		if n == "" {
			t.Fatalf("field id %d has no canonical name", id)
		}
		if got := LookupField([]byte(n)); got != id {
			t.Errorf("LookupField(%q) = %d(%q), %d(%q) expected",
				n, got, got, id, id)
		}
	}
}

func TestLookupFieldCaseInsensitive(t *testing.T) {
	const rounds = 10
	for id := FieldUnknown + 1; id < fieldIdMax; id++ {
		n := id.Name()
		for i := 0; i < rounds; i++ {
			v := randCase(n)
			if got := LookupField([]byte(v)); got != id {
				t.Errorf("LookupField(%q) = %d(%q), %d(%q) expected",
					v, got, got, id, id)
			}
		}
	}
}

func TestLookupFieldUnknown(t *testing.T) {
	for _, n := range []string{"", "X-Custom", "Hos", "Hostt", "Zzz",
		"content-lengt"} {
		if got := LookupField([]byte(n)); got != FieldUnknown {
			t.Errorf("LookupField(%q) = %d(%q), FieldUnknown expected",
				n, got, got)
		}
	}
}

func TestGetMethodNo(t *testing.T) {
	for m := MUndef + 1; m < MOther; m++ {
		if got := GetMethodNo(m.Name()); got != m {
			t.Errorf("GetMethodNo(%q) = %d(%q), %d(%q) expected",
				m.Name(), got, got, m, m)
		}
	}
	// methods are case-sensitive
	if got := GetMethodNo([]byte("get")); got != MOther {
		t.Errorf("GetMethodNo(\"get\") = %d(%q), MOther expected", got, got)
	}
	if got := GetMethodNo([]byte("BREW")); got != MOther {
		t.Errorf("GetMethodNo(\"BREW\") = %d(%q), MOther expected", got, got)
	}
}
