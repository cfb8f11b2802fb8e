// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ident_test

import (
	"errors"
	"testing"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/ident"
)

func validNumberForHead(head int64) int64 {
	chk := 97 - (head % 97)
	return head*100 + chk
}

func TestParseRoundTrip(t *testing.T) {
	heads := []int64{403199, 1, 99999999, 12345678}
	for _, head := range heads {
		n := validNumberForHead(head)
		formatted := ident.Number(n).Format("F")

		parsed, err := ident.Parse(formatted)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", formatted, err)
		}
		if int64(parsed) != n {
			t.Errorf("Parse(%q) = %d, want %d", formatted, parsed, n)
		}
		if got := parsed.Format("F"); got != formatted {
			t.Errorf("round-trip format mismatch: got %q, want %q", got, formatted)
		}
	}
}

func TestParseInvalidChecksum(t *testing.T) {
	_, err := ident.Parse("0403199703") // last two digits off by one
	if !errors.Is(err, apperr.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestParseWrongDigitCount(t *testing.T) {
	_, err := ident.Parse("12345")
	if !errors.Is(err, apperr.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestParseIgnoresPunctuation(t *testing.T) {
	n := validNumberForHead(403199)
	dotted := ident.Number(n).Format("F")
	parsed, err := ident.Parse(dotted)
	if err != nil {
		t.Fatalf("Parse(%q): %v", dotted, err)
	}
	if int64(parsed) != n {
		t.Errorf("got %d want %d", parsed, n)
	}
}

func TestDisplayDefaultIsUnformatted(t *testing.T) {
	n := ident.Number(validNumberForHead(403199))
	if got := n.String(); got != n.Format("") {
		t.Errorf("String() = %q, want unformatted %q", got, n.Format(""))
	}
	if len(n.String()) != 10 {
		t.Errorf("display default should be 10 digits, got %q", n.String())
	}
}

func TestIsEstablishmentNumber(t *testing.T) {
	cases := map[string]bool{
		"2012345678": true,
		"9999999999": true,
		"0123456789": false,
		"123":        false,
	}
	for s, want := range cases {
		if got := ident.IsEstablishmentNumber(s); got != want {
			t.Errorf("IsEstablishmentNumber(%q) = %v, want %v", s, got, want)
		}
	}
}
