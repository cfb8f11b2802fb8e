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

// Package ident implements the Belgian enterprise number codec: parsing,
// checksum validation and canonical formatting.
package ident

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbo-data/kbodata/apperr"
)

// Number is a validated 10-digit enterprise number.
type Number int64

// Parse extracts the digits from s, requires exactly 10 of them, and
// validates the modulus-97 checksum carried in the last two digits. Legacy
// data that only satisfies the weaker `head < 1e8` bound but fails the
// checksum is rejected: the checksum is the canonical rule.
func Parse(s string) (Number, error) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	if digits.Len() != 10 {
		return 0, fmt.Errorf("%w: %q has %d digits, want 10", apperr.ErrInvalidIdentifier, s, digits.Len())
	}

	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", apperr.ErrInvalidIdentifier, s, err)
	}

	if !validChecksum(n) {
		return 0, fmt.Errorf("%w: %q fails checksum", apperr.ErrInvalidIdentifier, s)
	}

	return Number(n), nil
}

func validChecksum(n int64) bool {
	head := n / 100
	chk := n % 100
	return chk == 97-(head%97)
}

// Valid reports whether n currently satisfies the checksum rule (useful for
// values obtained by means other than Parse, e.g. database round-trips).
func (n Number) Valid() bool {
	return validChecksum(int64(n))
}

// Format renders n according to layout. Only "F" (the canonical
// NNNN.NNN.NNN form) is recognized; any other layout, including the empty
// string, returns the zero-padded 10-digit form used as the display
// default.
func (n Number) Format(layout string) string {
	digits := fmt.Sprintf("%010d", int64(n))
	if layout != "F" {
		return digits
	}
	return digits[0:4] + "." + digits[4:7] + "." + digits[7:10]
}

// String implements fmt.Stringer using the display-default (unformatted)
// layout.
func (n Number) String() string {
	return n.Format("")
}

// IsEstablishmentNumber reports whether s has the textual shape of an
// establishment number: 10 digits, first digit >= 2. Establishment numbers
// carry no checksum and are kept as opaque strings.
func IsEstablishmentNumber(s string) bool {
	digits := onlyDigits(s)
	if len(digits) != 10 {
		return false
	}
	return digits[0] >= '2' && digits[0] <= '9'
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
