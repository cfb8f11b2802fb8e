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

// Package querybuild is the predicate builder behind the structured
// search endpoint (§6.3, §6.6, DESIGN NOTES §9): it accumulates `WHERE`
// fragments and positional bindings from a set of optional criteria,
// combined conjunctively, with no reflection involved.
package querybuild

import "strings"

// Criteria is the structured search's input shape: every field is
// optional, and present fields are combined with AND.
type Criteria struct {
	Name        string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

// Builder accumulates WHERE fragments and their positional bindings.
type Builder struct {
	fragments []string
	args      []any
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Like adds a `UPPER(column) LIKE UPPER(?)` fragment when value is
// non-blank, binding value wrapped in wildcard characters.
func (b *Builder) Like(column, value string) *Builder {
	if value == "" {
		return b
	}
	b.fragments = append(b.fragments, "UPPER("+column+") LIKE UPPER(?)")
	b.args = append(b.args, "%"+value+"%")
	return b
}

// LikeEither adds an `(UPPER(c1) LIKE UPPER(?) OR UPPER(c2) LIKE UPPER(?))`
// fragment when value is non-blank, for NL/FR column pairs.
func (b *Builder) LikeEither(col1, col2, value string) *Builder {
	if value == "" {
		return b
	}
	b.fragments = append(b.fragments, "(UPPER("+col1+") LIKE UPPER(?) OR UPPER("+col2+") LIKE UPPER(?))")
	wildcard := "%" + value + "%"
	b.args = append(b.args, wildcard, wildcard)
	return b
}

// Eq adds an equality fragment when value is non-blank.
func (b *Builder) Eq(column, value string) *Builder {
	if value == "" {
		return b
	}
	b.fragments = append(b.fragments, column+" = ?")
	b.args = append(b.args, value)
	return b
}

// Build returns the combined WHERE clause (without the leading `WHERE`
// keyword) and the ordered argument list. An empty Builder returns
// ("1=1", nil) so the caller can always append it to a query.
func (b *Builder) Build() (string, []any) {
	if len(b.fragments) == 0 {
		return "1=1", nil
	}
	return strings.Join(b.fragments, " AND "), b.args
}

// FromCriteria builds the standard structured-search predicate: name and
// house number are substring matches on their single column, street and
// city are substring matches on either their NL or FR column, and postal
// code is an exact match.
func FromCriteria(c Criteria) (string, []any) {
	b := New()
	b.Like("d.value", c.Name)
	b.LikeEither("a.street_nl", "a.street_fr", c.Street)
	b.Like("a.house_number", c.HouseNumber)
	b.Eq("a.zipcode", c.PostalCode)
	b.LikeEither("a.municipality_nl", "a.municipality_fr", c.City)
	return b.Build()
}
