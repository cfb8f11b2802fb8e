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

// Package query implements the two read planners of §4.11/§4.12: an
// identifier lookup that hydrates a single company_document, and a
// ranked free-text search over the company_fts index. Both project the
// stored payload into the caller-facing Company shape, resolving code
// descriptions through the same NL→FR→EN→DE fallback chain (§8 P8).
package query

import "strings"

// Company is the caller-facing projection of a company_document, with
// code descriptions resolved for a single requested language.
type Company struct {
	EnterpriseNumber   string
	JuridicalSituation string
	TypeOfEnterprise   string
	JuridicalForm      string
	StartDate          string
	Names              []Name
	Addresses          []Address
	Contacts           []Contact
	Activities         []Activity
	Establishments     []string
	Branches           []string
}

// Name is a denomination classified by its fixed type label (§4.11).
type Name struct {
	Type string
	Name string
}

// Address is a single projected address, one per entity: the enterprise
// itself, then each establishment, then each branch, in that order. An
// entity with no address of its own maps to the empty-address sentinel
// (all fields blank), per §4.11 — it never falls back to a sibling's
// address.
type Address struct {
	Type        string
	Street      string
	HouseNumber string
	Box         string
	PostalCode  string
	City        string
	Country     string
}

// Contact is a single projected contact.
type Contact struct {
	Type  string
	Value string
}

// Activity is a single projected activity.
type Activity struct {
	Classification string
	NaceCode       string
	Description    string
}

// languageFallback resolves a code description for the requested
// language using the fixed NL→FR→EN→DE chain, trying the requested
// language first (§8 P8, §4.11).
func languageFallback(descriptions map[string]string, requestedLang string) string {
	order := []string{}
	if requestedLang != "" {
		order = append(order, strings.ToUpper(requestedLang))
	}
	order = append(order, "NL", "FR", "EN", "DE")
	for _, l := range order {
		if v, ok := descriptions[l]; ok && v != "" {
			return v
		}
	}
	return ""
}

// pickLang picks the language-specific street/city value with the same
// fallback chain used for code descriptions.
func pickLang(nl, fr string, requestedLang string) string {
	if strings.ToUpper(requestedLang) == "FR" && fr != "" {
		return fr
	}
	if nl != "" {
		return nl
	}
	return fr
}
