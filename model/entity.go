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

// Package model defines the relational row types of the KBO schema (§3.2)
// and the small entity-number classifier that every table referencing
// `entity_number` relies on.
package model

import "strings"

// EntityKind classifies an opaque entity_number as belonging to an
// enterprise, an establishment, or a branch.
type EntityKind int

const (
	EntityUnknown EntityKind = iota
	EntityEnterprise
	EntityEstablishment
	EntityBranch
)

// ClassifyEntityNumber applies the "has exactly two dots" rule: enterprise
// numbers are formatted NNNN.NNN.NNN (two dots), establishment and branch
// numbers are not. Branch vs. establishment cannot be told apart from the
// string alone; callers that need to distinguish them do so by checking
// which table actually holds the key.
func ClassifyEntityNumber(entityNumber string) EntityKind {
	if strings.Count(entityNumber, ".") == 2 {
		return EntityEnterprise
	}
	return EntityUnknown
}
