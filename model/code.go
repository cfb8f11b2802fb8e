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
package model

// CodeCategory is the discriminator of the polymorphic `code` table. The
// source data models each of these as a distinct subclass; here they are
// values of a single sum type instead, per DESIGN NOTES §9.
type CodeCategory string

const (
	CategoryLanguage            CodeCategory = "Language"
	CategoryTypeOfEnterprise    CodeCategory = "TypeOfEnterprise"
	CategoryJuridicalSituation  CodeCategory = "JuridicalSituation"
	CategoryJuridicalForm       CodeCategory = "JuridicalForm"
	CategoryActivityGroup       CodeCategory = "ActivityGroup"
	CategoryTypeOfDenomination  CodeCategory = "TypeOfDenomination"
	CategoryNace2003            CodeCategory = "Nace2003"
	CategoryNace2008            CodeCategory = "Nace2008"
	CategoryNace2025            CodeCategory = "Nace2025"
	CategoryTypeOfAddress       CodeCategory = "TypeOfAddress"
	CategoryClassification      CodeCategory = "Classification"
	CategoryEntityContact       CodeCategory = "EntityContact"
	CategoryContactType         CodeCategory = "ContactType"
)

// AllCategories lists every recognized code category in a fixed order,
// used when loading the code cache and when validating code.csv.
var AllCategories = []CodeCategory{
	CategoryLanguage,
	CategoryTypeOfEnterprise,
	CategoryJuridicalSituation,
	CategoryJuridicalForm,
	CategoryActivityGroup,
	CategoryTypeOfDenomination,
	CategoryNace2003,
	CategoryNace2008,
	CategoryNace2025,
	CategoryTypeOfAddress,
	CategoryClassification,
	CategoryEntityContact,
	CategoryContactType,
}

// NaceCategoryForVersion maps a nace_version CSV value ("2003", "2008",
// "2025") to its code category, or "" if unknown.
func NaceCategoryForVersion(version string) CodeCategory {
	switch version {
	case "2003":
		return CategoryNace2003
	case "2008":
		return CategoryNace2008
	case "2025":
		return CategoryNace2025
	default:
		return ""
	}
}

// Code is a row of the `code` table: one entry per (category, code_value).
type Code struct {
	ID        int64        `db:"id"`
	Category  CodeCategory `db:"category"`
	CodeValue string       `db:"code_value"`
}

// CodeDescription is a row of `code_description`: a language-specific
// description of a Code.
type CodeDescription struct {
	ID          int64
	CodeID      int64
	Language    string
	Description string
}

// DenominationTypeLabel maps a TypeOfDenomination code value to the label
// used in the Company projection's name classification (§4.11).
func DenominationTypeLabel(codeValue string) string {
	switch codeValue {
	case "001":
		return "name"
	case "002":
		return "abbreviation"
	case "003":
		return "commercialName"
	case "004":
		return "branchName"
	default:
		return "unknown"
	}
}
