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

// The *Row types mirror the columns of the KBO CSV bundle exactly (§6.1).
// They are the gocsv unmarshal targets streamed by csvsource.Rows; the
// mapper package turns each into the corresponding relational row type
// (enterprise.go, facts.go), resolving code references through the code
// cache as it goes.

// MetaRow is a row of meta.csv.
type MetaRow struct {
	Variable string `csv:"Variable"`
	Value    string `csv:"Value"`
}

// CodeRow is a row of code.csv.
type CodeRow struct {
	Category    string `csv:"Category"`
	Code        string `csv:"Code"`
	Language    string `csv:"Language"`
	Description string `csv:"Description"`
}

// EnterpriseRow is a row of enterprise.csv.
type EnterpriseRow struct {
	EnterpriseNumber    string `csv:"EnterpriseNumber"`
	Status              string `csv:"Status"`
	JuridicalSituation  string `csv:"JuridicalSituation"`
	TypeOfEnterprise    string `csv:"TypeOfEnterprise"`
	JuridicalForm       string `csv:"JuridicalForm"`
	JuridicalFormCAC    string `csv:"JuridicalFormCAC"`
	StartDate           string `csv:"StartDate"`
}

// EstablishmentRow is a row of establishment.csv.
type EstablishmentRow struct {
	EstablishmentNumber string `csv:"EstablishmentNumber"`
	StartDate           string `csv:"StartDate"`
	EnterpriseNumber    string `csv:"EnterpriseNumber"`
}

// BranchRow is a row of branch.csv.
type BranchRow struct {
	ID               string `csv:"Id"`
	StartDate        string `csv:"StartDate"`
	EnterpriseNumber string `csv:"EnterpriseNumber"`
}

// AddressRow is a row of address.csv.
type AddressRow struct {
	EntityNumber    string `csv:"EntityNumber"`
	TypeOfAddress   string `csv:"TypeOfAddress"`
	CountryNL       string `csv:"CountryNL"`
	CountryFR       string `csv:"CountryFR"`
	Zipcode         string `csv:"Zipcode"`
	MunicipalityNL  string `csv:"MunicipalityNL"`
	MunicipalityFR  string `csv:"MunicipalityFR"`
	StreetNL        string `csv:"StreetNL"`
	StreetFR        string `csv:"StreetFR"`
	HouseNumber     string `csv:"HouseNumber"`
	Box             string `csv:"Box"`
	ExtraInfo       string `csv:"ExtraAddressInfo"`
	DateStrikingOff string `csv:"DateStrikingOff"`
}

// DenominationRow is a row of denomination.csv.
type DenominationRow struct {
	EntityNumber        string `csv:"EntityNumber"`
	Language            string `csv:"Language"`
	TypeOfDenomination  string `csv:"TypeOfDenomination"`
	Denomination        string `csv:"Denomination"`
}

// ContactRow is a row of contact.csv.
type ContactRow struct {
	EntityNumber  string `csv:"EntityNumber"`
	EntityContact string `csv:"EntityContact"`
	ContactType   string `csv:"ContactType"`
	Value         string `csv:"Value"`
}

// ActivityRow is a row of activity.csv.
type ActivityRow struct {
	EntityNumber  string `csv:"EntityNumber"`
	ActivityGroup string `csv:"ActivityGroup"`
	NaceVersion   string `csv:"NaceVersion"`
	NaceCode      string `csv:"NaceCode"`
	Classification string `csv:"Classification"`
}
