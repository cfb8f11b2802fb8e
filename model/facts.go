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

import "time"

// Address is a row of the `address` table. The composite primary key is
// (EntityNumber, TypeOfAddressID).
type Address struct {
	EntityNumber    string
	TypeOfAddressID int64

	CountryNL       string
	CountryFR       string
	Zipcode         string
	MunicipalityNL  string
	MunicipalityFR  string
	StreetNL        string
	StreetFR        string
	HouseNumber     string
	Box             string
	ExtraInfo       string
	DateStrikingOff *time.Time
}

// Denomination is a row of the `denomination` table.
type Denomination struct {
	ID                  int64
	EntityNumber        string
	LanguageID          int64
	TypeOfDenominationID int64
	Value               string
}

// Contact is a row of the `contact` table.
type Contact struct {
	ID             int64
	EntityNumber   string
	EntityContactID int64
	ContactTypeID  int64
	Value          string
}

// Activity is a row of the `activity` table.
type Activity struct {
	ID               int64
	EntityNumber     string
	ActivityGroupID  int64
	ClassificationID int64
	NaceCodeID       int64
}

// Meta is a row of the `meta` table: a simple key/value store for
// operational variables (schema version, last import timestamps, ...).
type Meta struct {
	Variable string
	Value    string
}
