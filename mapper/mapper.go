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

// Package mapper turns typed CSV rows into relational row structs,
// resolving code references through a codecache.Cache. A row that fails
// to resolve a required code, or carries a malformed identifier, is
// reported with success=false and a set of human-readable errors; the
// caller is expected to count the failure and move on, never to abort
// the step over it.
package mapper

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/kbo-data/kbodata/codecache"
	"github.com/kbo-data/kbodata/csvsource"
	"github.com/kbo-data/kbodata/ident"
	"github.com/kbo-data/kbodata/model"
)

// parseBranchID parses the numeric branch id column, which the KBO bundle
// encodes as a plain decimal string.
func parseBranchID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid branch id %q: %w", s, err)
	}
	return id, nil
}

// collector accumulates per-row errors the way go-multierror does for
// batch operations elsewhere in this codebase, then flattens them to
// strings for the row result.
type collector struct {
	err *multierror.Error
}

func (c *collector) add(format string, args ...any) {
	c.err = multierror.Append(c.err, fmt.Errorf(format, args...))
}

func (c *collector) messages() []string {
	if c.err == nil {
		return nil
	}
	out := make([]string, len(c.err.Errors))
	for i, e := range c.err.Errors {
		out[i] = e.Error()
	}
	return out
}

func (c *collector) ok() bool {
	return c.err == nil
}

// requireCode resolves codeValue within category, recording an error
// under fieldName when it is blank or unresolvable.
func requireCode(c *collector, cache *codecache.Cache, fieldName string, category model.CodeCategory, codeValue string) int64 {
	if codeValue == "" {
		c.add("%s is required", fieldName)
		return 0
	}
	id, ok := cache.TryGet(category, codeValue)
	if !ok {
		c.add("%s: unresolved code %q in category %s", fieldName, codeValue, category)
		return 0
	}
	return id
}

// optionalCode resolves codeValue within category only when non-blank,
// returning (id, true) on success, (0, true) when the field was blank
// (absent), and (0, false) when present-but-unresolvable.
func optionalCode(c *collector, cache *codecache.Cache, fieldName string, category model.CodeCategory, codeValue string) (int64, bool) {
	if codeValue == "" {
		return 0, true
	}
	id, ok := cache.TryGet(category, codeValue)
	if !ok {
		c.add("%s: unresolved code %q in category %s", fieldName, codeValue, category)
		return 0, false
	}
	return id, true
}

// Enterprise maps an EnterpriseRow to model.Enterprise per §4.5: the
// juridical situation and type of enterprise are always required; the
// juridical form and its CAC counterpart are required only when present.
func Enterprise(row model.EnterpriseRow, cache *codecache.Cache) (model.Enterprise, bool, []string) {
	var c collector

	number, err := ident.Parse(row.EnterpriseNumber)
	if err != nil {
		c.add("enterprise_number: %v", err)
	}

	situationID := requireCode(&c, cache, "juridical_situation", model.CategoryJuridicalSituation, row.JuridicalSituation)
	typeID := requireCode(&c, cache, "type_of_enterprise", model.CategoryTypeOfEnterprise, row.TypeOfEnterprise)

	formID, formOK := optionalCode(&c, cache, "juridical_form", model.CategoryJuridicalForm, row.JuridicalForm)
	cacID, cacOK := optionalCode(&c, cache, "juridical_form_cac", model.CategoryJuridicalForm, row.JuridicalFormCAC)

	startDate, _, err := csvsource.ParseDate(row.StartDate)
	if err != nil {
		c.add("start_date: %v", err)
	}

	if !c.ok() {
		return model.Enterprise{}, false, c.messages()
	}

	e := model.Enterprise{
		EnterpriseNumber:     number.String(),
		JuridicalSituationID: situationID,
		TypeOfEnterpriseID:   typeID,
		StartDate:            startDate,
	}
	if formOK && row.JuridicalForm != "" {
		e.JuridicalFormID = &formID
	}
	if cacOK && row.JuridicalFormCAC != "" {
		e.JuridicalFormCACID = &cacID
	}
	return e, true, nil
}

// Establishment maps an EstablishmentRow; only the identifier is parsed,
// no code lookups apply (§4.5).
func Establishment(row model.EstablishmentRow) (model.Establishment, bool, []string) {
	var c collector

	if _, err := ident.Parse(row.EnterpriseNumber); err != nil {
		c.add("enterprise_number: %v", err)
	}
	if !ident.IsEstablishmentNumber(row.EstablishmentNumber) {
		c.add("establishment_number: %q is not a valid establishment number", row.EstablishmentNumber)
	}
	startDate, _, err := csvsource.ParseDate(row.StartDate)
	if err != nil {
		c.add("start_date: %v", err)
	}

	if !c.ok() {
		return model.Establishment{}, false, c.messages()
	}
	return model.Establishment{
		EstablishmentNumber: row.EstablishmentNumber,
		StartDate:           startDate,
		EnterpriseNumber:    row.EnterpriseNumber,
	}, true, nil
}

// Branch maps a BranchRow; only the identifier is parsed.
func Branch(row model.BranchRow) (model.Branch, bool, []string) {
	var c collector

	if _, err := ident.Parse(row.EnterpriseNumber); err != nil {
		c.add("enterprise_number: %v", err)
	}
	id, err := parseBranchID(row.ID)
	if err != nil {
		c.add("id: %v", err)
	}
	startDate, _, err := csvsource.ParseDate(row.StartDate)
	if err != nil {
		c.add("start_date: %v", err)
	}

	if !c.ok() {
		return model.Branch{}, false, c.messages()
	}
	return model.Branch{
		ID:               id,
		StartDate:        startDate,
		EnterpriseNumber: row.EnterpriseNumber,
	}, true, nil
}

// Address maps an AddressRow; type_of_address is required and must
// resolve.
func Address(row model.AddressRow, cache *codecache.Cache) (model.Address, bool, []string) {
	var c collector

	typeID := requireCode(&c, cache, "type_of_address", model.CategoryTypeOfAddress, row.TypeOfAddress)

	var strikingOff *time.Time
	if t, ok, err := csvsource.ParseDate(row.DateStrikingOff); err != nil {
		c.add("date_striking_off: %v", err)
	} else if ok {
		strikingOff = &t
	}

	if !c.ok() {
		return model.Address{}, false, c.messages()
	}
	return model.Address{
		EntityNumber:    row.EntityNumber,
		TypeOfAddressID: typeID,
		CountryNL:       row.CountryNL,
		CountryFR:       row.CountryFR,
		Zipcode:         row.Zipcode,
		MunicipalityNL:  row.MunicipalityNL,
		MunicipalityFR:  row.MunicipalityFR,
		StreetNL:        row.StreetNL,
		StreetFR:        row.StreetFR,
		HouseNumber:     row.HouseNumber,
		Box:             row.Box,
		ExtraInfo:       row.ExtraInfo,
		DateStrikingOff: strikingOff,
	}, true, nil
}

// Denomination maps a DenominationRow; both type_of_denomination and
// language are required and must resolve.
func Denomination(row model.DenominationRow, cache *codecache.Cache) (model.Denomination, bool, []string) {
	var c collector

	languageID := requireCode(&c, cache, "language", model.CategoryLanguage, row.Language)
	typeID := requireCode(&c, cache, "type_of_denomination", model.CategoryTypeOfDenomination, row.TypeOfDenomination)

	if !c.ok() {
		return model.Denomination{}, false, c.messages()
	}
	return model.Denomination{
		EntityNumber:         row.EntityNumber,
		LanguageID:           languageID,
		TypeOfDenominationID: typeID,
		Value:                row.Denomination,
	}, true, nil
}

// Contact maps a ContactRow; both contact_type and entity_contact are
// required and must resolve.
func Contact(row model.ContactRow, cache *codecache.Cache) (model.Contact, bool, []string) {
	var c collector

	entityContactID := requireCode(&c, cache, "entity_contact", model.CategoryEntityContact, row.EntityContact)
	contactTypeID := requireCode(&c, cache, "contact_type", model.CategoryContactType, row.ContactType)

	if !c.ok() {
		return model.Contact{}, false, c.messages()
	}
	return model.Contact{
		EntityNumber:    row.EntityNumber,
		EntityContactID: entityContactID,
		ContactTypeID:   contactTypeID,
		Value:           row.Value,
	}, true, nil
}

// Activity maps an ActivityRow; nace_version selects which NACE category
// the code is looked up in, per §4.5.
func Activity(row model.ActivityRow, cache *codecache.Cache) (model.Activity, bool, []string) {
	var c collector

	naceCategory := model.NaceCategoryForVersion(row.NaceVersion)
	if naceCategory == "" {
		c.add("nace_version: unsupported value %q", row.NaceVersion)
	}

	groupID := requireCode(&c, cache, "activity_group", model.CategoryActivityGroup, row.ActivityGroup)
	classificationID := requireCode(&c, cache, "classification", model.CategoryClassification, row.Classification)

	var naceID int64
	if naceCategory != "" {
		naceID = requireCode(&c, cache, "nace_code", naceCategory, row.NaceCode)
	}

	if !c.ok() {
		return model.Activity{}, false, c.messages()
	}
	return model.Activity{
		EntityNumber:     row.EntityNumber,
		ActivityGroupID:  groupID,
		ClassificationID: classificationID,
		NaceCodeID:       naceID,
	}, true, nil
}
