// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package mapper

import (
	"context"
	"testing"

	"github.com/kbo-data/kbodata/codecache"
	"github.com/kbo-data/kbodata/model"
)

func testCache(t *testing.T) *codecache.Cache {
	t.Helper()
	codes := []model.Code{
		{ID: 1, Category: model.CategoryJuridicalSituation, CodeValue: "001"},
		{ID: 2, Category: model.CategoryTypeOfEnterprise, CodeValue: "1"},
		{ID: 3, Category: model.CategoryJuridicalForm, CodeValue: "014"},
		{ID: 4, Category: model.CategoryTypeOfAddress, CodeValue: "1"},
		{ID: 5, Category: model.CategoryLanguage, CodeValue: "2"},
		{ID: 6, Category: model.CategoryTypeOfDenomination, CodeValue: "001"},
		{ID: 7, Category: model.CategoryEntityContact, CodeValue: "1"},
		{ID: 8, Category: model.CategoryContactType, CodeValue: "EMAIL"},
		{ID: 9, Category: model.CategoryActivityGroup, CodeValue: "006"},
		{ID: 10, Category: model.CategoryClassification, CodeValue: "MAIN"},
		{ID: 11, Category: model.CategoryNace2008, CodeValue: "47111"},
	}
	cache, err := codecache.Load(context.Background(), fakeStore{codes})
	if err != nil {
		t.Fatalf("load cache: %v", err)
	}
	return cache
}

type fakeStore struct {
	codes []model.Code
}

func (f fakeStore) AllCodes(ctx context.Context) ([]model.Code, error) {
	return f.codes, nil
}

func TestEnterpriseMapsValidRow(t *testing.T) {
	cache := testCache(t)
	row := model.EnterpriseRow{
		EnterpriseNumber:  "0403199702",
		JuridicalSituation: "001",
		TypeOfEnterprise:  "1",
		JuridicalForm:     "014",
		StartDate:         "01-01-2000",
	}
	e, ok, errs := Enterprise(row, cache)
	if !ok {
		t.Fatalf("expected success, got errors: %v", errs)
	}
	if e.JuridicalSituationID != 1 || e.TypeOfEnterpriseID != 2 {
		t.Fatalf("unexpected resolved ids: %+v", e)
	}
	if e.JuridicalFormID == nil || *e.JuridicalFormID != 3 {
		t.Fatalf("expected juridical form id 3, got %+v", e.JuridicalFormID)
	}
}

func TestEnterpriseRejectsUnresolvedCode(t *testing.T) {
	cache := testCache(t)
	row := model.EnterpriseRow{
		EnterpriseNumber:  "0403199702",
		JuridicalSituation: "999",
		TypeOfEnterprise:  "1",
		StartDate:         "01-01-2000",
	}
	_, ok, errs := Enterprise(row, cache)
	if ok {
		t.Fatalf("expected failure for unresolved juridical_situation")
	}
	if len(errs) == 0 {
		t.Fatalf("expected at least one error message")
	}
}

func TestActivityRequiresKnownNaceVersion(t *testing.T) {
	cache := testCache(t)
	row := model.ActivityRow{
		EntityNumber:  "0403199702",
		ActivityGroup: "006",
		NaceVersion:   "1999",
		NaceCode:      "47111",
		Classification: "MAIN",
	}
	_, ok, errs := Activity(row, cache)
	if ok {
		t.Fatalf("expected failure for unsupported nace version")
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
}

func TestActivityResolvesNace2008(t *testing.T) {
	cache := testCache(t)
	row := model.ActivityRow{
		EntityNumber:  "0403199702",
		ActivityGroup: "006",
		NaceVersion:   "2008",
		NaceCode:      "47111",
		Classification: "MAIN",
	}
	a, ok, errs := Activity(row, cache)
	if !ok {
		t.Fatalf("expected success, got errors: %v", errs)
	}
	if a.NaceCodeID != 11 {
		t.Fatalf("expected nace code id 11, got %d", a.NaceCodeID)
	}
}

func TestEstablishmentParsesIdentifiersOnly(t *testing.T) {
	row := model.EstablishmentRow{
		EstablishmentNumber: "2123456789",
		StartDate:           "01-01-2000",
		EnterpriseNumber:    "0403199702",
	}
	e, ok, errs := Establishment(row)
	if !ok {
		t.Fatalf("expected success, got errors: %v", errs)
	}
	if e.EstablishmentNumber != "2123456789" {
		t.Fatalf("unexpected establishment number: %s", e.EstablishmentNumber)
	}
}

func TestAddressRequiresTypeOfAddress(t *testing.T) {
	cache := testCache(t)
	row := model.AddressRow{
		EntityNumber: "0403199702",
	}
	_, ok, errs := Address(row, cache)
	if ok {
		t.Fatalf("expected failure when type_of_address is blank")
	}
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}
