// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"testing"

	"github.com/kbo-data/kbodata/docbuilder"
)

func TestProjectAppliesLanguageFallback(t *testing.T) {
	p := docbuilder.Payload{
		EnterpriseNumber: "0403199702",
		JuridicalSituation: docbuilder.CodeRef{
			Descriptions: map[string]string{"FR": "Groupe KBC"},
		},
	}
	c := Project(p, "EN")
	if c.JuridicalSituation != "Groupe KBC" {
		t.Fatalf("expected fallback to FR description, got %q", c.JuridicalSituation)
	}
}

func TestProjectClassifiesDenominationTypes(t *testing.T) {
	p := docbuilder.Payload{
		Denominations: []docbuilder.DenominationDoc{
			{TypeOfDenomination: docbuilder.CodeRef{Value: "001"}, Value: "KBC GROEP"},
			{TypeOfDenomination: docbuilder.CodeRef{Value: "003"}, Value: "KBC"},
		},
	}
	c := Project(p, "NL")
	if len(c.Names) != 2 || c.Names[0].Type != "name" || c.Names[1].Type != "commercialName" {
		t.Fatalf("unexpected names: %+v", c.Names)
	}
}

func TestProjectEmptyAddressSentinel(t *testing.T) {
	c := Project(docbuilder.Payload{}, "NL")
	if len(c.Addresses) != 1 {
		t.Fatalf("expected one empty-address sentinel, got %d", len(c.Addresses))
	}
	if c.Addresses[0] != (Address{}) {
		t.Fatalf("expected zero-value address sentinel, got %+v", c.Addresses[0])
	}
}

func TestProjectPerChildAddressSentinel(t *testing.T) {
	p := docbuilder.Payload{
		EnterpriseNumber: "0403199702",
		Establishments: []docbuilder.ChildRef{
			{Number: "2.123.456.789"}, // has its own address
			{Number: "2.987.654.321"}, // no address: must get the sentinel
		},
		Addresses: []docbuilder.AddressDoc{
			{Entity: "0403199702", Zipcode: "3000", StreetNL: "Bondgenotenlaan"},
			{Entity: "2.123.456.789", Zipcode: "1000", StreetNL: "Grote Markt"},
		},
	}
	c := Project(p, "NL")
	if len(c.Addresses) != 3 {
		t.Fatalf("expected enterprise + 2 establishment addresses, got %d", len(c.Addresses))
	}
	if c.Addresses[0].PostalCode != "3000" {
		t.Fatalf("expected enterprise's own address, got %+v", c.Addresses[0])
	}
	if c.Addresses[1].PostalCode != "1000" {
		t.Fatalf("expected first establishment's own address, got %+v", c.Addresses[1])
	}
	if c.Addresses[2] != (Address{}) {
		t.Fatalf("expected empty-address sentinel for addressless establishment, got %+v", c.Addresses[2])
	}
}
