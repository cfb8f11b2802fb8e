// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"context"
	"database/sql"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/docbuilder"
	"github.com/kbo-data/kbodata/ident"
	"github.com/kbo-data/kbodata/model"
	"github.com/kbo-data/kbodata/store"
)

// Lookup is the identifier-based read planner (C11).
type Lookup struct {
	DB *store.DB
}

// NewLookup creates a Lookup bound to db.
func NewLookup(db *store.DB) *Lookup {
	return &Lookup{DB: db}
}

// GetCompany resolves an enterprise by number and projects its document
// for the requested language. A malformed number surfaces
// apperr.ErrInvalidIdentifier; an absent document returns (nil, nil).
func (l *Lookup) GetCompany(ctx context.Context, enterpriseNumber string, language string) (*Company, error) {
	number, err := ident.Parse(enterpriseNumber)
	if err != nil {
		return nil, err
	}

	var payloadJSON string
	row := l.DB.Conn().QueryRowContext(ctx, "SELECT payload FROM company_document WHERE enterprise_number = ?", number.String())
	if err := row.Scan(&payloadJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: load document for %s: %v", apperr.ErrStoreFailure, number, err)
	}

	var payload docbuilder.Payload
	if err := gojson.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal document for %s: %w", number, err)
	}
	return Project(payload, language), nil
}

// Project turns a stored payload into the caller-facing Company shape,
// per §4.11.
func Project(p docbuilder.Payload, language string) *Company {
	c := &Company{
		EnterpriseNumber:   p.EnterpriseNumber,
		JuridicalSituation: languageFallback(p.JuridicalSituation.Descriptions, language),
		TypeOfEnterprise:   languageFallback(p.TypeOfEnterprise.Descriptions, language),
		StartDate:          p.StartDate,
	}
	if p.JuridicalForm != nil {
		c.JuridicalForm = languageFallback(p.JuridicalForm.Descriptions, language)
	}

	for _, d := range p.Denominations {
		c.Names = append(c.Names, Name{
			Type: model.DenominationTypeLabel(d.TypeOfDenomination.Value),
			Name: d.Value,
		})
	}

	byEntity := make(map[string][]docbuilder.AddressDoc)
	for _, a := range p.Addresses {
		byEntity[a.Entity] = append(byEntity[a.Entity], a)
	}
	entityAddress := func(entity string) Address {
		list := byEntity[entity]
		if len(list) == 0 {
			return Address{}
		}
		a := list[0]
		return Address{
			Type:        languageFallback(a.TypeOfAddress.Descriptions, language),
			Street:      pickLang(a.StreetNL, a.StreetFR, language),
			HouseNumber: a.HouseNumber,
			Box:         a.Box,
			PostalCode:  a.Zipcode,
			City:        pickLang(a.MunicipalityNL, a.MunicipalityFR, language),
			Country:     pickLang(a.CountryNL, a.CountryFR, language),
		}
	}

	c.Addresses = append(c.Addresses, entityAddress(p.EnterpriseNumber))
	for _, e := range p.Establishments {
		c.Addresses = append(c.Addresses, entityAddress(e.Number))
	}
	for _, b := range p.Branches {
		c.Addresses = append(c.Addresses, entityAddress(b.Number))
	}

	for _, ct := range p.Contacts {
		c.Contacts = append(c.Contacts, Contact{
			Type:  languageFallback(ct.ContactType.Descriptions, language),
			Value: ct.Value,
		})
	}

	for _, act := range p.Activities {
		c.Activities = append(c.Activities, Activity{
			Classification: languageFallback(act.Classification.Descriptions, language),
			NaceCode:       act.NaceCode.Value,
			Description:    languageFallback(act.NaceCode.Descriptions, language),
		})
	}

	for _, e := range p.Establishments {
		c.Establishments = append(c.Establishments, e.Number)
	}
	for _, b := range p.Branches {
		c.Branches = append(c.Branches, b.Number)
	}

	return c
}
