// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package docbuilder

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/store"
)

// Builder rebuilds company_document rows from the relational store.
type Builder struct {
	DB *store.DB

	codeCache map[int64]CodeRef
}

// NewBuilder creates a Builder bound to db.
func NewBuilder(db *store.DB) *Builder {
	return &Builder{DB: db, codeCache: make(map[int64]CodeRef)}
}

// RebuildAll regenerates company_document for every enterprise, the full
// import path of §3.5. report, if non-nil, is called periodically with the
// running count of documents written.
func (b *Builder) RebuildAll(ctx context.Context, report func(int)) (int, error) {
	rows, err := b.DB.Conn().QueryContext(ctx, "SELECT enterprise_number FROM enterprise ORDER BY enterprise_number")
	if err != nil {
		return 0, fmt.Errorf("%w: list enterprises: %v", apperr.ErrStoreFailure, err)
	}
	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: scan enterprise number: %v", apperr.ErrStoreFailure, err)
		}
		numbers = append(numbers, n)
	}
	rows.Close()
	return b.Rebuild(ctx, numbers, report)
}

// rebuildReportBatch is how often Rebuild calls back with its running
// document count.
const rebuildReportBatch = 200

// Rebuild regenerates company_document for exactly the given set of
// enterprise numbers, the incremental path of §4.9: the caller is
// responsible for computing the impacted set S per §9's closure rule.
// report, if non-nil, is called periodically with the running count.
func (b *Builder) Rebuild(ctx context.Context, enterpriseNumbers []string, report func(int)) (int, error) {
	if len(enterpriseNumbers) == 0 {
		return 0, nil
	}

	tx, err := b.DB.Conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin rebuild: %v", apperr.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	n := 0
	for _, number := range enterpriseNumbers {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}

		payload, found, err := b.assemble(ctx, tx, number)
		if err != nil {
			return n, err
		}
		if !found {
			continue
		}

		encoded, err := gojson.Marshal(payload)
		if err != nil {
			return n, fmt.Errorf("marshal payload for %s: %w", number, err)
		}
		sum := sha256.Sum256(encoded)
		etag := hex.EncodeToString(sum[:])

		_, err = tx.ExecContext(ctx, `
			INSERT INTO company_document (enterprise_number, payload, json_version, etag, updated_at)
			VALUES (?, ?, 1, ?, ?)
			ON CONFLICT (enterprise_number) DO UPDATE SET
				payload = excluded.payload, etag = excluded.etag, updated_at = excluded.updated_at`,
			number, string(encoded), etag, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return n, fmt.Errorf("%w: upsert company_document for %s: %v", apperr.ErrStoreFailure, number, err)
		}
		n++
		if report != nil && n%rebuildReportBatch == 0 {
			report(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("%w: commit rebuild: %v", apperr.ErrStoreFailure, err)
	}
	if report != nil && n > 0 {
		report(n)
	}
	return n, nil
}

func (b *Builder) assemble(ctx context.Context, tx *sql.Tx, enterpriseNumber string) (Payload, bool, error) {
	var situationID, typeID int64
	var formID, cacID sql.NullInt64
	var startDate string
	row := tx.QueryRowContext(ctx, `
		SELECT juridical_situation_id, type_of_enterprise_id, juridical_form_id, juridical_form_cac_id, start_date
		FROM enterprise WHERE enterprise_number = ?`, enterpriseNumber)
	if err := row.Scan(&situationID, &typeID, &formID, &cacID, &startDate); err != nil {
		if err == sql.ErrNoRows {
			return Payload{}, false, nil
		}
		return Payload{}, false, fmt.Errorf("%w: load enterprise %s: %v", apperr.ErrStoreFailure, enterpriseNumber, err)
	}

	situation, err := b.codeRef(ctx, tx, situationID)
	if err != nil {
		return Payload{}, false, err
	}
	typeOf, err := b.codeRef(ctx, tx, typeID)
	if err != nil {
		return Payload{}, false, err
	}

	p := Payload{
		EnterpriseNumber:   enterpriseNumber,
		JuridicalSituation: situation,
		TypeOfEnterprise:   typeOf,
		StartDate:          startDate,
	}
	if formID.Valid {
		ref, err := b.codeRef(ctx, tx, formID.Int64)
		if err != nil {
			return Payload{}, false, err
		}
		p.JuridicalForm = &ref
	}
	if cacID.Valid {
		ref, err := b.codeRef(ctx, tx, cacID.Int64)
		if err != nil {
			return Payload{}, false, err
		}
		p.JuridicalFormCAC = &ref
	}

	establishments, err := b.children(ctx, tx, `SELECT establishment_number, start_date FROM establishment WHERE enterprise_number = ? ORDER BY establishment_number`, enterpriseNumber)
	if err != nil {
		return Payload{}, false, err
	}
	branches, err := b.children(ctx, tx, `SELECT id, start_date FROM branch WHERE enterprise_number = ? ORDER BY id`, enterpriseNumber)
	if err != nil {
		return Payload{}, false, err
	}
	p.Establishments = establishments
	p.Branches = branches

	entityNumbers := []string{enterpriseNumber}
	for _, e := range establishments {
		entityNumbers = append(entityNumbers, e.Number)
	}
	for _, br := range branches {
		entityNumbers = append(entityNumbers, br.Number)
	}

	if p.Denominations, err = b.denominations(ctx, tx, entityNumbers); err != nil {
		return Payload{}, false, err
	}
	if p.Addresses, err = b.addresses(ctx, tx, entityNumbers); err != nil {
		return Payload{}, false, err
	}
	if p.Contacts, err = b.contacts(ctx, tx, entityNumbers); err != nil {
		return Payload{}, false, err
	}
	if p.Activities, err = b.activities(ctx, tx, entityNumbers); err != nil {
		return Payload{}, false, err
	}

	p.FTS = buildFTS(p)
	return p, true, nil
}

func (b *Builder) children(ctx context.Context, tx *sql.Tx, query, enterpriseNumber string) ([]ChildRef, error) {
	rows, err := tx.QueryContext(ctx, query, enterpriseNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: query children: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []ChildRef
	for rows.Next() {
		var number, startDate string
		if err := rows.Scan(&number, &startDate); err != nil {
			return nil, fmt.Errorf("%w: scan child: %v", apperr.ErrStoreFailure, err)
		}
		out = append(out, ChildRef{Number: number, StartDate: startDate})
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func (b *Builder) denominations(ctx context.Context, tx *sql.Tx, entityNumbers []string) ([]DenominationDoc, error) {
	query := fmt.Sprintf(`
		SELECT language_id, type_of_denomination_id, value FROM denomination
		WHERE entity_number IN (%s)`, placeholders(len(entityNumbers)))
	rows, err := tx.QueryContext(ctx, query, toArgs(entityNumbers)...)
	if err != nil {
		return nil, fmt.Errorf("%w: query denominations: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []DenominationDoc
	for rows.Next() {
		var langID, typeID int64
		var value string
		if err := rows.Scan(&langID, &typeID, &value); err != nil {
			return nil, fmt.Errorf("%w: scan denomination: %v", apperr.ErrStoreFailure, err)
		}
		lang, err := b.codeRef(ctx, tx, langID)
		if err != nil {
			return nil, err
		}
		typ, err := b.codeRef(ctx, tx, typeID)
		if err != nil {
			return nil, err
		}
		out = append(out, DenominationDoc{Language: lang, TypeOfDenomination: typ, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language.Value < out[j].Language.Value })
	return out, rows.Err()
}

func (b *Builder) addresses(ctx context.Context, tx *sql.Tx, entityNumbers []string) ([]AddressDoc, error) {
	query := fmt.Sprintf(`
		SELECT entity_number, type_of_address_id, country_nl, country_fr, zipcode, municipality_nl, municipality_fr,
		       street_nl, street_fr, house_number, box, extra_info, date_striking_off
		FROM address WHERE entity_number IN (%s)`, placeholders(len(entityNumbers)))
	rows, err := tx.QueryContext(ctx, query, toArgs(entityNumbers)...)
	if err != nil {
		return nil, fmt.Errorf("%w: query addresses: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []AddressDoc
	for rows.Next() {
		var entity string
		var typeID int64
		var countryNL, countryFR, zipcode, muniNL, muniFR, streetNL, streetFR, houseNumber, box, extra string
		var strikingOff sql.NullString
		if err := rows.Scan(&entity, &typeID, &countryNL, &countryFR, &zipcode, &muniNL, &muniFR, &streetNL, &streetFR, &houseNumber, &box, &extra, &strikingOff); err != nil {
			return nil, fmt.Errorf("%w: scan address: %v", apperr.ErrStoreFailure, err)
		}
		typ, err := b.codeRef(ctx, tx, typeID)
		if err != nil {
			return nil, err
		}
		doc := AddressDoc{
			Entity:         entity,
			TypeOfAddress:  typ,
			CountryNL:      countryNL,
			CountryFR:      countryFR,
			Zipcode:        zipcode,
			MunicipalityNL: muniNL,
			MunicipalityFR: muniFR,
			StreetNL:       streetNL,
			StreetFR:       streetFR,
			HouseNumber:    houseNumber,
			Box:            box,
			ExtraInfo:      extra,
		}
		if strikingOff.Valid {
			doc.DateStrikingOff = &strikingOff.String
		}
		out = append(out, doc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TypeOfAddress.ID < out[j].TypeOfAddress.ID })
	return out, rows.Err()
}

func (b *Builder) contacts(ctx context.Context, tx *sql.Tx, entityNumbers []string) ([]ContactDoc, error) {
	query := fmt.Sprintf(`
		SELECT entity_contact_id, contact_type_id, value FROM contact
		WHERE entity_number IN (%s)`, placeholders(len(entityNumbers)))
	rows, err := tx.QueryContext(ctx, query, toArgs(entityNumbers)...)
	if err != nil {
		return nil, fmt.Errorf("%w: query contacts: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []ContactDoc
	for rows.Next() {
		var entityContactID, contactTypeID int64
		var value string
		if err := rows.Scan(&entityContactID, &contactTypeID, &value); err != nil {
			return nil, fmt.Errorf("%w: scan contact: %v", apperr.ErrStoreFailure, err)
		}
		entityContact, err := b.codeRef(ctx, tx, entityContactID)
		if err != nil {
			return nil, err
		}
		contactType, err := b.codeRef(ctx, tx, contactTypeID)
		if err != nil {
			return nil, err
		}
		out = append(out, ContactDoc{EntityContact: entityContact, ContactType: contactType, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, rows.Err()
}

func (b *Builder) activities(ctx context.Context, tx *sql.Tx, entityNumbers []string) ([]ActivityDoc, error) {
	query := fmt.Sprintf(`
		SELECT activity_group_id, classification_id, nace_code_id FROM activity
		WHERE entity_number IN (%s)`, placeholders(len(entityNumbers)))
	rows, err := tx.QueryContext(ctx, query, toArgs(entityNumbers)...)
	if err != nil {
		return nil, fmt.Errorf("%w: query activities: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []ActivityDoc
	for rows.Next() {
		var groupID, classificationID, naceID int64
		if err := rows.Scan(&groupID, &classificationID, &naceID); err != nil {
			return nil, fmt.Errorf("%w: scan activity: %v", apperr.ErrStoreFailure, err)
		}
		group, err := b.codeRef(ctx, tx, groupID)
		if err != nil {
			return nil, err
		}
		classification, err := b.codeRef(ctx, tx, classificationID)
		if err != nil {
			return nil, err
		}
		nace, err := b.codeRef(ctx, tx, naceID)
		if err != nil {
			return nil, err
		}
		out = append(out, ActivityDoc{ActivityGroup: group, Classification: classification, NaceCode: nace})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NaceCode.Value < out[j].NaceCode.Value })
	return out, rows.Err()
}

// codeRef resolves a code id into its value plus description map,
// memoizing within a single rebuild run since the same codes are
// referenced by many enterprises.
func (b *Builder) codeRef(ctx context.Context, tx *sql.Tx, codeID int64) (CodeRef, error) {
	if ref, ok := b.codeCache[codeID]; ok {
		return ref, nil
	}

	var value string
	if err := tx.QueryRowContext(ctx, "SELECT code_value FROM code WHERE id = ?", codeID).Scan(&value); err != nil {
		return CodeRef{}, fmt.Errorf("%w: load code %d: %v", apperr.ErrStoreFailure, codeID, err)
	}

	descriptions := make(map[string]string)
	rows, err := tx.QueryContext(ctx, "SELECT language, description FROM code_description WHERE code_id = ?", codeID)
	if err != nil {
		return CodeRef{}, fmt.Errorf("%w: load code descriptions for %d: %v", apperr.ErrStoreFailure, codeID, err)
	}
	for rows.Next() {
		var lang, desc string
		if err := rows.Scan(&lang, &desc); err != nil {
			rows.Close()
			return CodeRef{}, fmt.Errorf("%w: scan code description: %v", apperr.ErrStoreFailure, err)
		}
		descriptions[lang] = desc
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return CodeRef{}, fmt.Errorf("%w: code description rows: %v", apperr.ErrStoreFailure, err)
	}

	ref := CodeRef{ID: codeID, Value: value, Descriptions: descriptions}
	b.codeCache[codeID] = ref
	return ref, nil
}

// buildFTS flattens the payload into the search-index fields of §3.3.
// The primary (first) denomination/address win; a denomination typed
// "003" (commercialName) is preferred for the commercial-name field.
func buildFTS(p Payload) FTS {
	f := FTS{}
	for _, d := range p.Denominations {
		switch d.TypeOfDenomination.Value {
		case "001":
			if f.CompanyName == "" {
				f.CompanyName = d.Value
			}
		case "003":
			if f.CommercialName == "" {
				f.CommercialName = d.Value
			}
		}
	}
	if f.CompanyName == "" && len(p.Denominations) > 0 {
		f.CompanyName = p.Denominations[0].Value
	}
	if len(p.Addresses) > 0 {
		a := p.Addresses[0]
		f.Street = LangPair{NL: a.StreetNL, FR: a.StreetFR}
		f.City = LangPair{NL: a.MunicipalityNL, FR: a.MunicipalityFR}
		f.PostalCode = a.Zipcode
	}
	for _, act := range p.Activities {
		if f.Activity.NL == "" {
			f.Activity.NL = act.NaceCode.Descriptions["NL"]
		}
		if f.Activity.FR == "" {
			f.Activity.FR = act.NaceCode.Descriptions["FR"]
		}
		if f.Activity.DE == "" {
			f.Activity.DE = act.NaceCode.Descriptions["DE"]
		}
		if f.Activity.EN == "" {
			f.Activity.EN = act.NaceCode.Descriptions["EN"]
		}
	}
	return f
}
