// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/model"
)

// InsertEnterprises bulk-inserts rows within tx, reusing a single
// prepared statement per §4.6.
func (db *DB) InsertEnterprises(ctx context.Context, tx *sql.Tx, rows []model.Enterprise) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO enterprise (enterprise_number, juridical_situation_id, type_of_enterprise_id, juridical_form_id, juridical_form_cac_id, start_date)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare enterprise insert: %v", apperr.ErrStoreFailure, err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.EnterpriseNumber, r.JuridicalSituationID, r.TypeOfEnterpriseID,
			r.JuridicalFormID, r.JuridicalFormCACID, r.StartDate.Format(dateLayout)); err != nil {
			return n, fmt.Errorf("%w: insert enterprise %s: %v", apperr.ErrStoreFailure, r.EnterpriseNumber, err)
		}
		n++
	}
	return n, nil
}

// InsertEstablishments bulk-inserts rows within tx.
func (db *DB) InsertEstablishments(ctx context.Context, tx *sql.Tx, rows []model.Establishment) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO establishment (establishment_number, start_date, enterprise_number) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare establishment insert: %v", apperr.ErrStoreFailure, err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.EstablishmentNumber, r.StartDate.Format(dateLayout), r.EnterpriseNumber); err != nil {
			return n, fmt.Errorf("%w: insert establishment %s: %v", apperr.ErrStoreFailure, r.EstablishmentNumber, err)
		}
		n++
	}
	return n, nil
}

// InsertBranches bulk-inserts rows within tx.
func (db *DB) InsertBranches(ctx context.Context, tx *sql.Tx, rows []model.Branch) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO branch (id, start_date, enterprise_number) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare branch insert: %v", apperr.ErrStoreFailure, err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.StartDate.Format(dateLayout), r.EnterpriseNumber); err != nil {
			return n, fmt.Errorf("%w: insert branch %d: %v", apperr.ErrStoreFailure, r.ID, err)
		}
		n++
	}
	return n, nil
}

// InsertAddresses bulk-inserts rows within tx.
func (db *DB) InsertAddresses(ctx context.Context, tx *sql.Tx, rows []model.Address) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO address (entity_number, type_of_address_id, country_nl, country_fr, zipcode, municipality_nl, municipality_fr, street_nl, street_fr, house_number, box, extra_info, date_striking_off)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare address insert: %v", apperr.ErrStoreFailure, err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range rows {
		var strikingOff any
		if r.DateStrikingOff != nil {
			strikingOff = r.DateStrikingOff.Format(dateLayout)
		}
		if _, err := stmt.ExecContext(ctx, r.EntityNumber, r.TypeOfAddressID, r.CountryNL, r.CountryFR, r.Zipcode,
			r.MunicipalityNL, r.MunicipalityFR, r.StreetNL, r.StreetFR, r.HouseNumber, r.Box, r.ExtraInfo, strikingOff); err != nil {
			return n, fmt.Errorf("%w: insert address for %s: %v", apperr.ErrStoreFailure, r.EntityNumber, err)
		}
		n++
	}
	return n, nil
}

// InsertDenominations bulk-inserts rows within tx.
func (db *DB) InsertDenominations(ctx context.Context, tx *sql.Tx, rows []model.Denomination) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO denomination (entity_number, language_id, type_of_denomination_id, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare denomination insert: %v", apperr.ErrStoreFailure, err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.EntityNumber, r.LanguageID, r.TypeOfDenominationID, r.Value); err != nil {
			return n, fmt.Errorf("%w: insert denomination for %s: %v", apperr.ErrStoreFailure, r.EntityNumber, err)
		}
		n++
	}
	return n, nil
}

// InsertContacts bulk-inserts rows within tx.
func (db *DB) InsertContacts(ctx context.Context, tx *sql.Tx, rows []model.Contact) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contact (entity_number, entity_contact_id, contact_type_id, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare contact insert: %v", apperr.ErrStoreFailure, err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.EntityNumber, r.EntityContactID, r.ContactTypeID, r.Value); err != nil {
			return n, fmt.Errorf("%w: insert contact for %s: %v", apperr.ErrStoreFailure, r.EntityNumber, err)
		}
		n++
	}
	return n, nil
}

// InsertActivities bulk-inserts rows within tx.
func (db *DB) InsertActivities(ctx context.Context, tx *sql.Tx, rows []model.Activity) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activity (entity_number, activity_group_id, classification_id, nace_code_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare activity insert: %v", apperr.ErrStoreFailure, err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.EntityNumber, r.ActivityGroupID, r.ClassificationID, r.NaceCodeID); err != nil {
			return n, fmt.Errorf("%w: insert activity for %s: %v", apperr.ErrStoreFailure, r.EntityNumber, err)
		}
		n++
	}
	return n, nil
}

const dateLayout = "2006-01-02"
