// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package orchestrator

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/csvsource"
	"github.com/kbo-data/kbodata/model"
	"github.com/kbo-data/kbodata/store"
)

// impactedEnterprises computes the closure *S* of DESIGN NOTES §9: every
// enterprise whose projected document could have changed as a result of
// this incremental run. It must run after the fact-table steps have
// committed, so entity_number references resolve against the post-ingest
// state of establishment/branch.
//
// The closure is the union of:
//   - enterprise numbers directly touched by enterprise_insert/delete.csv
//   - enterprise numbers owning an establishment or branch touched by
//     establishment_/branch_insert/delete.csv
//   - enterprise numbers owning the entity_number referenced by any row of
//     address/denomination/contact/activity's insert/delete files, resolved
//     through the (now up to date) establishment and branch tables
func impactedEnterprises(ctx context.Context, db *store.DB, folder string, only []string) ([]string, error) {
	wanted := toTableSet(only)
	wants := func(table string) bool { return wanted == nil || wanted[table] }

	set := make(map[string]struct{})
	add := func(n string) {
		if n != "" {
			set[n] = struct{}{}
		}
	}

	for _, suffix := range []string{"_insert.csv", "_delete.csv"} {
		if wants("enterprise") {
			for row := range csvsource.Rows[model.EnterpriseRow](ctx, filepath.Join(folder, "enterprise"+suffix)) {
				add(row.EnterpriseNumber)
			}
		}
		if wants("establishment") {
			for row := range csvsource.Rows[model.EstablishmentRow](ctx, filepath.Join(folder, "establishment"+suffix)) {
				add(row.EnterpriseNumber)
			}
		}
		if wants("branch") {
			for row := range csvsource.Rows[model.BranchRow](ctx, filepath.Join(folder, "branch"+suffix)) {
				add(row.EnterpriseNumber)
			}
		}
	}

	entityNumbers := make(map[string]struct{})
	collect := func(table string, n string) {
		if wants(table) && n != "" {
			entityNumbers[n] = struct{}{}
		}
	}
	for _, suffix := range []string{"_insert.csv", "_delete.csv"} {
		for row := range csvsource.Rows[model.AddressRow](ctx, filepath.Join(folder, "address"+suffix)) {
			collect("address", row.EntityNumber)
		}
		for row := range csvsource.Rows[model.DenominationRow](ctx, filepath.Join(folder, "denomination"+suffix)) {
			collect("denomination", row.EntityNumber)
		}
		for row := range csvsource.Rows[model.ContactRow](ctx, filepath.Join(folder, "contact"+suffix)) {
			collect("contact", row.EntityNumber)
		}
		for row := range csvsource.Rows[model.ActivityRow](ctx, filepath.Join(folder, "activity"+suffix)) {
			collect("activity", row.EntityNumber)
		}
	}

	owners, err := resolveOwningEnterprises(ctx, db, entityNumbers)
	if err != nil {
		return nil, err
	}
	for _, o := range owners {
		add(o)
	}

	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// resolveOwningEnterprises maps a set of entity_number values (each either
// an enterprise number, an establishment number or a branch id) to the
// enterprise number that owns it, consulting the relational store since the
// CSV bundle never states the relationship directly for an arbitrary
// entity_number.
func resolveOwningEnterprises(ctx context.Context, db *store.DB, entityNumbers map[string]struct{}) ([]string, error) {
	var out []string
	for n := range entityNumbers {
		owner, found, err := owningEnterprise(ctx, db, n)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, owner)
		}
	}
	return out, nil
}

func owningEnterprise(ctx context.Context, db *store.DB, entityNumber string) (string, bool, error) {
	var owner string

	row := db.Conn().QueryRowContext(ctx, "SELECT enterprise_number FROM enterprise WHERE enterprise_number = ?", entityNumber)
	switch err := row.Scan(&owner); {
	case err == nil:
		return owner, true, nil
	case err != sql.ErrNoRows:
		return "", false, fmt.Errorf("%w: resolve enterprise owner for %s: %v", apperr.ErrStoreFailure, entityNumber, err)
	}

	row = db.Conn().QueryRowContext(ctx, "SELECT enterprise_number FROM establishment WHERE establishment_number = ?", entityNumber)
	switch err := row.Scan(&owner); {
	case err == nil:
		return owner, true, nil
	case err != sql.ErrNoRows:
		return "", false, fmt.Errorf("%w: resolve establishment owner for %s: %v", apperr.ErrStoreFailure, entityNumber, err)
	}

	id, convErr := strconv.ParseInt(entityNumber, 10, 64)
	if convErr != nil {
		return "", false, nil
	}
	row = db.Conn().QueryRowContext(ctx, "SELECT enterprise_number FROM branch WHERE id = ?", id)
	switch err := row.Scan(&owner); {
	case err == nil:
		return owner, true, nil
	case err != sql.ErrNoRows:
		return "", false, fmt.Errorf("%w: resolve branch owner for %s: %v", apperr.ErrStoreFailure, entityNumber, err)
	}

	return "", false, nil
}
