// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/fts"
	"github.com/kbo-data/kbodata/store"
)

// FullText is the ranked free-text read planner (C12).
type FullText struct {
	DB     *store.DB
	Lookup *Lookup
}

// NewFullText creates a FullText planner bound to db.
func NewFullText(db *store.DB) *FullText {
	return &FullText{DB: db, Lookup: NewLookup(db)}
}

// Search tokenizes text, synthesizes a MATCH expression, ranks candidates
// by weighted BM25 and hydrates the top results in rank order, per
// §4.12. An empty token list or an empty match expression returns an
// empty, non-nil-error result (§4.12 "Edge cases").
func (f *FullText) Search(ctx context.Context, text string, language string, skip, take int) ([]*Company, error) {
	tokens := Tokenize(text)
	match := BuildMatch(tokens)
	if match == "" {
		return nil, nil
	}

	if take < 0 {
		take = 0
	}
	if take > 25 {
		take = 25
	}
	if skip < 0 {
		skip = 0
	}

	weights := make([]string, len(fts.ColumnWeights))
	for i, w := range fts.ColumnWeights {
		weights[i] = fmt.Sprintf("%v", w)
	}
	query := fmt.Sprintf(`
		SELECT m.enterprise_number
		FROM company_fts
		JOIN company_fts_map m ON m.rowid = company_fts.rowid
		WHERE company_fts MATCH ?
		ORDER BY bm25(company_fts, %s) ASC, m.enterprise_number ASC
		LIMIT ? OFFSET ?`, strings.Join(weights, ", "))

	rows, err := f.DB.Conn().QueryContext(ctx, query, match, take, skip)
	if err != nil {
		return nil, fmt.Errorf("%w: fulltext search: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: scan fulltext match: %v", apperr.ErrStoreFailure, err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate fulltext matches: %v", apperr.ErrStoreFailure, err)
	}

	results := make([]*Company, 0, len(numbers))
	for _, n := range numbers {
		c, err := f.Lookup.GetCompany(ctx, n, language)
		if err != nil {
			return nil, err
		}
		if c != nil {
			results = append(results, c)
		}
	}
	return results, nil
}
