// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"context"
	"fmt"

	"github.com/kbo-data/kbodata/apperr"
	"github.com/kbo-data/kbodata/querybuild"
)

// SearchStructured implements the simple LIKE-based path of §6.3: it
// joins enterprises against their denominations and addresses and
// applies the predicate assembled by querybuild. This path gets no
// ranking or tokenization treatment, per the explicit non-goal.
func (f *FullText) SearchStructured(ctx context.Context, criteria querybuild.Criteria, language string, skip, take int) ([]*Company, error) {
	if take < 0 {
		take = 0
	}
	if take > 25 {
		take = 25
	}
	if skip < 0 {
		skip = 0
	}

	where, args := querybuild.FromCriteria(criteria)
	query := fmt.Sprintf(`
		SELECT DISTINCT e.enterprise_number
		FROM enterprise e
		LEFT JOIN denomination d ON d.entity_number = e.enterprise_number
		LEFT JOIN address a ON a.entity_number = e.enterprise_number
		WHERE %s
		ORDER BY e.enterprise_number ASC
		LIMIT ? OFFSET ?`, where)
	args = append(args, take, skip)

	rows, err := f.DB.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: structured search: %v", apperr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: scan structured match: %v", apperr.ErrStoreFailure, err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate structured matches: %v", apperr.ErrStoreFailure, err)
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
