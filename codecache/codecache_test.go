// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package codecache

import (
	"context"
	"testing"

	"github.com/kbo-data/kbodata/model"
)

type fakeStore struct {
	codes []model.Code
}

func (f fakeStore) AllCodes(ctx context.Context) ([]model.Code, error) {
	return f.codes, nil
}

func TestLoadAndTryGet(t *testing.T) {
	store := fakeStore{codes: []model.Code{
		{ID: 1, Category: model.CategoryLanguage, CodeValue: "1"},
		{ID: 2, Category: model.CategoryLanguage, CodeValue: "2"},
		{ID: 3, Category: model.CategoryTypeOfEnterprise, CodeValue: "1"},
	}}

	cache, err := Load(context.Background(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", cache.Len())
	}

	id, ok := cache.TryGet(model.CategoryLanguage, "2")
	if !ok || id != 2 {
		t.Fatalf("expected (2, true), got (%d, %v)", id, ok)
	}

	// Same code value, different category, must not collide.
	id, ok = cache.TryGet(model.CategoryTypeOfEnterprise, "1")
	if !ok || id != 3 {
		t.Fatalf("expected (3, true), got (%d, %v)", id, ok)
	}

	if _, ok := cache.TryGet(model.CategoryLanguage, "unknown"); ok {
		t.Fatalf("expected unknown code to miss")
	}

	if _, ok := cache.TryGet(model.CategoryLanguage, ""); ok {
		t.Fatalf("expected empty code value to miss")
	}
}
