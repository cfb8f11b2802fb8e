// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package querybuild

import "testing"

func TestBuildEmptyYieldsTautology(t *testing.T) {
	where, args := New().Build()
	if where != "1=1" || args != nil {
		t.Fatalf("expected (1=1, nil), got (%q, %v)", where, args)
	}
}

func TestLikeAddsWildcardBinding(t *testing.T) {
	where, args := New().Like("d.value", "albert").Build()
	if where != "UPPER(d.value) LIKE UPPER(?)" {
		t.Fatalf("unexpected where clause: %q", where)
	}
	if len(args) != 1 || args[0] != "%albert%" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestFromCriteriaCombinesConjunctively(t *testing.T) {
	where, args := FromCriteria(Criteria{Name: "albert", PostalCode: "3500"})
	want := "UPPER(d.value) LIKE UPPER(?) AND a.zipcode = ?"
	if where != want {
		t.Fatalf("got %q, want %q", where, want)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %v", args)
	}
}

func TestFromCriteriaAllBlankIsTautology(t *testing.T) {
	where, args := FromCriteria(Criteria{})
	if where != "1=1" || args != nil {
		t.Fatalf("expected tautology for empty criteria, got (%q, %v)", where, args)
	}
}
