// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package healthcheck

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStartSuccessFailHitExpectedPaths(t *testing.T) {
	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := newWithBase(server.URL, "test-uuid")
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Success("3 imported"); err != nil {
		t.Fatalf("success: %v", err)
	}
	if err := p.Fail("boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	want := []string{"/test-uuid/start", "/test-uuid", "/test-uuid/fail"}
	if len(gotPaths) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), gotPaths)
	}
	for i, p := range want {
		if gotPaths[i] != p {
			t.Fatalf("request %d: expected path %q, got %q", i, p, gotPaths[i])
		}
	}
}

func TestPingIsNoOpWithoutUUID(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := newWithBase(server.URL, "")
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if called {
		t.Fatalf("expected no request to be made when uuid is blank")
	}
}

func TestPingSurfacesNon200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "nope")
	}))
	defer server.Close()

	p := newWithBase(server.URL, "test-uuid")
	if err := p.Success(""); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}
