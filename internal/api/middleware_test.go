package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminAuth(t *testing.T) {
	var actor string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := AdminAuth("secret-token")(next)

	cases := []struct {
		name   string
		header string
		token  string
		want   int
	}{
		{"no header", "", "secret-token", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", "secret-token", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", "secret-token", http.StatusForbidden},
		{"right token", "Bearer secret-token", "secret-token", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin/api/jobs", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: got status %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
	if actor != "admin" {
		t.Fatalf("expected admin actor in context, got %q", actor)
	}
}

func TestAdminAuth_EmptyConfiguredToken(t *testing.T) {
	protected := AdminAuth("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with empty configured token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", rec.Code)
	}
}
