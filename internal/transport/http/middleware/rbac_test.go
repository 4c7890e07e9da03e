package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"perfreview/internal/domain/identity"
)

func withUser(r *http.Request, user identity.UserContext) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyUser, user))
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/goals", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(identity.RoleHR, identity.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		role string
		want int
	}{
		{"hr allowed", identity.RoleHR, http.StatusNoContent},
		{"admin allowed", identity.RoleAdmin, http.StatusNoContent},
		{"manager forbidden", identity.RoleManager, http.StatusForbidden},
		{"employee forbidden", identity.RoleEmployee, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodPost, "/review-cycles", nil), identity.UserContext{UserID: "u1", Role: tc.role})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("role %s: expected %d, got %d", tc.role, tc.want, rec.Code)
			}
		})
	}
}

func TestRequireRoleRejectsAnonymous(t *testing.T) {
	handler := RequireRole(identity.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/review-cycles", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
