package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParsePaginationDefaultsAndClamp(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/audit", nil)
	p := ParsePagination(r, 20, 100)
	if p.Limit != 20 || p.Offset != 0 {
		t.Fatalf("expected defaults 20/0, got %+v", p)
	}

	r = httptest.NewRequest("GET", "/api/v1/audit?limit=500&offset=40", nil)
	p = ParsePagination(r, 20, 100)
	if p.Limit != 100 || p.Offset != 40 {
		t.Fatalf("expected clamped 100/40, got %+v", p)
	}
}

func TestParsePaginationIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/audit?limit=abc&offset=-5", nil)
	p := ParsePagination(r, 20, 100)
	if p.Limit != 20 || p.Offset != 0 {
		t.Fatalf("expected garbage values ignored, got %+v", p)
	}
}

func TestParseDateAcceptsBothFormats(t *testing.T) {
	got, err := ParseDate("2026-04-05")
	if err != nil {
		t.Fatalf("ParseDate date-only: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.April || got.Day() != 5 {
		t.Fatalf("unexpected date: %v", got)
	}

	got, err = ParseDate("2026-04-05T09:30:00Z")
	if err != nil {
		t.Fatalf("ParseDate RFC3339: %v", err)
	}
	if got.Hour() != 9 || got.Minute() != 30 {
		t.Fatalf("unexpected time: %v", got)
	}

	if got, err = ParseDate(""); err != nil || !got.IsZero() {
		t.Fatalf("expected zero time for empty value, got %v, %v", got, err)
	}
}
