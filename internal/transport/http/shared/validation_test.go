package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestCheckStructReportsJSONFieldNames(t *testing.T) {
	issues := CheckStruct(loginPayload{Email: "not-an-email"})
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(issues), issues)
	}
	byField := map[string]string{}
	for _, issue := range issues {
		byField[issue.Field] = issue.Reason
	}
	if byField["email"] != "must be a valid email address" {
		t.Fatalf("unexpected email reason: %q", byField["email"])
	}
	if byField["password"] != "is required" {
		t.Fatalf("unexpected password reason: %q", byField["password"])
	}
}

func TestCheckStructPassesValidPayload(t *testing.T) {
	issues := CheckStruct(loginPayload{Email: "hr@example.com", Password: "secret"})
	if issues != nil {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	if Reject(rec, "req-1", nil) {
		t.Fatal("expected no rejection for empty issue list")
	}

	rec = httptest.NewRecorder()
	if !Reject(rec, "req-1", []ValidationIssue{{Field: "name", Reason: "is required"}}) {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Success {
		t.Fatal("expected success=false")
	}
	if envelope.Error.Code != "validation_error" {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
	if len(envelope.Error.Details.Fields) != 1 || envelope.Error.Details.Fields[0].Field != "name" {
		t.Fatalf("unexpected details: %+v", envelope.Error.Details.Fields)
	}
	if envelope.RequestID != "req-1" {
		t.Fatalf("unexpected request id: %s", envelope.RequestID)
	}
}
