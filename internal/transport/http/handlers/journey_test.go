package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"perfreview/internal/app/server"
	"perfreview/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		Addr:               ":0",
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		RunMigrations:      true,
		RunSeed:            true,
		MigrationsDir:      "../../../../migrations",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedDemoData:       true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     false,
		ApproverRoles:      []string{"hr", "admin"},
	}
}

func TestReviewCalibrationJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.DB.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	managerToken := login(t, client, ts.URL, "manager@example.com", cfg.SeedAdminPassword)
	alexToken := login(t, client, ts.URL, "alex@example.com", cfg.SeedAdminPassword)
	samToken := login(t, client, ts.URL, "sam@example.com", cfg.SeedAdminPassword)

	managerEmpID := employeeID(t, app, "manager@example.com")
	alexEmpID := employeeID(t, app, "alex@example.com")
	samEmpID := employeeID(t, app, "sam@example.com")

	techID := competencyID(t, app, "Technical Skills")
	commID := competencyID(t, app, "Communication")

	templateID := createTemplate(t, client, ts.URL, adminToken)
	cycleID := createCycle(t, client, ts.URL, adminToken, templateID, alexEmpID, managerEmpID, samEmpID)

	activated := postJSON(t, client, ts.URL+"/api/v1/review-cycles/"+cycleID+"/activate", adminToken, nil, http.StatusOK)
	if status := stringField(t, activated, "status"); status != "active" {
		t.Fatalf("expected active cycle, got %s", status)
	}

	var details struct {
		Review struct {
			ID string `json:"id"`
		} `json:"review"`
		OverallStatus string `json:"overallStatus"`
	}
	decodeData(t, getJSON(t, client, ts.URL+"/api/v1/reviews/by-cycle/"+cycleID+"/"+alexEmpID, adminToken), &details)
	reviewID := details.Review.ID
	if reviewID == "" {
		t.Fatal("expected a materialized review for the roster entry")
	}

	goalRaw := postJSON(t, client, ts.URL+"/api/v1/goals", alexToken, map[string]any{
		"title":     "Ship the billing migration",
		"kind":      "objective",
		"startDate": "2026-01-01",
		"endDate":   "2026-03-31",
		"weightage": 50,
	}, http.StatusCreated)
	goalID := stringField(t, goalRaw, "id")

	// The owner's manager may drive progress on a report's goal.
	progressed := putJSON(t, client, ts.URL+"/api/v1/goals/"+goalID+"/progress", managerToken, map[string]any{
		"progress": 40,
	}, http.StatusOK)
	var progressedGoal struct {
		Progress float64 `json:"progress"`
		Status   string  `json:"status"`
	}
	decodeData(t, progressed, &progressedGoal)
	if progressedGoal.Progress != 40 || progressedGoal.Status != "in-progress" {
		t.Fatalf("expected manager-driven progress 40/in-progress, got %+v", progressedGoal)
	}

	answers := map[string]any{
		"responses": []map[string]string{
			{"sectionId": "s1", "questionId": "q1", "value": "4"},
			{"sectionId": "s1", "questionId": "q2", "value": "Shipped the billing migration"},
		},
		"comments": "solid quarter",
	}
	postJSON(t, client, ts.URL+"/api/v1/reviews/"+reviewID+"/self", alexToken, answers, http.StatusOK)
	postJSON(t, client, ts.URL+"/api/v1/reviews/"+reviewID+"/manager", managerToken, answers, http.StatusOK)
	submitted := postJSON(t, client, ts.URL+"/api/v1/reviews/"+reviewID+"/peer", samToken, answers, http.StatusOK)

	var submittedDetails struct {
		OverallStatus string `json:"overallStatus"`
	}
	decodeData(t, submitted, &submittedDetails)
	if submittedDetails.OverallStatus != "completed" {
		t.Fatalf("expected completed review after all submissions, got %s", submittedDetails.OverallStatus)
	}

	ratingBody := map[string]any{
		"employeeId": alexEmpID,
		"cycleId":    cycleID,
		"scores": []map[string]any{
			{"competencyId": techID, "score": 4, "weightage": 30},
			{"competencyId": commID, "score": 5, "weightage": 70},
		},
	}
	ratingRaw := postJSON(t, client, ts.URL+"/api/v1/ratings", managerToken, ratingBody, http.StatusCreated)
	var submittedRating struct {
		ID          string  `json:"id"`
		Status      string  `json:"status"`
		FinalRating float64 `json:"finalRating"`
	}
	decodeData(t, ratingRaw, &submittedRating)
	if submittedRating.Status != "submitted" {
		t.Fatalf("expected submitted rating, got %s", submittedRating.Status)
	}
	if submittedRating.FinalRating != 4.7 {
		t.Fatalf("expected weighted final rating 4.7, got %v", submittedRating.FinalRating)
	}

	approved := postJSON(t, client, ts.URL+"/api/v1/ratings/"+submittedRating.ID+"/approve", adminToken, nil, http.StatusOK)
	if status := stringField(t, approved, "status"); status != "approved" {
		t.Fatalf("expected approved rating, got %s", status)
	}

	calRaw := postJSON(t, client, ts.URL+"/api/v1/calibrations", adminToken, map[string]string{
		"employeeId": alexEmpID,
		"cycleId":    cycleID,
	}, http.StatusCreated)
	var cal struct {
		ID             string  `json:"id"`
		OriginalRating float64 `json:"originalRating"`
	}
	decodeData(t, calRaw, &cal)
	if cal.OriginalRating != 4.7 {
		t.Fatalf("expected calibration to capture the approved rating, got %v", cal.OriginalRating)
	}

	postJSON(t, client, ts.URL+"/api/v1/calibrations/"+cal.ID+"/propose", adminToken, map[string]any{
		"proposedRating": 4.5,
		"justification":  "aligning with the engineering band",
	}, http.StatusOK)

	decided := postJSON(t, client, ts.URL+"/api/v1/calibrations/"+cal.ID+"/decide", adminToken, map[string]any{
		"approve": true,
		"reason":  "panel consensus",
	}, http.StatusOK)
	if status := stringField(t, decided, "status"); status != "approved" {
		t.Fatalf("expected approved calibration, got %s", status)
	}
	if reason := stringField(t, decided, "decideReason"); reason != "panel consensus" {
		t.Fatalf("expected decide reason to persist, got %q", reason)
	}

	var afterCal struct {
		Snapshots []struct {
			Value  float64 `json:"value"`
			Source string  `json:"source"`
		} `json:"snapshots"`
	}
	decodeData(t, getJSON(t, client, ts.URL+"/api/v1/ratings/"+submittedRating.ID, adminToken), &afterCal)
	if len(afterCal.Snapshots) != 2 {
		t.Fatalf("expected two rating snapshots, got %d", len(afterCal.Snapshots))
	}
	last := afterCal.Snapshots[len(afterCal.Snapshots)-1]
	if last.Source != "calibration" || last.Value != 4.5 {
		t.Fatalf("expected calibrated snapshot of 4.5, got %+v", last)
	}

	sessionRaw := postJSON(t, client, ts.URL+"/api/v1/calibration-sessions", adminToken, map[string]any{
		"cycleId":        cycleID,
		"name":           "Engineering calibration",
		"department":     "Engineering",
		"scheduledAt":    "2026-04-05",
		"participantIds": []string{managerEmpID},
		"notes":          "band review",
	}, http.StatusCreated)
	var session struct {
		ID             string   `json:"id"`
		Department     string   `json:"department"`
		ParticipantIDs []string `json:"participantIds"`
		Notes          string   `json:"notes"`
	}
	decodeData(t, sessionRaw, &session)
	if session.Department != "Engineering" || len(session.ParticipantIDs) != 1 || session.Notes != "band review" {
		t.Fatalf("expected session roster to persist, got %+v", session)
	}

	postJSON(t, client, ts.URL+"/api/v1/calibration-sessions/"+session.ID+"/calibrations", adminToken, map[string]string{
		"calibrationId": cal.ID,
	}, http.StatusOK)
	postJSON(t, client, ts.URL+"/api/v1/calibration-sessions/"+session.ID+"/start", adminToken, nil, http.StatusOK)
	doneRaw := postJSON(t, client, ts.URL+"/api/v1/calibration-sessions/"+session.ID+"/complete", adminToken, nil, http.StatusOK)
	var doneSession struct {
		Status      string     `json:"status"`
		CompletedAt *time.Time `json:"completedAt"`
	}
	decodeData(t, doneRaw, &doneSession)
	if doneSession.Status != "completed" || doneSession.CompletedAt == nil {
		t.Fatalf("expected completed session with a completed date, got %+v", doneSession)
	}

	completed := postJSON(t, client, ts.URL+"/api/v1/review-cycles/"+cycleID+"/complete", adminToken, nil, http.StatusOK)
	if status := stringField(t, completed, "status"); status != "completed" {
		t.Fatalf("expected completed cycle, got %s", status)
	}

	locked := postJSON(t, client, ts.URL+"/api/v1/review-cycles/"+cycleID+"/lock", adminToken, nil, http.StatusOK)
	if status := stringField(t, locked, "status"); status != "locked" {
		t.Fatalf("expected locked cycle, got %s", status)
	}

	var lockedRating struct {
		Status string `json:"status"`
	}
	decodeData(t, getJSON(t, client, ts.URL+"/api/v1/ratings/"+submittedRating.ID, adminToken), &lockedRating)
	if lockedRating.Status != "locked" {
		t.Fatalf("expected cascade to lock the rating, got %s", lockedRating.Status)
	}

	var auditPage struct {
		Total int `json:"total"`
	}
	decodeData(t, getJSON(t, client, ts.URL+"/api/v1/audit/events?action=cycle.locked", adminToken), &auditPage)
	if auditPage.Total == 0 {
		t.Fatal("expected an audit trail entry for the lock")
	}
}

func TestEmployeeCannotCreateCycle(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.DB.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	alexToken := login(t, client, ts.URL, "alex@example.com", cfg.SeedAdminPassword)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/review-cycles", bytes.NewBufferString(`{"name":"x"}`))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+alexToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for employee role, got %d", resp.StatusCode)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	raw := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var out struct {
		Token string `json:"token"`
	}
	decodeData(t, raw, &out)
	if out.Token == "" {
		t.Fatalf("expected token for %s", email)
	}
	return out.Token
}

func employeeID(t *testing.T, app *server.App, email string) string {
	t.Helper()
	var id string
	err := app.DB.QueryRow(context.Background(), `
    SELECT e.id FROM employees e JOIN users u ON u.id = e.user_id WHERE u.email = $1
  `, email).Scan(&id)
	if err != nil {
		t.Fatalf("failed to load employee for %s: %v", email, err)
	}
	return id
}

func competencyID(t *testing.T, app *server.App, name string) string {
	t.Helper()
	var id string
	if err := app.DB.QueryRow(context.Background(), "SELECT id FROM competencies WHERE name = $1", name).Scan(&id); err != nil {
		t.Fatalf("failed to load competency %s: %v", name, err)
	}
	return id
}

func createTemplate(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	body := map[string]any{
		"name":  fmt.Sprintf("Quarterly Template %d", time.Now().UnixNano()),
		"scale": map[string]any{"min": 1, "max": 5},
		"sections": []map[string]any{
			{
				"id":        "s1",
				"title":     "Delivery",
				"weightage": 100,
				"questions": []map[string]any{
					{"id": "q1", "type": "rating", "prompt": "Overall delivery this quarter", "required": true},
					{"id": "q2", "type": "text", "prompt": "Highlights"},
				},
			},
		},
	}
	raw := postJSON(t, client, baseURL+"/api/v1/review-templates", token, body, http.StatusCreated)
	return stringField(t, raw, "id")
}

func createCycle(t *testing.T, client *http.Client, baseURL, token, templateID, revieweeID, managerID, peerID string) string {
	t.Helper()
	body := map[string]any{
		"name":              fmt.Sprintf("Q1 Cycle %d", time.Now().UnixNano()),
		"periodLabel":       "2026-Q1",
		"type":              "quarterly",
		"templateId":        templateID,
		"startDate":         "2026-01-01",
		"endDate":           "2026-03-31",
		"selfReviewEnabled": true,
		"roster": []map[string]any{
			{
				"revieweeId":        revieweeID,
				"managerReviewerId": managerID,
				"peerReviewerIds":   []string{peerID},
			},
		},
	}
	raw := postJSON(t, client, baseURL+"/api/v1/review-cycles", token, body, http.StatusCreated)
	return stringField(t, raw, "id")
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any, wantStatus int) json.RawMessage {
	t.Helper()
	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return doJSON(t, client, req, wantStatus)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any, wantStatus int) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return doJSON(t, client, req, wantStatus)
}

func getJSON(t *testing.T, client *http.Client, url, token string) json.RawMessage {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return doJSON(t, client, req, http.StatusOK)
}

func doJSON(t *testing.T, client *http.Client, req *http.Request, wantStatus int) json.RawMessage {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", req.Method, req.URL.Path, wantStatus, resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v: %s", err, raw)
	}
	return env.Data
}

func decodeData(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode data: %v: %s", err, raw)
	}
}

func stringField(t *testing.T, raw json.RawMessage, field string) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode object: %v: %s", err, raw)
	}
	value, _ := m[field].(string)
	return value
}
