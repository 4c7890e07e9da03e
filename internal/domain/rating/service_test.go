package rating

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"perfreview/internal/domain/identity"
)

type fakeStore struct {
	ratings   map[string]*Rating
	nextID    int
	failAfter string
}

func newFakeStore() *fakeStore {
	return &fakeStore{ratings: map[string]*Rating{}}
}

func (f *fakeStore) Get(ctx context.Context, employeeID, cycleID string) (Rating, error) {
	for _, r := range f.ratings {
		if r.EmployeeID == employeeID && r.CycleID == cycleID {
			return *r, nil
		}
	}
	return Rating{}, ErrRatingNotFound
}

func (f *fakeStore) GetByID(ctx context.Context, ratingID string) (Rating, error) {
	r, ok := f.ratings[ratingID]
	if !ok {
		return Rating{}, ErrRatingNotFound
	}
	return *r, nil
}

func (f *fakeStore) Insert(ctx context.Context, r Rating) (string, error) {
	f.nextID++
	r.ID = fmt.Sprintf("rating-%d", f.nextID)
	f.ratings[r.ID] = &r
	return r.ID, nil
}

func (f *fakeStore) ReplaceScores(ctx context.Context, ratingID string, scores []CompetencyScore, finalRating float64, expectStatus string) (bool, error) {
	r, ok := f.ratings[ratingID]
	if !ok || r.Status != expectStatus {
		return false, nil
	}
	r.Scores = append([]CompetencyScore(nil), scores...)
	r.FinalRating = finalRating
	r.Version++
	return true, nil
}

func (f *fakeStore) TransitionStatus(ctx context.Context, ratingID, fromStatus, toStatus string) (bool, error) {
	r, ok := f.ratings[ratingID]
	if !ok || r.Status != fromStatus {
		return false, nil
	}
	r.Status = toStatus
	r.Version++
	return true, nil
}

func (f *fakeStore) AppendSnapshot(ctx context.Context, snapshot Snapshot) error {
	r, ok := f.ratings[snapshot.RatingID]
	if !ok {
		return ErrRatingNotFound
	}
	r.Snapshots = append(r.Snapshots, snapshot)
	return nil
}

func (f *fakeStore) ListSnapshots(ctx context.Context, ratingID string) ([]Snapshot, error) {
	r, ok := f.ratings[ratingID]
	if !ok {
		return nil, ErrRatingNotFound
	}
	return r.Snapshots, nil
}

type fakeCompetencies map[string]bool

func (f fakeCompetencies) Exists(ctx context.Context, competencyID string) (bool, error) {
	return f[competencyID], nil
}

type fixedScale struct{ min, max float64 }

func (f fixedScale) ScaleForCycle(ctx context.Context, cycleID string) (float64, float64, error) {
	return f.min, f.max, nil
}

func newTestService(store StoreAPI) *Service {
	comps := fakeCompetencies{"technical": true, "communication": true, "leadership": true, "problem-solving": true}
	return NewService(store, comps, fixedScale{1, 5}, []string{identity.RoleHR, identity.RoleAdmin})
}

var (
	manager = identity.UserContext{UserID: "u-mgr", EmployeeID: "emp-mgr", Role: identity.RoleManager}
	hr      = identity.UserContext{UserID: "u-hr", EmployeeID: "emp-hr", Role: identity.RoleHR}
)

func TestSubmitScoresCreatesAndSubmits(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	got, err := svc.SubmitScores(context.Background(), manager, "emp-1", "cycle-1", []CompetencyScore{
		{CompetencyID: "technical", Score: 4, Weightage: 30},
		{CompetencyID: "communication", Score: 5, Weightage: 70},
	})
	if err != nil {
		t.Fatalf("SubmitScores: %v", err)
	}
	if got.Status != StatusSubmitted {
		t.Fatalf("expected submitted, got %s", got.Status)
	}
	if !almostEqual(got.FinalRating, 4.7) {
		t.Fatalf("expected final rating 4.7, got %v", got.FinalRating)
	}
}

func TestSubmitScoresRejectsOnceSubmitted(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	scores := []CompetencyScore{{CompetencyID: "technical", Score: 4, Weightage: 100}}
	if _, err := svc.SubmitScores(ctx, manager, "emp-1", "cycle-1", scores); err != nil {
		t.Fatalf("first SubmitScores: %v", err)
	}
	_, err := svc.SubmitScores(ctx, manager, "emp-1", "cycle-1", scores)
	if !errors.Is(err, ErrRatingNotEditable) {
		t.Fatalf("expected ErrRatingNotEditable, got %v", err)
	}
}

func TestSubmitScoresValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	cases := []struct {
		name   string
		scores []CompetencyScore
		want   error
	}{
		{"empty", nil, ErrNoScores},
		{"out of scale", []CompetencyScore{{CompetencyID: "technical", Score: 6, Weightage: 50}}, ErrScoreOutOfScale},
		{"negative weight", []CompetencyScore{{CompetencyID: "technical", Score: 4, Weightage: -1}}, ErrInvalidWeightage},
		{"unknown competency", []CompetencyScore{{CompetencyID: "nope", Score: 4, Weightage: 50}}, ErrUnknownCompetency},
		{"zero total weight", []CompetencyScore{{CompetencyID: "technical", Score: 4, Weightage: 0}}, ErrNoWeightedCompetencies},
	}
	for _, tc := range cases {
		if _, err := svc.SubmitScores(ctx, manager, "emp-1", "cycle-1", tc.scores); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestApproveAppendsSnapshot(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	submitted, err := svc.SubmitScores(ctx, manager, "emp-1", "cycle-1", []CompetencyScore{
		{CompetencyID: "technical", Score: 4.5, Weightage: 30},
		{CompetencyID: "communication", Score: 4.0, Weightage: 20},
		{CompetencyID: "leadership", Score: 4.2, Weightage: 25},
		{CompetencyID: "problem-solving", Score: 4.8, Weightage: 25},
	})
	if err != nil {
		t.Fatalf("SubmitScores: %v", err)
	}

	approved, err := svc.Approve(ctx, hr, submitted.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if len(approved.Snapshots) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(approved.Snapshots))
	}
	sn := approved.Snapshots[0]
	if sn.Source != SnapshotSourceReview {
		t.Fatalf("expected review snapshot, got %s", sn.Source)
	}
	if !almostEqual(sn.Value, 4.4) {
		t.Fatalf("expected snapshot value 4.4, got %v", sn.Value)
	}
}

func TestApproveRequiresApproverRole(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	submitted, err := svc.SubmitScores(ctx, manager, "emp-1", "cycle-1", []CompetencyScore{
		{CompetencyID: "technical", Score: 4, Weightage: 100},
	})
	if err != nil {
		t.Fatalf("SubmitScores: %v", err)
	}
	if _, err := svc.Approve(ctx, manager, submitted.ID); !errors.Is(err, ErrNotApprover) {
		t.Fatalf("expected ErrNotApprover, got %v", err)
	}
}

func TestApproveRejectsDraftAndApproved(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	id, err := store.Insert(ctx, Rating{CycleID: "cycle-1", EmployeeID: "emp-1", Status: StatusDraft})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := svc.Approve(ctx, hr, id); !errors.Is(err, ErrRatingNotEditable) {
		t.Fatalf("expected ErrRatingNotEditable for draft, got %v", err)
	}

	store.ratings[id].Status = StatusApproved
	if _, err := svc.Approve(ctx, hr, id); !errors.Is(err, ErrRatingNotEditable) {
		t.Fatalf("expected ErrRatingNotEditable for approved, got %v", err)
	}
}

func TestRecordCalibratedValueAppendsWithoutRewritingHistory(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	submitted, err := svc.SubmitScores(ctx, manager, "emp-1", "cycle-1", []CompetencyScore{
		{CompetencyID: "technical", Score: 4, Weightage: 30},
		{CompetencyID: "communication", Score: 5, Weightage: 70},
	})
	if err != nil {
		t.Fatalf("SubmitScores: %v", err)
	}
	if _, err := svc.Approve(ctx, hr, submitted.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := svc.RecordCalibratedValue(ctx, submitted.ID, 4.3); err != nil {
		t.Fatalf("RecordCalibratedValue: %v", err)
	}

	got, err := svc.GetByID(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Snapshots) != 2 {
		t.Fatalf("expected two snapshots, got %d", len(got.Snapshots))
	}
	if !almostEqual(got.Snapshots[0].Value, 4.7) || got.Snapshots[0].Source != SnapshotSourceReview {
		t.Fatalf("original snapshot rewritten: %+v", got.Snapshots[0])
	}
	if !almostEqual(got.Snapshots[1].Value, 4.3) || got.Snapshots[1].Source != SnapshotSourceCalibration {
		t.Fatalf("unexpected calibration snapshot: %+v", got.Snapshots[1])
	}
}

func TestRecordCalibratedValueRejectsLockedRating(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	id, err := store.Insert(ctx, Rating{CycleID: "cycle-1", EmployeeID: "emp-1", Status: StatusLocked})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := svc.RecordCalibratedValue(ctx, id, 4.0); !errors.Is(err, ErrRatingNotEditable) {
		t.Fatalf("expected ErrRatingNotEditable, got %v", err)
	}
}
