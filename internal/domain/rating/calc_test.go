package rating

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeFinalRatingWeightedMean(t *testing.T) {
	scores := []CompetencyScore{
		{CompetencyID: "c1", Score: 4, Weightage: 30},
		{CompetencyID: "c2", Score: 5, Weightage: 70},
	}
	got, err := ComputeFinalRating(scores, 1, 5)
	if err != nil {
		t.Fatalf("ComputeFinalRating: %v", err)
	}
	if !almostEqual(got, 4.7) {
		t.Fatalf("expected 4.7, got %v", got)
	}
}

func TestComputeFinalRatingFourCompetencies(t *testing.T) {
	scores := []CompetencyScore{
		{CompetencyID: "technical", Score: 4.5, Weightage: 30},
		{CompetencyID: "communication", Score: 4.0, Weightage: 20},
		{CompetencyID: "leadership", Score: 4.2, Weightage: 25},
		{CompetencyID: "problem-solving", Score: 4.8, Weightage: 25},
	}
	got, err := ComputeFinalRating(scores, 1, 5)
	if err != nil {
		t.Fatalf("ComputeFinalRating: %v", err)
	}
	if !almostEqual(got, 4.4) {
		t.Fatalf("expected 4.4, got %v", got)
	}
}

func TestComputeFinalRatingPartialWeights(t *testing.T) {
	// Weights need not sum to 100; the mean normalizes by the actual total.
	scores := []CompetencyScore{
		{CompetencyID: "c1", Score: 2, Weightage: 10},
		{CompetencyID: "c2", Score: 4, Weightage: 30},
	}
	got, err := ComputeFinalRating(scores, 1, 5)
	if err != nil {
		t.Fatalf("ComputeFinalRating: %v", err)
	}
	if !almostEqual(got, 3.5) {
		t.Fatalf("expected 3.5, got %v", got)
	}
}

func TestComputeFinalRatingZeroTotalWeight(t *testing.T) {
	scores := []CompetencyScore{
		{CompetencyID: "c1", Score: 4, Weightage: 0},
		{CompetencyID: "c2", Score: 5, Weightage: 0},
	}
	if _, err := ComputeFinalRating(scores, 1, 5); !errors.Is(err, ErrNoWeightedCompetencies) {
		t.Fatalf("expected ErrNoWeightedCompetencies, got %v", err)
	}
}

func TestComputeFinalRatingEmpty(t *testing.T) {
	if _, err := ComputeFinalRating(nil, 1, 5); !errors.Is(err, ErrNoWeightedCompetencies) {
		t.Fatalf("expected ErrNoWeightedCompetencies, got %v", err)
	}
}

func TestComputeFinalRatingClampsToScale(t *testing.T) {
	scores := []CompetencyScore{
		{CompetencyID: "c1", Score: 0.5, Weightage: 100},
	}
	got, err := ComputeFinalRating(scores, 1, 5)
	if err != nil {
		t.Fatalf("ComputeFinalRating: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected clamp to scale minimum 1, got %v", got)
	}
}
