package rating

import (
	"context"
	"errors"
	"fmt"

	"perfreview/internal/domain/identity"
)

// CompetencyChecker verifies that referenced competencies exist in the
// registry.
type CompetencyChecker interface {
	Exists(ctx context.Context, competencyID string) (bool, error)
}

// ScaleSource resolves a cycle to its template's rating scale.
type ScaleSource interface {
	ScaleForCycle(ctx context.Context, cycleID string) (min, max float64, err error)
}

type Service struct {
	store         StoreAPI
	competencies  CompetencyChecker
	scales        ScaleSource
	approverRoles []string
}

func NewService(store StoreAPI, competencies CompetencyChecker, scales ScaleSource, approverRoles []string) *Service {
	return &Service{store: store, competencies: competencies, scales: scales, approverRoles: approverRoles}
}

// SubmitScores finalizes an employee's competency score set for a cycle:
// it validates the scores, computes the weighted final rating, and moves the
// rating draft -> submitted. A rating past draft is no longer editable.
func (s *Service) SubmitScores(ctx context.Context, actor identity.UserContext, employeeID, cycleID string, scores []CompetencyScore) (Rating, error) {
	if len(scores) == 0 {
		return Rating{}, ErrNoScores
	}

	scaleMin, scaleMax, err := s.scales.ScaleForCycle(ctx, cycleID)
	if err != nil {
		return Rating{}, err
	}
	if err := s.validateScores(ctx, scores, scaleMin, scaleMax); err != nil {
		return Rating{}, err
	}

	final, err := ComputeFinalRating(scores, scaleMin, scaleMax)
	if err != nil {
		return Rating{}, err
	}

	current, err := s.store.Get(ctx, employeeID, cycleID)
	if errors.Is(err, ErrRatingNotFound) {
		id, err := s.store.Insert(ctx, Rating{
			CycleID:     cycleID,
			EmployeeID:  employeeID,
			Status:      StatusDraft,
			FinalRating: final,
			Scores:      scores,
		})
		if err != nil {
			return Rating{}, err
		}
		current, err = s.store.GetByID(ctx, id)
		if err != nil {
			return Rating{}, err
		}
	} else if err != nil {
		return Rating{}, err
	} else {
		if current.Status != StatusDraft {
			return Rating{}, fmt.Errorf("%w: status is %s", ErrRatingNotEditable, current.Status)
		}
		landed, err := s.store.ReplaceScores(ctx, current.ID, scores, final, StatusDraft)
		if err != nil {
			return Rating{}, err
		}
		if !landed {
			return Rating{}, s.conflictError(ctx, current.ID, StatusDraft)
		}
	}

	landed, err := s.store.TransitionStatus(ctx, current.ID, StatusDraft, StatusSubmitted)
	if err != nil {
		return Rating{}, err
	}
	if !landed {
		return Rating{}, s.conflictError(ctx, current.ID, StatusDraft)
	}
	return s.store.GetByID(ctx, current.ID)
}

// Approve moves a submitted rating to approved and records the approval
// snapshot in the rating history.
func (s *Service) Approve(ctx context.Context, actor identity.UserContext, ratingID string) (Rating, error) {
	if !identity.HasApprovalAuthority(actor.Role, s.approverRoles) {
		return Rating{}, fmt.Errorf("%w: role %q", ErrNotApprover, actor.Role)
	}

	current, err := s.store.GetByID(ctx, ratingID)
	if err != nil {
		return Rating{}, err
	}
	if current.Status != StatusSubmitted {
		return Rating{}, fmt.Errorf("%w: cannot approve a %s rating", ErrRatingNotEditable, current.Status)
	}

	landed, err := s.store.TransitionStatus(ctx, ratingID, StatusSubmitted, StatusApproved)
	if err != nil {
		return Rating{}, err
	}
	if !landed {
		return Rating{}, s.conflictError(ctx, ratingID, StatusSubmitted)
	}

	if err := s.store.AppendSnapshot(ctx, Snapshot{
		RatingID: ratingID,
		Value:    current.FinalRating,
		CycleID:  current.CycleID,
		Source:   SnapshotSourceReview,
	}); err != nil {
		return Rating{}, err
	}
	return s.store.GetByID(ctx, ratingID)
}

// RecordCalibratedValue appends an approved calibration outcome to the
// rating history as the new rating of record. Earlier snapshots are never
// touched.
func (s *Service) RecordCalibratedValue(ctx context.Context, ratingID string, value float64) error {
	current, err := s.store.GetByID(ctx, ratingID)
	if err != nil {
		return err
	}
	if current.Status == StatusLocked {
		return fmt.Errorf("%w: rating is locked", ErrRatingNotEditable)
	}
	return s.store.AppendSnapshot(ctx, Snapshot{
		RatingID: ratingID,
		Value:    value,
		CycleID:  current.CycleID,
		Source:   SnapshotSourceCalibration,
	})
}

func (s *Service) Get(ctx context.Context, employeeID, cycleID string) (Rating, error) {
	return s.store.Get(ctx, employeeID, cycleID)
}

func (s *Service) GetByID(ctx context.Context, ratingID string) (Rating, error) {
	return s.store.GetByID(ctx, ratingID)
}

// ScaleFor resolves the rating scale governing a rating, for calibration
// bounds checks.
func (s *Service) ScaleFor(ctx context.Context, ratingID string) (float64, float64, error) {
	current, err := s.store.GetByID(ctx, ratingID)
	if err != nil {
		return 0, 0, err
	}
	return s.scales.ScaleForCycle(ctx, current.CycleID)
}

func (s *Service) validateScores(ctx context.Context, scores []CompetencyScore, scaleMin, scaleMax float64) error {
	for _, score := range scores {
		if score.Score < scaleMin || score.Score > scaleMax {
			return fmt.Errorf("%w: %v for %s, scale [%v, %v]", ErrScoreOutOfScale, score.Score, score.CompetencyID, scaleMin, scaleMax)
		}
		if score.Weightage < 0 || score.Weightage > 100 {
			return fmt.Errorf("%w: got %v", ErrInvalidWeightage, score.Weightage)
		}
		if s.competencies != nil {
			exists, err := s.competencies.Exists(ctx, score.CompetencyID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", ErrUnknownCompetency, score.CompetencyID)
			}
		}
	}
	return nil
}

// conflictError distinguishes a lost optimistic-concurrency race from a
// plain state mismatch by re-reading the row.
func (s *Service) conflictError(ctx context.Context, ratingID, expectedStatus string) error {
	current, err := s.store.GetByID(ctx, ratingID)
	if err != nil {
		return err
	}
	if current.Status != expectedStatus {
		return fmt.Errorf("%w: status is %s", ErrRatingNotEditable, current.Status)
	}
	return ErrConcurrentModification
}
