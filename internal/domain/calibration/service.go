package calibration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/rating"
)

// RatingSource is what calibration needs from the rating domain: the rating
// of record to calibrate against, its scale, and a write-back channel for
// approved adjustments. rating.Service satisfies it.
type RatingSource interface {
	Get(ctx context.Context, employeeID, cycleID string) (rating.Rating, error)
	ScaleFor(ctx context.Context, ratingID string) (float64, float64, error)
	RecordCalibratedValue(ctx context.Context, ratingID string, value float64) error
}

type Service struct {
	store         StoreAPI
	ratings       RatingSource
	approverRoles []string
}

func NewService(store StoreAPI, ratings RatingSource, approverRoles []string) *Service {
	return &Service{store: store, ratings: ratings, approverRoles: approverRoles}
}

// Open puts an employee's approved rating under calibration. At most one
// calibration exists per employee per cycle.
func (s *Service) Open(ctx context.Context, actor identity.UserContext, employeeID, cycleID string) (Calibration, error) {
	if !identity.HasApprovalAuthority(actor.Role, s.approverRoles) {
		return Calibration{}, fmt.Errorf("%w: role %q", rating.ErrNotApprover, actor.Role)
	}

	if _, err := s.store.GetByEmployeeCycle(ctx, employeeID, cycleID); err == nil {
		return Calibration{}, ErrCalibrationExists
	} else if !errors.Is(err, ErrCalibrationNotFound) {
		return Calibration{}, err
	}

	r, err := s.ratings.Get(ctx, employeeID, cycleID)
	if err != nil {
		return Calibration{}, err
	}
	if r.Status != rating.StatusApproved {
		return Calibration{}, fmt.Errorf("%w: rating status is %s", ErrRatingNotApproved, r.Status)
	}

	id, err := s.store.Insert(ctx, Calibration{
		CycleID:        cycleID,
		EmployeeID:     employeeID,
		RatingID:       r.ID,
		OriginalRating: r.FinalRating,
		Status:         StatusPending,
	})
	if err != nil {
		return Calibration{}, err
	}
	return s.store.Get(ctx, id)
}

// Propose records a suggested rating adjustment with its justification and
// moves the calibration pending -> in-review.
func (s *Service) Propose(ctx context.Context, actor identity.UserContext, calibrationID string, input ProposeInput) (Calibration, error) {
	if strings.TrimSpace(input.Justification) == "" {
		return Calibration{}, ErrJustificationRequired
	}

	current, err := s.store.Get(ctx, calibrationID)
	if err != nil {
		return Calibration{}, err
	}
	if decided(current.Status) {
		return Calibration{}, fmt.Errorf("%w: status is %s", ErrAlreadyDecided, current.Status)
	}

	scaleMin, scaleMax, err := s.ratings.ScaleFor(ctx, current.RatingID)
	if err != nil {
		return Calibration{}, err
	}
	if input.ProposedRating < scaleMin || input.ProposedRating > scaleMax {
		return Calibration{}, fmt.Errorf("%w: %v, scale [%v, %v]", ErrProposedOutOfScale, input.ProposedRating, scaleMin, scaleMax)
	}

	// A fresh proposal on a pending calibration advances it; re-proposing
	// while in review just replaces the pending proposal.
	landed, err := s.store.SetProposal(ctx, calibrationID, input.ProposedRating, input.Justification, actor.EmployeeID, current.Status, StatusInReview)
	if err != nil {
		return Calibration{}, err
	}
	if !landed {
		return Calibration{}, s.conflictError(ctx, calibrationID, current.Status)
	}
	return s.store.Get(ctx, calibrationID)
}

// Decide approves or rejects an in-review calibration. Approval writes the
// proposed value back to the rating history; rejection leaves the rating of
// record untouched.
func (s *Service) Decide(ctx context.Context, actor identity.UserContext, calibrationID string, approve bool, reason string) (Calibration, error) {
	if !identity.HasApprovalAuthority(actor.Role, s.approverRoles) {
		return Calibration{}, fmt.Errorf("%w: role %q", rating.ErrNotApprover, actor.Role)
	}

	current, err := s.store.Get(ctx, calibrationID)
	if err != nil {
		return Calibration{}, err
	}
	if decided(current.Status) {
		return Calibration{}, fmt.Errorf("%w: status is %s", ErrAlreadyDecided, current.Status)
	}
	if current.Status != StatusInReview || current.ProposedRating == nil {
		return Calibration{}, ErrNoProposal
	}

	outcome := StatusRejected
	if approve {
		outcome = StatusApproved
		// The write-back lands before the status flip. A failed write-back
		// leaves the calibration in review, so the decision can be retried.
		if err := s.ratings.RecordCalibratedValue(ctx, current.RatingID, *current.ProposedRating); err != nil {
			return Calibration{}, err
		}
	}
	landed, err := s.store.Decide(ctx, calibrationID, actor.EmployeeID, reason, StatusInReview, outcome)
	if err != nil {
		return Calibration{}, err
	}
	if !landed {
		return Calibration{}, s.conflictError(ctx, calibrationID, StatusInReview)
	}
	return s.store.Get(ctx, calibrationID)
}

func (s *Service) Get(ctx context.Context, calibrationID string) (Calibration, error) {
	return s.store.Get(ctx, calibrationID)
}

func (s *Service) ListByCycle(ctx context.Context, cycleID string) ([]Calibration, error) {
	return s.store.ListByCycle(ctx, cycleID)
}

func (s *Service) ScheduleSession(ctx context.Context, actor identity.UserContext, input SessionInput) (Session, error) {
	if !identity.HasApprovalAuthority(actor.Role, s.approverRoles) {
		return Session{}, fmt.Errorf("%w: role %q", rating.ErrNotApprover, actor.Role)
	}
	if strings.TrimSpace(input.Name) == "" {
		input.Name = "Calibration session"
	}
	facilitator := input.FacilitatorID
	if facilitator == "" {
		facilitator = actor.EmployeeID
	}
	id, err := s.store.InsertSession(ctx, Session{
		CycleID:        input.CycleID,
		Name:           input.Name,
		Department:     input.Department,
		ScheduledAt:    input.ScheduledAt,
		FacilitatorID:  facilitator,
		ParticipantIDs: input.ParticipantIDs,
		Notes:          input.Notes,
		Status:         SessionScheduled,
	})
	if err != nil {
		return Session{}, err
	}
	return s.store.GetSession(ctx, id)
}

func (s *Service) StartSession(ctx context.Context, sessionID string) (Session, error) {
	return s.transitionSession(ctx, sessionID, SessionScheduled, SessionInProgress)
}

// CompleteSession closes the meeting. Undecided calibrations stay open and
// can be picked up by a later session.
func (s *Service) CompleteSession(ctx context.Context, sessionID string) (Session, error) {
	return s.transitionSession(ctx, sessionID, SessionInProgress, SessionCompleted)
}

func (s *Service) transitionSession(ctx context.Context, sessionID, from, to string) (Session, error) {
	landed, err := s.store.UpdateSessionStatus(ctx, sessionID, from, to)
	if err != nil {
		return Session{}, err
	}
	if !landed {
		session, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("%w: status is %s", ErrSessionNotEditable, session.Status)
	}
	return s.store.GetSession(ctx, sessionID)
}

// AddToSession puts a calibration on a session's agenda. The session must
// not be completed and both must belong to the same cycle.
func (s *Service) AddToSession(ctx context.Context, sessionID, calibrationID string) (Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if session.Status == SessionCompleted {
		return Session{}, fmt.Errorf("%w: session is completed", ErrSessionNotEditable)
	}
	c, err := s.store.Get(ctx, calibrationID)
	if err != nil {
		return Session{}, err
	}
	if c.CycleID != session.CycleID {
		return Session{}, ErrCycleMismatch
	}
	if err := s.store.AttachToSession(ctx, sessionID, calibrationID); err != nil {
		return Session{}, err
	}
	return s.store.GetSession(ctx, sessionID)
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

func (s *Service) ListSessions(ctx context.Context, cycleID string) ([]Session, error) {
	return s.store.ListSessions(ctx, cycleID)
}

// SessionProgress tallies each member calibration's state so facilitators
// can see how far along the meeting is.
func (s *Service) SessionProgress(ctx context.Context, sessionID string) (Progress, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return Progress{}, err
	}
	members, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return Progress{}, err
	}
	var p Progress
	p.Total = len(members)
	for _, c := range members {
		switch c.Status {
		case StatusPending:
			p.Pending++
		case StatusInReview:
			p.InReview++
		case StatusApproved:
			p.Approved++
		case StatusRejected:
			p.Rejected++
		}
	}
	return p, nil
}

func (s *Service) conflictError(ctx context.Context, calibrationID, expectedStatus string) error {
	current, err := s.store.Get(ctx, calibrationID)
	if err != nil {
		return err
	}
	if current.Status != expectedStatus {
		return fmt.Errorf("%w: status is %s", ErrAlreadyDecided, current.Status)
	}
	return ErrConcurrentModification
}
