package review

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/template"
)

type TemplateSource interface {
	Get(ctx context.Context, templateID string) (template.Template, error)
}

type Service struct {
	store     StoreAPI
	templates TemplateSource
}

func NewService(store StoreAPI, templates TemplateSource) *Service {
	return &Service{store: store, templates: templates}
}

func (s *Service) SubmitSelf(ctx context.Context, actor identity.UserContext, reviewID string, input SubmitInput) (Details, error) {
	return s.submit(ctx, actor, reviewID, KindSelf, input)
}

func (s *Service) SubmitManager(ctx context.Context, actor identity.UserContext, reviewID string, input SubmitInput) (Details, error) {
	return s.submit(ctx, actor, reviewID, KindManager, input)
}

func (s *Service) SubmitPeer(ctx context.Context, actor identity.UserContext, reviewID string, input SubmitInput) (Details, error) {
	return s.submit(ctx, actor, reviewID, KindPeer, input)
}

func (s *Service) submit(ctx context.Context, actor identity.UserContext, reviewID, kind string, input SubmitInput) (Details, error) {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return Details{}, err
	}
	if rev.Locked {
		return Details{}, ErrReviewLocked
	}

	subReviews, err := s.store.ListSubReviews(ctx, reviewID)
	if err != nil {
		return Details{}, err
	}

	target, err := findSubReview(subReviews, kind, actor.EmployeeID, rev.RevieweeID)
	if err != nil {
		return Details{}, err
	}

	tmpl, err := s.templates.Get(ctx, rev.TemplateID)
	if err != nil {
		return Details{}, err
	}
	if err := validateResponses(tmpl, input.Responses); err != nil {
		return Details{}, err
	}

	target.Responses = input.Responses
	target.Comments = strings.TrimSpace(input.Comments)

	if target.Status == SubStatusSubmitted {
		if !input.AllowResubmit {
			return Details{}, fmt.Errorf("%w: %s review by %s", ErrAlreadySubmitted, kind, target.ReviewerID)
		}
		// Resubmission overrides replace the response set but leave an
		// explicit trace; they never happen silently.
		landed, err := s.store.SubmitSubReview(ctx, target, SubStatusSubmitted)
		if err != nil {
			return Details{}, err
		}
		if !landed {
			return Details{}, fmt.Errorf("%w: %s review changed underneath the override", ErrAlreadySubmitted, kind)
		}
		if err := s.store.AppendHistory(ctx, HistoryEntry{
			ReviewID:    reviewID,
			Action:      ActionResubmitOverride,
			PerformedBy: actor.UserID,
		}); err != nil {
			return Details{}, err
		}
		return s.details(ctx, rev)
	}

	landed, err := s.store.SubmitSubReview(ctx, target, SubStatusPending)
	if err != nil {
		return Details{}, err
	}
	if !landed {
		// Lost the race against a concurrent submission of the same row.
		return Details{}, fmt.Errorf("%w: %s review by %s", ErrAlreadySubmitted, kind, target.ReviewerID)
	}

	if err := s.store.AppendHistory(ctx, HistoryEntry{
		ReviewID:    reviewID,
		Action:      actionForKind(kind),
		PerformedBy: actor.UserID,
	}); err != nil {
		return Details{}, err
	}
	return s.details(ctx, rev)
}

func (s *Service) Get(ctx context.Context, reviewID string) (Details, error) {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return Details{}, err
	}
	return s.details(ctx, rev)
}

func (s *Service) GetByCycleEmployee(ctx context.Context, cycleID, employeeID string) (Details, error) {
	rev, err := s.store.GetReviewByCycleEmployee(ctx, cycleID, employeeID)
	if err != nil {
		return Details{}, err
	}
	return s.details(ctx, rev)
}

func (s *Service) ListPendingFor(ctx context.Context, reviewerID string) ([]PendingItem, error) {
	return s.store.ListPendingForReviewer(ctx, reviewerID)
}

// CycleReviewStatuses reports every review in a cycle with its derived
// overall status; the cycle manager uses it for completion checks.
func (s *Service) CycleReviewStatuses(ctx context.Context, cycleID string) ([]StatusItem, error) {
	reviews, err := s.store.ListReviewsByCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	items := make([]StatusItem, 0, len(reviews))
	for _, rev := range reviews {
		subReviews, err := s.store.ListSubReviews(ctx, rev.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, StatusItem{
			ReviewID:   rev.ID,
			RevieweeID: rev.RevieweeID,
			Status:     DeriveOverallStatus(rev.Locked, subReviews),
		})
	}
	return items, nil
}

// RecordForceCompletion notes on a review's history that its cycle was
// completed by override while the review was still incomplete.
func (s *Service) RecordForceCompletion(ctx context.Context, reviewID, actorID string) error {
	return s.store.AppendHistory(ctx, HistoryEntry{
		ReviewID:    reviewID,
		Action:      ActionForceCompleted,
		PerformedBy: actorID,
	})
}

func (s *Service) details(ctx context.Context, rev PerformanceReview) (Details, error) {
	subReviews, err := s.store.ListSubReviews(ctx, rev.ID)
	if err != nil {
		return Details{}, err
	}
	history, err := s.store.ListHistory(ctx, rev.ID)
	if err != nil {
		return Details{}, err
	}
	return Details{
		Review:        rev,
		SubReviews:    subReviews,
		History:       history,
		OverallStatus: DeriveOverallStatus(rev.Locked, subReviews),
	}, nil
}

func findSubReview(subReviews []SubReview, kind, actorEmployeeID, revieweeID string) (SubReview, error) {
	for _, sub := range subReviews {
		if sub.Kind != kind {
			continue
		}
		switch kind {
		case KindSelf:
			if actorEmployeeID == revieweeID {
				return sub, nil
			}
		case KindManager, KindPeer:
			if sub.ReviewerID == actorEmployeeID {
				return sub, nil
			}
		}
	}
	return SubReview{}, fmt.Errorf("%w: no %s sub-review assigned to %s", ErrNotAReviewer, kind, actorEmployeeID)
}

func actionForKind(kind string) string {
	switch kind {
	case KindSelf:
		return ActionSelfSubmitted
	case KindManager:
		return ActionManagerSubmitted
	default:
		return ActionPeerSubmitted
	}
}

func validateResponses(tmpl template.Template, responses []Answer) error {
	type questionKey struct{ section, question string }
	questions := map[questionKey]template.Question{}
	for _, section := range tmpl.Sections {
		for _, question := range section.Questions {
			questions[questionKey{section.ID, question.ID}] = question
		}
	}

	answered := map[questionKey]bool{}
	for _, answer := range responses {
		key := questionKey{answer.SectionID, answer.QuestionID}
		question, ok := questions[key]
		if !ok {
			return fmt.Errorf("%w: unknown question %s/%s", ErrInvalidResponses, answer.SectionID, answer.QuestionID)
		}
		if strings.TrimSpace(answer.Value) == "" {
			continue
		}
		answered[key] = true

		switch question.Type {
		case template.QuestionTypeRating:
			value, err := strconv.ParseFloat(answer.Value, 64)
			if err != nil {
				return fmt.Errorf("%w: question %s expects a numeric rating", ErrInvalidResponses, question.ID)
			}
			if value < tmpl.Scale.Min || value > tmpl.Scale.Max {
				return fmt.Errorf("%w: rating %v outside scale [%v, %v]", ErrInvalidResponses, value, tmpl.Scale.Min, tmpl.Scale.Max)
			}
		case template.QuestionTypeMultipleChoice:
			valid := false
			for _, option := range question.Options {
				if answer.Value == option {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("%w: %q is not an option for question %s", ErrInvalidResponses, answer.Value, question.ID)
			}
		}
	}

	for key, question := range questions {
		if question.Required && !answered[key] {
			return fmt.Errorf("%w: required question %s is unanswered", ErrInvalidResponses, question.ID)
		}
	}
	return nil
}
