package cycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/review"
	"perfreview/internal/domain/template"
)

// TemplateSource resolves the template a cycle is built on.
// template.Service satisfies it.
type TemplateSource interface {
	Get(ctx context.Context, templateID string) (template.Template, error)
}

// ReviewSource is what cycle management needs from the review domain:
// per-review completion state and a history hook for forced completions.
// review.Service satisfies it.
type ReviewSource interface {
	CycleReviewStatuses(ctx context.Context, cycleID string) ([]review.StatusItem, error)
	RecordForceCompletion(ctx context.Context, reviewID, actorID string) error
}

type Service struct {
	store     StoreAPI
	templates TemplateSource
	reviews   ReviewSource
}

func NewService(store StoreAPI, templates TemplateSource, reviews ReviewSource) *Service {
	return &Service{store: store, templates: templates, reviews: reviews}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (ReviewCycle, error) {
	if strings.TrimSpace(input.Name) == "" {
		return ReviewCycle{}, ErrNameRequired
	}
	if !ValidType(input.Type) {
		return ReviewCycle{}, fmt.Errorf("%w: got %q", ErrInvalidType, input.Type)
	}
	if !input.StartDate.Before(input.EndDate) {
		return ReviewCycle{}, ErrInvalidPeriod
	}
	if _, err := s.templates.Get(ctx, input.TemplateID); err != nil {
		return ReviewCycle{}, err
	}
	roster, err := normalizeRoster(input.Roster)
	if err != nil {
		return ReviewCycle{}, err
	}

	id, err := s.store.Insert(ctx, ReviewCycle{
		Name:              input.Name,
		PeriodLabel:       input.PeriodLabel,
		Type:              input.Type,
		TemplateID:        input.TemplateID,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		SelfReviewEnabled: input.SelfReviewEnabled,
		Status:            StatusDraft,
		Roster:            roster,
	})
	if err != nil {
		return ReviewCycle{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, cycleID string) (ReviewCycle, error) {
	return s.store.Get(ctx, cycleID)
}

// List annotates active cycles whose end date has passed; there is no
// background job flipping state on a timer.
func (s *Service) List(ctx context.Context, status string) ([]ReviewCycle, error) {
	cycles, err := s.store.List(ctx, status)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range cycles {
		cycles[i].Overdue = cycles[i].Status == StatusActive && cycles[i].EndDate.Before(now)
	}
	return cycles, nil
}

// UpdateRoster replaces a draft cycle's roster.
func (s *Service) UpdateRoster(ctx context.Context, cycleID string, roster []RosterEntry) (ReviewCycle, error) {
	normalized, err := normalizeRoster(roster)
	if err != nil {
		return ReviewCycle{}, err
	}
	return s.updateDraft(ctx, cycleID, func(c *ReviewCycle) {
		c.Roster = normalized
	})
}

// ChangeTemplate points a draft cycle at a different template.
func (s *Service) ChangeTemplate(ctx context.Context, cycleID, templateID string) (ReviewCycle, error) {
	if _, err := s.templates.Get(ctx, templateID); err != nil {
		return ReviewCycle{}, err
	}
	return s.updateDraft(ctx, cycleID, func(c *ReviewCycle) {
		c.TemplateID = templateID
	})
}

func (s *Service) updateDraft(ctx context.Context, cycleID string, apply func(*ReviewCycle)) (ReviewCycle, error) {
	current, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return ReviewCycle{}, err
	}
	if current.Status != StatusDraft {
		return ReviewCycle{}, fmt.Errorf("%w: status is %s", ErrCycleNotEditable, current.Status)
	}
	apply(&current)
	landed, err := s.store.UpdateDraft(ctx, current)
	if err != nil {
		return ReviewCycle{}, err
	}
	if !landed {
		return ReviewCycle{}, ErrConcurrentModification
	}
	return s.store.Get(ctx, cycleID)
}

// Activate moves a draft cycle to active and materializes one review per
// roster entry: a manager sub-review, a peer sub-review per assigned peer,
// and a self sub-review when the cycle enables self reviews. All of it lands
// in one transaction or not at all.
func (s *Service) Activate(ctx context.Context, cycleID string) (ReviewCycle, error) {
	current, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return ReviewCycle{}, err
	}
	if current.Status != StatusDraft {
		return ReviewCycle{}, fmt.Errorf("%w: cannot activate a %s cycle", ErrInvalidTransition, current.Status)
	}
	if len(current.Roster) == 0 {
		return ReviewCycle{}, ErrEmptyRoster
	}

	seeds := make([]ReviewSeed, 0, len(current.Roster))
	for _, entry := range current.Roster {
		seed := ReviewSeed{RevieweeID: entry.RevieweeID, DueDate: current.EndDate}
		if current.SelfReviewEnabled {
			seed.SubReviews = append(seed.SubReviews, SubReviewSeed{Kind: review.KindSelf, ReviewerID: entry.RevieweeID})
		}
		seed.SubReviews = append(seed.SubReviews, SubReviewSeed{Kind: review.KindManager, ReviewerID: entry.ManagerReviewerID})
		for _, peerID := range entry.PeerReviewerIDs {
			seed.SubReviews = append(seed.SubReviews, SubReviewSeed{Kind: review.KindPeer, ReviewerID: peerID})
		}
		seeds = append(seeds, seed)
	}

	landed, err := s.store.Activate(ctx, cycleID, seeds)
	if err != nil {
		return ReviewCycle{}, err
	}
	if !landed {
		return ReviewCycle{}, ErrConcurrentModification
	}
	return s.store.Get(ctx, cycleID)
}

// Complete moves an active cycle to completed. Without force it refuses
// while any review is still incomplete; with force it completes anyway and
// stamps each incomplete review's history.
func (s *Service) Complete(ctx context.Context, actor identity.UserContext, cycleID string, force bool) (ReviewCycle, error) {
	current, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return ReviewCycle{}, err
	}
	if current.Status != StatusActive {
		return ReviewCycle{}, fmt.Errorf("%w: cannot complete a %s cycle", ErrInvalidTransition, current.Status)
	}

	statuses, err := s.reviews.CycleReviewStatuses(ctx, cycleID)
	if err != nil {
		return ReviewCycle{}, err
	}
	var incomplete []review.StatusItem
	for _, item := range statuses {
		if item.Status != review.OverallCompleted {
			incomplete = append(incomplete, item)
		}
	}
	if len(incomplete) > 0 && !force {
		return ReviewCycle{}, fmt.Errorf("%w: %d of %d", ErrReviewsIncomplete, len(incomplete), len(statuses))
	}

	landed, err := s.store.Transition(ctx, cycleID, StatusActive, StatusCompleted)
	if err != nil {
		return ReviewCycle{}, err
	}
	if !landed {
		return ReviewCycle{}, ErrConcurrentModification
	}

	for _, item := range incomplete {
		if err := s.reviews.RecordForceCompletion(ctx, item.ReviewID, actor.EmployeeID); err != nil {
			return ReviewCycle{}, err
		}
	}
	return s.store.Get(ctx, cycleID)
}

// Lock freezes a completed cycle: the cycle, its reviews, and its ratings
// all lock together.
func (s *Service) Lock(ctx context.Context, cycleID string) (ReviewCycle, error) {
	current, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return ReviewCycle{}, err
	}
	if current.Status != StatusCompleted {
		return ReviewCycle{}, fmt.Errorf("%w: cannot lock a %s cycle", ErrInvalidTransition, current.Status)
	}
	landed, err := s.store.LockCascade(ctx, cycleID)
	if err != nil {
		return ReviewCycle{}, err
	}
	if !landed {
		return ReviewCycle{}, ErrConcurrentModification
	}
	return s.store.Get(ctx, cycleID)
}

// ScaleForCycle resolves the rating scale of the template backing a cycle.
// The rating domain uses it to bound competency scores.
func (s *Service) ScaleForCycle(ctx context.Context, cycleID string) (float64, float64, error) {
	current, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return 0, 0, err
	}
	tpl, err := s.templates.Get(ctx, current.TemplateID)
	if err != nil {
		return 0, 0, err
	}
	return tpl.Scale.Min, tpl.Scale.Max, nil
}

func normalizeRoster(roster []RosterEntry) ([]RosterEntry, error) {
	seen := make(map[string]bool, len(roster))
	out := make([]RosterEntry, 0, len(roster))
	for _, entry := range roster {
		if seen[entry.RevieweeID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateReviewee, entry.RevieweeID)
		}
		seen[entry.RevieweeID] = true
		if entry.ManagerReviewerID == "" {
			return nil, fmt.Errorf("%w: reviewee %s", ErrManagerRequired, entry.RevieweeID)
		}
		if entry.ManagerReviewerID == entry.RevieweeID {
			return nil, fmt.Errorf("%w: reviewee %s", ErrSelfAsReviewer, entry.RevieweeID)
		}
		peers := make([]string, 0, len(entry.PeerReviewerIDs))
		peerSeen := make(map[string]bool, len(entry.PeerReviewerIDs))
		for _, peerID := range entry.PeerReviewerIDs {
			if peerID == entry.RevieweeID {
				return nil, fmt.Errorf("%w: reviewee %s", ErrSelfAsReviewer, entry.RevieweeID)
			}
			if peerSeen[peerID] {
				continue
			}
			peerSeen[peerID] = true
			peers = append(peers, peerID)
		}
		entry.PeerReviewerIDs = peers
		out = append(out, entry)
	}
	return out, nil
}
