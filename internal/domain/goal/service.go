package goal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perfreview/internal/domain/identity"
)

type Service struct {
	store     StoreAPI
	directory identity.Directory
}

func NewService(store StoreAPI, directory identity.Directory) *Service {
	return &Service{store: store, directory: directory}
}

func (s *Service) Create(ctx context.Context, actor identity.UserContext, input CreateInput) (Goal, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Goal{}, ErrTitleRequired
	}
	if !ValidKind(input.Kind) {
		return Goal{}, fmt.Errorf("%w: got %q", ErrInvalidKind, input.Kind)
	}
	if err := validateWeightage(input.Weightage); err != nil {
		return Goal{}, err
	}
	if input.Visibility == "" {
		input.Visibility = VisibilityPublic
	}
	if !ValidVisibility(input.Visibility) {
		return Goal{}, fmt.Errorf("%w: got %q", ErrInvalidVisibility, input.Visibility)
	}
	if input.OwnerID == "" {
		input.OwnerID = actor.EmployeeID
	}

	if input.ParentID != "" {
		parent, err := s.store.Get(ctx, input.ParentID)
		if err != nil {
			if errors.Is(err, ErrGoalNotFound) {
				return Goal{}, ErrAlignmentNotFound
			}
			return Goal{}, err
		}
		if input.Kind == KindKeyResult && parent.Kind != KindObjective {
			return Goal{}, fmt.Errorf("%w: %q aligns to %s %q", ErrInvalidAlignment, input.Title, parent.Kind, parent.Title)
		}
	}

	g := Goal{
		Title:      strings.TrimSpace(input.Title),
		Kind:       input.Kind,
		OwnerID:    input.OwnerID,
		Department: input.Department,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Weightage:  input.Weightage,
		Progress:   0,
		Status:     StatusNotStarted,
		ParentID:   input.ParentID,
		Visibility: input.Visibility,
	}

	id, err := s.store.Insert(ctx, g)
	if err != nil {
		return Goal{}, err
	}
	g.ID = id

	if err := s.store.AppendHistory(ctx, EditEntry{
		GoalID:  id,
		ActorID: actor.UserID,
		Summary: "goal created",
	}); err != nil {
		return Goal{}, err
	}
	return g, nil
}

func (s *Service) UpdateProgress(ctx context.Context, actor identity.UserContext, goalID string, input ProgressInput) (Goal, error) {
	current, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if err := s.authorizeMutation(ctx, actor, current); err != nil {
		return Goal{}, err
	}

	progress := current.Progress
	switch {
	case input.Absolute != nil:
		progress = *input.Absolute
	case input.Delta != nil:
		progress += *input.Delta
	default:
		return current, nil
	}
	progress = clampProgress(progress)

	updated := current
	updated.Progress = progress
	updated.Status = statusForProgress(progress)

	if err := s.store.UpdateProgress(ctx, goalID, updated.Progress, updated.Status); err != nil {
		return Goal{}, err
	}
	if err := s.store.AppendHistory(ctx, EditEntry{
		GoalID:  goalID,
		ActorID: actor.UserID,
		Summary: diffSummary(current, updated),
	}); err != nil {
		return Goal{}, err
	}
	return updated, nil
}

func (s *Service) AddComment(ctx context.Context, actor identity.UserContext, goalID, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyComment
	}
	if _, err := s.store.Get(ctx, goalID); err != nil {
		return err
	}
	if err := s.store.InsertComment(ctx, Comment{
		GoalID:   goalID,
		AuthorID: actor.UserID,
		Body:     strings.TrimSpace(body),
	}); err != nil {
		return err
	}
	return s.store.AppendHistory(ctx, EditEntry{
		GoalID:  goalID,
		ActorID: actor.UserID,
		Summary: "comment added",
	})
}

// Realign moves a goal under a new parent. An empty newParentID clears the
// alignment.
func (s *Service) Realign(ctx context.Context, actor identity.UserContext, goalID, newParentID string) (Goal, error) {
	current, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if err := s.authorizeMutation(ctx, actor, current); err != nil {
		return Goal{}, err
	}
	if newParentID == goalID {
		return Goal{}, ErrSelfAlignment
	}

	if newParentID != "" {
		parent, err := s.store.Get(ctx, newParentID)
		if err != nil {
			if errors.Is(err, ErrGoalNotFound) {
				return Goal{}, ErrAlignmentNotFound
			}
			return Goal{}, err
		}
		if current.Kind == KindKeyResult && parent.Kind != KindObjective {
			return Goal{}, fmt.Errorf("%w: target %q is a %s", ErrInvalidAlignment, parent.Title, parent.Kind)
		}
		cyclic, err := wouldCycle(ctx, goalID, newParentID, s.store.ParentID)
		if err != nil {
			return Goal{}, err
		}
		if cyclic {
			return Goal{}, fmt.Errorf("%w: %s is a descendant of %s", ErrCyclicAlignment, newParentID, goalID)
		}
	}

	updated := current
	updated.ParentID = newParentID
	if err := s.store.UpdateParent(ctx, goalID, newParentID); err != nil {
		return Goal{}, err
	}
	if err := s.store.AppendHistory(ctx, EditEntry{
		GoalID:  goalID,
		ActorID: actor.UserID,
		Summary: diffSummary(current, updated),
	}); err != nil {
		return Goal{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, actor identity.UserContext, goalID string) (GoalDetails, error) {
	g, err := s.store.Get(ctx, goalID)
	if err != nil {
		return GoalDetails{}, err
	}
	if g.Visibility == VisibilityPrivate && g.OwnerID != actor.EmployeeID && !privileged(actor) {
		return GoalDetails{}, ErrGoalNotFound
	}
	comments, err := s.store.ListComments(ctx, goalID)
	if err != nil {
		return GoalDetails{}, err
	}
	history, err := s.store.ListHistory(ctx, goalID)
	if err != nil {
		return GoalDetails{}, err
	}
	return GoalDetails{Goal: g, Comments: comments, History: history}, nil
}

func (s *Service) List(ctx context.Context, actor identity.UserContext, filter Filter) ([]Goal, error) {
	filter.ViewerID = actor.EmployeeID
	filter.Privileged = privileged(actor)
	return s.store.List(ctx, filter)
}

func (s *Service) authorizeMutation(ctx context.Context, actor identity.UserContext, g Goal) error {
	if privileged(actor) || g.OwnerID == actor.EmployeeID {
		return nil
	}
	if s.directory != nil {
		owner, err := s.directory.EmployeeByID(ctx, g.OwnerID)
		if err == nil && owner.ManagerID == actor.EmployeeID {
			return nil
		}
	}
	return ErrNotGoalOwner
}

func privileged(actor identity.UserContext) bool {
	return actor.Role == identity.RoleHR || actor.Role == identity.RoleAdmin
}
