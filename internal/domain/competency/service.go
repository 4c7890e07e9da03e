package competency

import (
	"context"
	"errors"
	"sort"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Competency, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Competency{}, ErrNameRequired
	}
	if err := validateCriteria(input.Criteria); err != nil {
		return Competency{}, err
	}

	if _, err := s.store.GetByName(ctx, name); err == nil {
		return Competency{}, ErrNameTaken
	} else if !errors.Is(err, ErrCompetencyNotFound) {
		return Competency{}, err
	}

	c := Competency{
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		Departments: input.Departments,
		Criteria:    input.Criteria,
	}
	id, err := s.store.Insert(ctx, c)
	if err != nil {
		return Competency{}, err
	}
	c.ID = id
	return c, nil
}

// Update rejects changes once a submitted rating references the competency;
// the criteria a rating was scored against must stay retrievable as written.
func (s *Service) Update(ctx context.Context, competencyID string, input CreateInput) (Competency, error) {
	current, err := s.store.Get(ctx, competencyID)
	if err != nil {
		return Competency{}, err
	}
	referenced, err := s.store.ReferencedBySubmittedRating(ctx, competencyID)
	if err != nil {
		return Competency{}, err
	}
	if referenced {
		return Competency{}, ErrCompetencyInUse
	}
	if err := validateCriteria(input.Criteria); err != nil {
		return Competency{}, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		current.Name = name
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		current.Category = category
	}
	if input.Departments != nil {
		current.Departments = input.Departments
	}
	if input.Criteria != nil {
		current.Criteria = input.Criteria
	}
	if err := s.store.Update(ctx, current); err != nil {
		return Competency{}, err
	}
	return current, nil
}

func (s *Service) Get(ctx context.Context, competencyID string) (Competency, error) {
	return s.store.Get(ctx, competencyID)
}

func (s *Service) List(ctx context.Context, department string) ([]Competency, error) {
	return s.store.List(ctx, department)
}

// Exists reports whether a competency id is known; the rating domain uses
// it to validate score sets.
func (s *Service) Exists(ctx context.Context, competencyID string) (bool, error) {
	_, err := s.store.Get(ctx, competencyID)
	if errors.Is(err, ErrCompetencyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func validateCriteria(criteria []RatingCriterion) error {
	if len(criteria) == 0 {
		return nil
	}
	levels := make([]int, 0, len(criteria))
	seen := map[int]bool{}
	for _, criterion := range criteria {
		if seen[criterion.Level] {
			return ErrCriteriaOrder
		}
		seen[criterion.Level] = true
		levels = append(levels, criterion.Level)
	}
	if !sort.IntsAreSorted(levels) {
		return ErrCriteriaOrder
	}
	return nil
}
