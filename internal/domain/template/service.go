package template

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Template, error) {
	tmpl := Template{
		Name:     strings.TrimSpace(input.Name),
		Version:  1,
		Scale:    input.Scale,
		Sections: input.Sections,
	}
	if err := validateTemplate(tmpl); err != nil {
		return Template{}, err
	}

	id, err := s.store.Insert(ctx, tmpl)
	if err != nil {
		return Template{}, err
	}
	tmpl.ID = id
	return tmpl, nil
}

// CloneAsNewVersion is the only mutation path for a template referenced by a
// non-draft cycle: the original stays frozen for audit, the clone starts a
// new version callers can edit and bind to future cycles.
func (s *Service) CloneAsNewVersion(ctx context.Context, templateID string, changes *CreateInput) (Template, error) {
	current, err := s.store.Get(ctx, templateID)
	if err != nil {
		return Template{}, err
	}

	clone := Template{
		Name:              current.Name,
		Version:           current.Version + 1,
		PreviousVersionID: current.ID,
		Scale:             current.Scale,
		Sections:          current.Sections,
	}
	if changes != nil {
		if name := strings.TrimSpace(changes.Name); name != "" {
			clone.Name = name
		}
		if changes.Sections != nil {
			clone.Sections = changes.Sections
		}
		if changes.Scale.Min != 0 || changes.Scale.Max != 0 {
			clone.Scale = changes.Scale
		}
	}
	if err := validateTemplate(clone); err != nil {
		return Template{}, err
	}

	id, err := s.store.Insert(ctx, clone)
	if err != nil {
		return Template{}, err
	}
	clone.ID = id
	return clone, nil
}

// Update edits a template in place, permitted only while no non-draft cycle
// references it.
func (s *Service) Update(ctx context.Context, templateID string, input CreateInput) (Template, error) {
	current, err := s.store.Get(ctx, templateID)
	if err != nil {
		return Template{}, err
	}
	inUse, err := s.store.ReferencedByNonDraftCycle(ctx, templateID)
	if err != nil {
		return Template{}, err
	}
	if inUse {
		return Template{}, ErrTemplateInUse
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		current.Name = name
	}
	if input.Sections != nil {
		current.Sections = input.Sections
	}
	if input.Scale.Min != 0 || input.Scale.Max != 0 {
		current.Scale = input.Scale
	}
	if err := validateTemplate(current); err != nil {
		return Template{}, err
	}
	if err := s.store.Update(ctx, current); err != nil {
		return Template{}, err
	}
	return current, nil
}

func (s *Service) Get(ctx context.Context, templateID string) (Template, error) {
	return s.store.Get(ctx, templateID)
}

func (s *Service) List(ctx context.Context) ([]Template, error) {
	return s.store.List(ctx)
}

// Section weightages are advisory; they are validated for range but their
// sum is deliberately not enforced to total 100.
func validateTemplate(tmpl Template) error {
	if tmpl.Name == "" {
		return ErrNameRequired
	}
	if len(tmpl.Sections) == 0 {
		return ErrNoSections
	}
	if tmpl.Scale.Min >= tmpl.Scale.Max {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidScale, tmpl.Scale.Min, tmpl.Scale.Max)
	}
	for _, section := range tmpl.Sections {
		if section.Weightage < 0 || section.Weightage > 100 {
			return fmt.Errorf("%w: section %q has %v", ErrSectionWeightage, section.Title, section.Weightage)
		}
		if len(section.Questions) == 0 {
			return fmt.Errorf("%w: section %q has no questions", ErrInvalidQuestion, section.Title)
		}
		for _, question := range section.Questions {
			if question.ID == "" || strings.TrimSpace(question.Prompt) == "" {
				return fmt.Errorf("%w: question id and prompt are required", ErrInvalidQuestion)
			}
			if !ValidQuestionType(question.Type) {
				return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, question.Type)
			}
			if question.Type == QuestionTypeMultipleChoice && len(question.Options) < 2 {
				return fmt.Errorf("%w: question %q", ErrChoiceNeedsOptions, question.ID)
			}
		}
	}
	return nil
}
