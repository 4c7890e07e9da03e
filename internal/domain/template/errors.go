package template

import "errors"

var (
	ErrTemplateNotFound   = errors.New("review template not found")
	ErrTemplateInUse      = errors.New("template is referenced by a non-draft cycle; clone it as a new version instead")
	ErrNameRequired       = errors.New("template name is required")
	ErrNoSections         = errors.New("template needs at least one section")
	ErrInvalidScale       = errors.New("rating scale min must be below max")
	ErrInvalidQuestion    = errors.New("invalid question definition")
	ErrSectionWeightage   = errors.New("section weightage must be between 0 and 100")
	ErrChoiceNeedsOptions = errors.New("multiple-choice questions need at least two options")
)
