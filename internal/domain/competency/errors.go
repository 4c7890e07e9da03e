package competency

import "errors"

var (
	ErrCompetencyNotFound = errors.New("competency not found")
	ErrNameRequired       = errors.New("competency name is required")
	ErrNameTaken          = errors.New("competency name is already in use")
	ErrCompetencyInUse    = errors.New("competency is referenced by a submitted rating and cannot be changed")
	ErrCriteriaOrder      = errors.New("rating criteria levels must be unique and ascending")
)
