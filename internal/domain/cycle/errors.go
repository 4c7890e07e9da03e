package cycle

import "errors"

var (
	ErrCycleNotFound          = errors.New("review cycle not found")
	ErrNameRequired           = errors.New("cycle name is required")
	ErrInvalidType            = errors.New("cycle type must be annual, mid-year, or quarterly")
	ErrInvalidPeriod          = errors.New("cycle start date must fall before its end date")
	ErrCycleNotEditable       = errors.New("roster and template only change while a cycle is draft")
	ErrEmptyRoster            = errors.New("cannot activate a cycle with an empty roster")
	ErrInvalidTransition      = errors.New("cycle status transition is not allowed")
	ErrReviewsIncomplete      = errors.New("cycle has incomplete reviews; use force to complete anyway")
	ErrDuplicateReviewee      = errors.New("roster lists the same reviewee more than once")
	ErrManagerRequired        = errors.New("every roster entry needs a manager reviewer")
	ErrSelfAsReviewer         = errors.New("an employee cannot be assigned as their own reviewer")
	ErrConcurrentModification = errors.New("cycle changed concurrently; re-read and retry")
)
