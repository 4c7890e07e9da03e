package review

import "errors"

var (
	ErrReviewNotFound   = errors.New("performance review not found")
	ErrReviewLocked     = errors.New("review is locked; no further submissions are accepted")
	ErrAlreadySubmitted = errors.New("sub-review was already submitted")
	ErrNotAReviewer     = errors.New("actor is not an assigned reviewer for this sub-review")
	ErrInvalidResponses = errors.New("responses do not match the review template")
)
