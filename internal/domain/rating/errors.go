package rating

import "errors"

var (
	ErrRatingNotFound         = errors.New("rating not found")
	ErrNoWeightedCompetencies = errors.New("competency weightages sum to zero; nothing to average")
	ErrRatingNotEditable      = errors.New("rating scores cannot change once submitted; corrections go through calibration")
	ErrConcurrentModification = errors.New("rating changed concurrently; re-read and retry")
	ErrScoreOutOfScale        = errors.New("competency score is outside the template rating scale")
	ErrInvalidWeightage       = errors.New("competency weightage must be between 0 and 100")
	ErrUnknownCompetency      = errors.New("competency does not exist")
	ErrNoScores               = errors.New("at least one competency score is required")
	ErrNotApprover            = errors.New("actor role lacks rating approval authority")
)
