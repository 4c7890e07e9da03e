package calibration

import "errors"

var (
	ErrCalibrationNotFound    = errors.New("calibration not found")
	ErrSessionNotFound        = errors.New("calibration session not found")
	ErrCalibrationExists      = errors.New("a calibration already exists for this employee and cycle")
	ErrRatingNotApproved      = errors.New("calibration requires an approved rating")
	ErrAlreadyDecided         = errors.New("calibration is already decided")
	ErrNoProposal             = errors.New("calibration has no proposed rating to decide on")
	ErrJustificationRequired  = errors.New("a justification is required when proposing an adjustment")
	ErrProposedOutOfScale     = errors.New("proposed rating is outside the template rating scale")
	ErrConcurrentModification = errors.New("calibration changed concurrently; re-read and retry")
	ErrSessionNotEditable     = errors.New("session no longer accepts changes")
	ErrCycleMismatch          = errors.New("calibration belongs to a different cycle than the session")
)
