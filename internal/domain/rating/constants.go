package rating

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusLocked    = "locked"

	SnapshotSourceReview      = "review"
	SnapshotSourceCalibration = "calibration"
)
