package calibration

const (
	StatusPending  = "pending"
	StatusInReview = "in-review"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	SessionScheduled  = "scheduled"
	SessionInProgress = "in-progress"
	SessionCompleted  = "completed"
)

func decided(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
