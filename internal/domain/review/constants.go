package review

const (
	KindSelf    = "self"
	KindManager = "manager"
	KindPeer    = "peer"

	SubStatusPending   = "pending"
	SubStatusSubmitted = "submitted"

	OverallNotStarted = "not-started"
	OverallInProgress = "in-progress"
	OverallCompleted  = "completed"
	OverallLocked     = "locked"

	ActionSelfSubmitted    = "self_review_submitted"
	ActionManagerSubmitted = "manager_review_submitted"
	ActionPeerSubmitted    = "peer_review_submitted"
	ActionResubmitOverride = "resubmission_override"
	ActionForceCompleted   = "cycle_force_completed"
	ActionLocked           = "review_locked"
)
