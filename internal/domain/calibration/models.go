package calibration

import "time"

// Calibration tracks one employee's rating through the calibration review
// workflow for a cycle.
type Calibration struct {
	ID             string     `json:"id"`
	CycleID        string     `json:"cycleId"`
	EmployeeID     string     `json:"employeeId"`
	RatingID       string     `json:"ratingId"`
	SessionID      string     `json:"sessionId,omitempty"`
	OriginalRating float64    `json:"originalRating"`
	ProposedRating *float64   `json:"proposedRating,omitempty"`
	Justification  string     `json:"justification,omitempty"`
	Status         string     `json:"status"`
	ProposedBy     string     `json:"proposedBy,omitempty"`
	DecidedBy      string     `json:"decidedBy,omitempty"`
	DecideReason   string     `json:"decideReason,omitempty"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Session is a scheduled calibration meeting covering a set of calibrations
// for one cycle.
type Session struct {
	ID             string     `json:"id"`
	CycleID        string     `json:"cycleId"`
	Name           string     `json:"name"`
	Department     string     `json:"department,omitempty"`
	ScheduledAt    time.Time  `json:"scheduledAt"`
	FacilitatorID  string     `json:"facilitatorId"`
	ParticipantIDs []string   `json:"participantIds,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
	CalibrationIDs []string   `json:"calibrationIds,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Progress aggregates the decision state of a session's calibrations.
type Progress struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	InReview int `json:"inReview"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type ProposeInput struct {
	ProposedRating float64 `json:"proposedRating"`
	Justification  string  `json:"justification"`
}

type SessionInput struct {
	CycleID        string    `json:"cycleId"`
	Name           string    `json:"name"`
	Department     string    `json:"department"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	FacilitatorID  string    `json:"facilitatorId"`
	ParticipantIDs []string  `json:"participantIds"`
	Notes          string    `json:"notes"`
}
