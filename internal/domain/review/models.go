package review

import "time"

type Answer struct {
	SectionID  string `json:"sectionId"`
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

// SubReview is one perspective on a PerformanceReview: the reviewee's own
// (self), the assigned manager's, or one assigned peer's. Each row submits
// independently, exactly once.
type SubReview struct {
	ID          string     `json:"id"`
	ReviewID    string     `json:"reviewId"`
	Kind        string     `json:"kind"`
	ReviewerID  string     `json:"reviewerId"`
	Status      string     `json:"status"`
	Responses   []Answer   `json:"responses,omitempty"`
	Comments    string     `json:"comments,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

type PerformanceReview struct {
	ID         string    `json:"id"`
	CycleID    string    `json:"cycleId"`
	TemplateID string    `json:"templateId"`
	RevieweeID string    `json:"revieweeId"`
	DueDate    time.Time `json:"dueDate"`
	Locked     bool      `json:"locked"`
	CreatedAt  time.Time `json:"createdAt"`
}

type HistoryEntry struct {
	ID          string    `json:"id"`
	ReviewID    string    `json:"reviewId"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Details is the external view of a review; OverallStatus is derived from
// the sub-review set on every read, never stored.
type Details struct {
	Review        PerformanceReview `json:"review"`
	SubReviews    []SubReview       `json:"subReviews"`
	History       []HistoryEntry    `json:"history"`
	OverallStatus string            `json:"overallStatus"`
}

type SubmitInput struct {
	Responses     []Answer
	Comments      string
	AllowResubmit bool
}

// PendingItem is one outstanding sub-review assignment for a reviewer.
type PendingItem struct {
	ReviewID   string    `json:"reviewId"`
	CycleID    string    `json:"cycleId"`
	RevieweeID string    `json:"revieweeId"`
	Kind       string    `json:"kind"`
	DueDate    time.Time `json:"dueDate"`
}

// StatusItem pairs a review with its derived overall status, for cycle-level
// completion checks.
type StatusItem struct {
	ReviewID   string `json:"reviewId"`
	RevieweeID string `json:"revieweeId"`
	Status     string `json:"status"`
}
