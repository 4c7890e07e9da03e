package cycle

import "time"

// RosterEntry names who reviews one employee in a cycle: the reviewee's
// manager reviewer plus zero or more peers.
type RosterEntry struct {
	RevieweeID        string   `json:"revieweeId"`
	ManagerReviewerID string   `json:"managerReviewerId"`
	PeerReviewerIDs   []string `json:"peerReviewerIds,omitempty"`
}

type ReviewCycle struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	PeriodLabel       string        `json:"periodLabel"`
	Type              string        `json:"type"`
	TemplateID        string        `json:"templateId"`
	StartDate         time.Time     `json:"startDate"`
	EndDate           time.Time     `json:"endDate"`
	SelfReviewEnabled bool          `json:"selfReviewEnabled"`
	Status            string        `json:"status"`
	Roster            []RosterEntry `json:"roster,omitempty"`
	Overdue           bool          `json:"overdue,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
}

type CreateInput struct {
	Name              string        `json:"name"`
	PeriodLabel       string        `json:"periodLabel"`
	Type              string        `json:"type"`
	TemplateID        string        `json:"templateId"`
	StartDate         time.Time     `json:"startDate"`
	EndDate           time.Time     `json:"endDate"`
	SelfReviewEnabled bool          `json:"selfReviewEnabled"`
	Roster            []RosterEntry `json:"roster,omitempty"`
}

// ReviewSeed describes one review to materialize when a cycle activates.
type ReviewSeed struct {
	RevieweeID string
	DueDate    time.Time
	SubReviews []SubReviewSeed
}

type SubReviewSeed struct {
	Kind       string
	ReviewerID string
}
