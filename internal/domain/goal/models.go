package goal

import "time"

type Goal struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Kind       string    `json:"kind"`
	OwnerID    string    `json:"ownerId"`
	Department string    `json:"department,omitempty"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Weightage  float64   `json:"weightage"`
	Progress   float64   `json:"progress"`
	Status     string    `json:"status"`
	ParentID   string    `json:"parentId,omitempty"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goalId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// EditEntry is one line of a goal's append-only edit history.
type EditEntry struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goalId"`
	ActorID   string    `json:"actorId"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

type GoalDetails struct {
	Goal     Goal        `json:"goal"`
	Comments []Comment   `json:"comments"`
	History  []EditEntry `json:"history"`
}

type CreateInput struct {
	Title      string
	Kind       string
	OwnerID    string
	Department string
	StartDate  time.Time
	EndDate    time.Time
	Weightage  float64
	Visibility string
	ParentID   string
}

type ProgressInput struct {
	Absolute *float64
	Delta    *float64
}

type Filter struct {
	OwnerID    string
	Department string
	Status     string

	// Visibility scoping, filled in by the service from the viewer's
	// identity, never by callers.
	ViewerID   string
	Privileged bool
}
