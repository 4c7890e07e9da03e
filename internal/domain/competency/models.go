package competency

import "time"

// RatingCriterion describes what a given level on the rating scale looks
// like for one competency.
type RatingCriterion struct {
	Level       int    `json:"level"`
	Description string `json:"description"`
}

type Competency struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Departments []string          `json:"departments"`
	Criteria    []RatingCriterion `json:"criteria"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type CreateInput struct {
	Name        string
	Category    string
	Departments []string
	Criteria    []RatingCriterion
}
