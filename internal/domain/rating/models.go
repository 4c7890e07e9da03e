package rating

import "time"

type CompetencyScore struct {
	CompetencyID string  `json:"competencyId"`
	Score        float64 `json:"score"`
	Weightage    float64 `json:"weightage"`
	Comment      string  `json:"comment,omitempty"`
}

// Snapshot is one entry in a rating's append-only history, taken whenever a
// value becomes the rating of record (approval or calibration write-back).
type Snapshot struct {
	ID        string    `json:"id"`
	RatingID  string    `json:"ratingId"`
	Value     float64   `json:"value"`
	CycleID   string    `json:"cycleId"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

type Rating struct {
	ID          string            `json:"id"`
	CycleID     string            `json:"cycleId"`
	EmployeeID  string            `json:"employeeId"`
	Status      string            `json:"status"`
	FinalRating float64           `json:"finalRating"`
	Version     int               `json:"version"`
	Scores      []CompetencyScore `json:"scores,omitempty"`
	Snapshots   []Snapshot        `json:"snapshots,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}
