package template

import "time"

type Question struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
}

type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Weightage float64    `json:"weightage"`
	Questions []Question `json:"questions"`
}

type RatingScale struct {
	Min    float64        `json:"min"`
	Max    float64        `json:"max"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Template is a versioned question set. Once any non-draft cycle references
// a template it is frozen; changes go through CloneAsNewVersion.
type Template struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Version           int         `json:"version"`
	PreviousVersionID string      `json:"previousVersionId,omitempty"`
	Scale             RatingScale `json:"scale"`
	Sections          []Section   `json:"sections"`
	CreatedAt         time.Time   `json:"createdAt"`
}

type CreateInput struct {
	Name     string
	Scale    RatingScale
	Sections []Section
}
