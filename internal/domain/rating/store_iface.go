package rating

import "context"

type StoreAPI interface {
	Get(ctx context.Context, employeeID, cycleID string) (Rating, error)
	GetByID(ctx context.Context, ratingID string) (Rating, error)
	// Insert creates a draft rating with its score set.
	Insert(ctx context.Context, r Rating) (string, error)
	// ReplaceScores rewrites the score set and final rating while the rating
	// stays in expectStatus; reports whether the write landed.
	ReplaceScores(ctx context.Context, ratingID string, scores []CompetencyScore, finalRating float64, expectStatus string) (bool, error)
	// TransitionStatus flips status conditionally on the current value and
	// bumps the version counter; reports whether the write landed.
	TransitionStatus(ctx context.Context, ratingID, fromStatus, toStatus string) (bool, error)
	AppendSnapshot(ctx context.Context, snapshot Snapshot) error
	ListSnapshots(ctx context.Context, ratingID string) ([]Snapshot, error)
}
