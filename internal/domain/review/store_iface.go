package review

import "context"

type StoreAPI interface {
	GetReview(ctx context.Context, reviewID string) (PerformanceReview, error)
	GetReviewByCycleEmployee(ctx context.Context, cycleID, employeeID string) (PerformanceReview, error)
	ListReviewsByCycle(ctx context.Context, cycleID string) ([]PerformanceReview, error)
	ListSubReviews(ctx context.Context, reviewID string) ([]SubReview, error)
	// SubmitSubReview writes responses and flips the row to submitted only if
	// its current status still equals expectStatus; reports whether the write
	// landed.
	SubmitSubReview(ctx context.Context, sub SubReview, expectStatus string) (bool, error)
	AppendHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context, reviewID string) ([]HistoryEntry, error)
	ListPendingForReviewer(ctx context.Context, reviewerID string) ([]PendingItem, error)
}
