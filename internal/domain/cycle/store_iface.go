package cycle

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, c ReviewCycle) (string, error)
	Get(ctx context.Context, cycleID string) (ReviewCycle, error)
	List(ctx context.Context, status string) ([]ReviewCycle, error)
	// UpdateDraft replaces a cycle's mutable fields and roster while it is
	// still draft. Returns false when the cycle is past draft.
	UpdateDraft(ctx context.Context, c ReviewCycle) (bool, error)
	// Activate flips draft -> active and materializes the given reviews
	// with their sub-reviews in one transaction.
	Activate(ctx context.Context, cycleID string, seeds []ReviewSeed) (bool, error)
	Transition(ctx context.Context, cycleID, fromStatus, toStatus string) (bool, error)
	// LockCascade flips completed -> locked and locks the cycle's reviews
	// and ratings in one transaction; partial locks never land.
	LockCascade(ctx context.Context, cycleID string) (bool, error)
}
