package goal

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, g Goal) (string, error)
	Get(ctx context.Context, goalID string) (Goal, error)
	ParentID(ctx context.Context, goalID string) (string, error)
	UpdateProgress(ctx context.Context, goalID string, progress float64, status string) error
	UpdateParent(ctx context.Context, goalID, parentID string) error
	List(ctx context.Context, filter Filter) ([]Goal, error)
	InsertComment(ctx context.Context, c Comment) error
	ListComments(ctx context.Context, goalID string) ([]Comment, error)
	AppendHistory(ctx context.Context, entry EditEntry) error
	ListHistory(ctx context.Context, goalID string) ([]EditEntry, error)
}
