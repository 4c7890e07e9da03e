package competency

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, c Competency) (string, error)
	Get(ctx context.Context, competencyID string) (Competency, error)
	GetByName(ctx context.Context, name string) (Competency, error)
	List(ctx context.Context, department string) ([]Competency, error)
	Update(ctx context.Context, c Competency) error
	ReferencedBySubmittedRating(ctx context.Context, competencyID string) (bool, error)
}
