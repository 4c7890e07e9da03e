package template

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, tmpl Template) (string, error)
	Get(ctx context.Context, templateID string) (Template, error)
	List(ctx context.Context) ([]Template, error)
	Update(ctx context.Context, tmpl Template) error
	ReferencedByNonDraftCycle(ctx context.Context, templateID string) (bool, error)
}
