package export

import "context"

// Confirmer decides whether a collection is exported.
type Confirmer interface {
	Confirm(ctx context.Context, collection string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, collection string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, collection string) (bool, error) {
	return f(ctx, collection)
}

// ConfirmAll accepts every collection.
var ConfirmAll Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
