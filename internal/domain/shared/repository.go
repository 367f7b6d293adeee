package shared

import "context"

// TxManager runs a function inside a single persistence transaction.
// Repositories called within fn observe the same transaction through the
// context, so all staged mutations commit or roll back together.
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
