package ports

import "context"

// Transactor runs a function inside a single store transaction. Every
// repository call made with the ctx passed to fn joins that transaction, so
// multi-document mutations become all-or-nothing.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
