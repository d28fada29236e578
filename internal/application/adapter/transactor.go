// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "context"

// Transactor runs a function inside a database transaction. Repositories
// called with the context passed to fn take part in that transaction. A call
// made while a transaction is already open joins it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
