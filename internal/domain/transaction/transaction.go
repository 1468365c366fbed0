package transaction

import "context"

// Manager runs a function inside one database transaction. Repositories
// pick the transaction up from the context, so a service can compose
// several repository calls into a single atomic unit.
type Manager interface {
	// RunSerializable executes fn inside a serializable transaction.
	// A returned error rolls everything back.
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}
