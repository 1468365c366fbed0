package state

import "context"

// Repository defines the persistence contract for state configuration.
type Repository interface {
	// ListAll returns every configured state ordered by display priority.
	ListAll(ctx context.Context) ([]State, error)

	// Registry loads all states into a lookup registry.
	Registry(ctx context.Context) (*Registry, error)

	// Save inserts or updates a configured state.
	Save(ctx context.Context, s State) error

	// Delete removes a non-system state by code.
	Delete(ctx context.Context, code string) error

	// EnsureSeeded inserts the canonical states if the table is empty.
	EnsureSeeded(ctx context.Context) error
}
