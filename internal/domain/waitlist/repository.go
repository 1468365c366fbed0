package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for waitlist entries.
type Repository interface {
	// FindByID retrieves one entry.
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// ListWaitingBefore returns waiting entries requested before asOf.
	ListWaitingBefore(ctx context.Context, asOf time.Time) ([]*Entry, error)

	// ListByDate returns entries for one requested date, any status.
	ListByDate(ctx context.Context, date time.Time) ([]*Entry, error)

	// Save inserts a new entry.
	Save(ctx context.Context, e *Entry) error

	// Update persists changes to an existing entry.
	Update(ctx context.Context, e *Entry) error
}
