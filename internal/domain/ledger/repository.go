package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages ledger entry persistence. Entries are immutable once
// written; there are no update operations by design.
type Repository interface {
	// CreatePair persists both legs of a double-entry pair as a grouped
	// ordered insert. Inside a transactional session the insert is atomic
	// with the balance mutation; outside one it is best-effort grouped.
	CreatePair(ctx context.Context, entries []*Entry) error

	GetByReference(ctx context.Context, reference string) ([]*Entry, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ErrPairNotFound indicates no entries exist for a reference
type ErrPairNotFound struct {
	Reference string
}

func (e ErrPairNotFound) Error() string {
	return "ledger pair not found: " + e.Reference
}

// Is matches any ErrPairNotFound when the target reference is empty
func (e ErrPairNotFound) Is(target error) bool {
	t, ok := target.(ErrPairNotFound)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}
