package reconciliation

import (
	"context"
)

// Repository persists reconciliation records. Create must never block swap
// execution on constraint errors; callers treat failures as log-only.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetUnresolved(ctx context.Context, limit int) ([]*Record, error)
	MarkResolved(ctx context.Context, id int64) error
}

// ErrRecordNotFound indicates a missing reconciliation record
type ErrRecordNotFound struct {
	ID int64
}

func (e ErrRecordNotFound) Error() string {
	return "reconciliation record not found"
}

// Is matches any ErrRecordNotFound when the target ID is zero
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.ID == 0 {
		return true
	}
	return e.ID == t.ID
}
