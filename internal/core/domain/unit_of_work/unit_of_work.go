package uow

import (
	"context"
	"waterreminder/internal/core/domain/reminder"
)

// Context is an exclusive session over the reminder collection.
// Changes become visible to other sessions only after Commit
// persists the whole collection; Rollback restores it.
type Context interface {
	Rollback(ctx context.Context) error
	Commit(ctx context.Context) error

	// Reload replaces the collection with what is persisted,
	// without writing anything back.
	Reload(ctx context.Context) error
	Reminders() *reminder.Collection
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Context, error)
}
