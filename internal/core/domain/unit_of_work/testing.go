package uow

import (
	"context"
	"waterreminder/internal/core/domain/reminder"
)

type FakeUnitOfWorkContext struct {
	Collection        *reminder.Collection
	Persisted         []reminder.Reminder
	CommitError       error
	ReloadError       error
	WasRollbackCalled bool
	WasCommitCalled   bool
	WasReloadCalled   bool
	snapshot          []reminder.Reminder
}

func NewFakeUnitOfWorkContext(reminders ...reminder.Reminder) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{
		Collection: reminder.NewCollection(reminders...),
		Persisted:  reminders,
	}
}

func (c *FakeUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.WasRollbackCalled = true
	if c.snapshot != nil {
		c.Collection.Reset(c.snapshot)
		c.snapshot = nil
	}
	return nil
}

func (c *FakeUnitOfWorkContext) Commit(ctx context.Context) error {
	if c.CommitError != nil {
		return c.CommitError
	}
	c.WasCommitCalled = true
	c.Persisted = c.Collection.All()
	c.snapshot = nil
	return nil
}

func (c *FakeUnitOfWorkContext) Reload(ctx context.Context) error {
	c.WasReloadCalled = true
	if c.ReloadError != nil {
		return c.ReloadError
	}
	c.Collection.Reset(c.Persisted)
	c.snapshot = c.Collection.All()
	return nil
}

func (c *FakeUnitOfWorkContext) Reminders() *reminder.Collection {
	return c.Collection
}

type FakeUnitOfWork struct {
	Context    *FakeUnitOfWorkContext
	BeginError error
}

func NewFakeUnitOfWork(reminders ...reminder.Reminder) *FakeUnitOfWork {
	return &FakeUnitOfWork{Context: NewFakeUnitOfWorkContext(reminders...)}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	if u.BeginError != nil {
		return nil, u.BeginError
	}
	u.Context.snapshot = u.Context.Collection.All()
	return u.Context, nil
}
