package uow

import (
	"context"
	"sync"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"
)

type storeUnitOfWorkContext struct {
	uow      *StoreUnitOfWork
	snapshot []reminder.Reminder
	done     bool
}

func (c *storeUnitOfWorkContext) Commit(ctx context.Context) error {
	if c.done {
		return e.NewInvalidStateError("unit of work is already finished")
	}
	defer c.finish()
	if err := c.uow.store.Save(ctx, c.uow.reminders.All()); err != nil {
		c.uow.reminders.Reset(c.snapshot)
		return err
	}
	return nil
}

func (c *storeUnitOfWorkContext) Rollback(ctx context.Context) error {
	if c.done {
		return nil
	}
	c.uow.reminders.Reset(c.snapshot)
	c.finish()
	return nil
}

func (c *storeUnitOfWorkContext) Reload(ctx context.Context) error {
	if c.done {
		return e.NewInvalidStateError("unit of work is already finished")
	}
	loaded, err := c.uow.store.Load(ctx)
	if err != nil {
		return err
	}
	c.uow.reminders.Reset(loaded)
	c.snapshot = c.uow.reminders.All()
	return nil
}

func (c *storeUnitOfWorkContext) Reminders() *reminder.Collection {
	return c.uow.reminders
}

func (c *storeUnitOfWorkContext) finish() {
	c.done = true
	c.uow.lock.Unlock()
}

// StoreUnitOfWork keeps the reminder collection in memory and writes the
// whole of it to the store on every commit. Sessions are exclusive.
type StoreUnitOfWork struct {
	store     reminder.Store
	lock      sync.Mutex
	reminders *reminder.Collection
	loaded    bool
}

func NewStoreUnitOfWork(store reminder.Store) *StoreUnitOfWork {
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	return &StoreUnitOfWork{store: store, reminders: reminder.NewCollection()}
}

func (u *StoreUnitOfWork) Begin(ctx context.Context) (uow.Context, error) {
	u.lock.Lock()
	if !u.loaded {
		loaded, err := u.store.Load(ctx)
		if err != nil {
			u.lock.Unlock()
			return nil, err
		}
		u.reminders.Reset(loaded)
		u.loaded = true
	}
	return &storeUnitOfWorkContext{uow: u, snapshot: u.reminders.All()}, nil
}
