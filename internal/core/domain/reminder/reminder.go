package reminder

import "context"

// ID is any integer, zero and negative values included. Newly generated IDs are positive.
type ID int64

// Reminder is one recurring daily reminder to drink water.
type Reminder struct {
	ID   ID
	Time TimeOfDay
}

func (r Reminder) Validate() error {
	return r.Time.Validate()
}

// Store persists the whole reminder collection as a single value.
type Store interface {
	Load(ctx context.Context) ([]Reminder, error)
	Save(ctx context.Context, reminders []Reminder) error
}

type IDGenerator interface {
	GenerateReminderID(existing []Reminder) ID
}
