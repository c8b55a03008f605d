package alertnotifier

import (
	"context"
	"errors"
	"waterreminder/internal/core/domain/alert"
	"waterreminder/internal/core/domain/reminder"
)

// Composite delivers a notification through every configured channel.
// A failing channel does not keep the others from being notified.
type Composite struct {
	notifiers []alert.Notifier
}

func NewComposite(notifiers ...alert.Notifier) *Composite {
	return &Composite{notifiers: notifiers}
}

func (c *Composite) Len() int {
	return len(c.notifiers)
}

func (c *Composite) Notify(ctx context.Context, notification alert.Notification) error {
	var errs []error
	for _, n := range c.notifiers {
		if err := n.Notify(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Composite) Cancel(ctx context.Context, reminderID reminder.ID) error {
	var errs []error
	for _, n := range c.notifiers {
		if err := n.Cancel(ctx, reminderID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
