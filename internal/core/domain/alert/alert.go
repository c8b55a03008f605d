package alert

import (
	"context"
	"fmt"
	"time"
	"waterreminder/internal/core/domain/reminder"
)

const (
	DefaultTimeout = 30 * time.Second
	ActionLabel    = "Drink Water"
)

// VibrationPattern alternates on and off periods, starting with on.
var VibrationPattern = []time.Duration{
	time.Second, 500 * time.Millisecond,
	time.Second, 500 * time.Millisecond,
	time.Second,
}

type State string

const (
	StateIdle     = State("idle")
	StateSounding = State("sounding")
)

type StopReason string

const (
	StopReasonAcknowledged = StopReason("acknowledged")
	StopReasonTimeout      = StopReason("timeout")
	StopReasonReplaced     = StopReason("replaced")
	StopReasonShutdown     = StopReason("shutdown")
)

// Alert is a single firing of a reminder.
type Alert struct {
	ReminderID reminder.ID
	Time       reminder.TimeOfDay
	StartedAt  time.Time
}

func (a Alert) String() string {
	return fmt.Sprintf("Alert(reminder=%d, time=%s)", a.ReminderID, a.Time)
}

type Notification struct {
	ReminderID  reminder.ID
	Time        reminder.TimeOfDay
	Title       string
	Text        string
	ActionLabel string
}

func NewNotification(a Alert) Notification {
	return Notification{
		ReminderID:  a.ReminderID,
		Time:        a.Time,
		Title:       "Time to drink water",
		Text:        fmt.Sprintf("It is %s, have a glass of water.", a.Time),
		ActionLabel: ActionLabel,
	}
}

// Player plays the alert tone in a loop until stopped.
type Player interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Vibrator interface {
	Vibrate(ctx context.Context, pattern []time.Duration) error
	Cancel(ctx context.Context) error
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
	Cancel(ctx context.Context, reminderID reminder.ID) error
}

type Permissions interface {
	CanPostNotifications() bool
}

// Ringer owns the single process-wide sounding alert.
type Ringer interface {
	Start(ctx context.Context, alert Alert)
	Stop(ctx context.Context, reminderID reminder.ID, reason StopReason) bool
	Current() (Alert, State)
}
