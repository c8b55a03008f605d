package alarm

import (
	"context"
	"fmt"
	"time"
	c "waterreminder/internal/core/domain/common"
	"waterreminder/internal/core/domain/reminder"
)

type Mode string

const (
	ModeExact      = Mode("exact")
	ModeBestEffort = Mode("best_effort")
)

// Token identifies one arming of a wake-up. A delivery is only honoured
// while its token is the pending one for the reminder.
type Token string

// Request is a pending wake-up for a reminder.
type Request struct {
	ID    reminder.ID
	Time  reminder.TimeOfDay
	At    time.Time
	Mode  Mode
	Token Token
}

func (r Request) String() string {
	return fmt.Sprintf("Request(id=%d, time=%s, at=%s, mode=%s)", r.ID, r.Time, r.At.Format(time.RFC3339), r.Mode)
}

func (r Request) Delivery() Delivery {
	return Delivery{ID: r.ID, Time: r.Time, At: r.At, Token: r.Token}
}

// Delivery is what a backend hands back when a wake-up fires.
type Delivery struct {
	ID    reminder.ID
	Time  reminder.TimeOfDay
	At    time.Time
	Token Token
}

type ScheduleInput struct {
	ID   reminder.ID
	Time reminder.TimeOfDay
	// After is the reference instant for the next occurrence.
	// The current time is used when it is absent or already passed.
	After c.Optional[time.Time]
}

type Scheduler interface {
	Schedule(ctx context.Context, input ScheduleInput) (Request, error)
	Cancel(ctx context.Context, id reminder.ID) error
	Claim(ctx context.Context, delivery Delivery) bool
	Pending(id reminder.ID) (Request, bool)
}

// Backend delivers armed requests at (or around) their instant.
type Backend interface {
	Arm(ctx context.Context, request Request) error
	Disarm(ctx context.Context, id reminder.ID) error
}

type Permissions interface {
	CanScheduleExactAlarms() bool
}

type TokenGenerator interface {
	GenerateAlarmToken() Token
}
