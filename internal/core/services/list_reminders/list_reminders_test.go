package listreminders

import (
	"context"
	"errors"
	"testing"
	"time"
	"waterreminder/internal/core/domain/alarm"
	c "waterreminder/internal/core/domain/common"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"

	"github.com/stretchr/testify/require"
)

var (
	Now        = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	REMINDER_1 = reminder.Reminder{ID: 1, Time: reminder.TimeOfDay{Hour: 8, Minute: 0}}
	REMINDER_2 = reminder.Reminder{ID: 2, Time: reminder.TimeOfDay{Hour: 12, Minute: 0}}
)

func TestListReminders(t *testing.T) {
	// Setup ---
	unitOfWork := uow.NewFakeUnitOfWork(REMINDER_1, REMINDER_2)
	scheduler := alarm.NewFakeScheduler(Now)
	_, err := scheduler.Schedule(context.Background(), alarm.ScheduleInput{ID: REMINDER_2.ID, Time: REMINDER_2.Time})
	require.Nil(t, err)
	service := New(logging.NewFakeLogger(), unitOfWork, scheduler)

	// Exercise ---
	result, err := service.Run(context.Background(), Input{})

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal([]Item{
		{Index: 0, Reminder: REMINDER_1},
		{
			Index:    1,
			Reminder: REMINDER_2,
			NextAt:   c.NewOptional(time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC), true),
			Mode:     c.NewOptional(alarm.ModeExact, true),
		},
	}, result.Reminders)
	assert.False(unitOfWork.Context.WasCommitCalled)
}

func TestListRemindersEmpty(t *testing.T) {
	service := New(logging.NewFakeLogger(), uow.NewFakeUnitOfWork(), alarm.NewFakeScheduler(Now))

	result, err := service.Run(context.Background(), Input{})

	assert := require.New(t)
	assert.Nil(err)
	assert.NotNil(result.Reminders)
	assert.Len(result.Reminders, 0)
}

func TestListRemindersBeginError(t *testing.T) {
	unitOfWork := uow.NewFakeUnitOfWork()
	unitOfWork.BeginError = errors.New("store is unavailable")
	service := New(logging.NewFakeLogger(), unitOfWork, alarm.NewFakeScheduler(Now))

	_, err := service.Run(context.Background(), Input{})

	require.ErrorIs(t, err, unitOfWork.BeginError)
}
