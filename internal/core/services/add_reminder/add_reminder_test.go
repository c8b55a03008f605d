package addreminder

import (
	"context"
	"errors"
	"testing"
	"time"
	"waterreminder/internal/core/domain/alarm"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/core/services"

	"github.com/stretchr/testify/suite"
)

var (
	Now      = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	EXISTING = reminder.Reminder{ID: 1, Time: reminder.TimeOfDay{Hour: 12, Minute: 0}}
)

type testSuite struct {
	suite.Suite
	logger      *logging.FakeLogger
	unitOfWork  *uow.FakeUnitOfWork
	scheduler   *alarm.FakeScheduler
	idGenerator *reminder.FakeIDGenerator
	service     services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.logger = logging.NewFakeLogger()
	suite.unitOfWork = uow.NewFakeUnitOfWork(EXISTING)
	suite.scheduler = alarm.NewFakeScheduler(Now)
	suite.idGenerator = reminder.NewFakeIDGenerator(2)
	suite.service = New(
		suite.logger,
		suite.unitOfWork,
		suite.scheduler,
		suite.idGenerator,
	)
}

func TestAddReminderService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestAddSuccess() {
	cases := []struct {
		id          string
		time        reminder.TimeOfDay
		scheduledAt time.Time
	}{
		{id: "tomorrow", time: reminder.TimeOfDay{Hour: 8, Minute: 0}, scheduledAt: time.Date(2024, 5, 16, 8, 0, 0, 0, time.UTC)},
		{id: "today", time: reminder.TimeOfDay{Hour: 10, Minute: 30}, scheduledAt: time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			s.SetupTest()

			result, err := s.service.Run(context.Background(), Input{Time: testcase.time})

			assert := s.Require()
			assert.Nil(err)
			expected := reminder.Reminder{ID: 2, Time: testcase.time}
			assert.Equal(expected, result.Reminder)
			assert.Equal(1, result.Index)
			assert.Equal(testcase.scheduledAt, result.ScheduledAt)

			assert.True(s.unitOfWork.Context.WasCommitCalled)
			assert.Equal([]reminder.Reminder{EXISTING, expected}, s.unitOfWork.Context.Persisted)
			pending, ok := s.scheduler.Pending(2)
			assert.True(ok)
			assert.Equal(testcase.scheduledAt, pending.At)
		})
	}
}

func (s *testSuite) TestAddInvalidTime() {
	// Exercise ---
	_, err := s.service.Run(context.Background(), Input{Time: reminder.TimeOfDay{Hour: 25, Minute: 0}})

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, reminder.ErrInvalidTimeOfDay)
	assert.False(s.unitOfWork.Context.WasCommitCalled)
	assert.Equal(0, s.scheduler.PendingCount())
}

func (s *testSuite) TestAddScheduleError() {
	// Setup ---
	s.scheduler.ScheduleError = errors.New("scheduling failed")

	// Exercise ---
	_, err := s.service.Run(context.Background(), Input{Time: reminder.TimeOfDay{Hour: 8, Minute: 0}})

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, s.scheduler.ScheduleError)
	assert.False(s.unitOfWork.Context.WasCommitCalled)
	assert.Equal([]reminder.Reminder{EXISTING}, s.unitOfWork.Context.Collection.All())
}

func (s *testSuite) TestAddCommitErrorCancelsWakeUp() {
	// Setup ---
	s.unitOfWork.Context.CommitError = errors.New("store is unavailable")

	// Exercise ---
	_, err := s.service.Run(context.Background(), Input{Time: reminder.TimeOfDay{Hour: 8, Minute: 0}})

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, s.unitOfWork.Context.CommitError)
	assert.Equal([]reminder.ID{2}, s.scheduler.Canceled)
	assert.Equal(0, s.scheduler.PendingCount())
	assert.Equal([]reminder.Reminder{EXISTING}, s.unitOfWork.Context.Collection.All())
}

func (s *testSuite) TestAddIDConflict() {
	// Setup ---
	s.idGenerator.Next = EXISTING.ID

	// Exercise ---
	_, err := s.service.Run(context.Background(), Input{Time: reminder.TimeOfDay{Hour: 8, Minute: 0}})

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, reminder.ErrReminderIDConflict)
	assert.Len(s.scheduler.Scheduled, 0)
}
