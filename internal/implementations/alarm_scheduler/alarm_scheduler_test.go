package alarmscheduler

import (
	"context"
	"errors"
	"testing"
	"time"
	"waterreminder/internal/core/domain/alarm"
	c "waterreminder/internal/core/domain/common"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"

	"github.com/stretchr/testify/suite"
)

const REMINDER_ID = reminder.ID(42)

var (
	Now   = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	EIGHT = reminder.TimeOfDay{Hour: 8, Minute: 0}
)

type testSuite struct {
	suite.Suite
	logger      *logging.FakeLogger
	exact       *alarm.FakeBackend
	bestEffort  *alarm.FakeBackend
	permissions *alarm.FakePermissions
	now         time.Time
	scheduler   *Scheduler
}

func (suite *testSuite) SetupTest() {
	suite.logger = logging.NewFakeLogger()
	suite.exact = alarm.NewFakeBackend()
	suite.bestEffort = alarm.NewFakeBackend()
	suite.permissions = &alarm.FakePermissions{ExactAlarmsAllowed: true}
	suite.now = Now
	suite.scheduler = New(
		suite.logger,
		suite.exact,
		suite.bestEffort,
		suite.permissions,
		&alarm.FakeTokenGenerator{},
		func() time.Time { return suite.now },
		time.UTC,
	)
}

func TestAlarmScheduler(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) schedule(id reminder.ID, t reminder.TimeOfDay) alarm.Request {
	request, err := s.scheduler.Schedule(context.Background(), alarm.ScheduleInput{ID: id, Time: t})
	s.Require().Nil(err)
	return request
}

func (s *testSuite) TestScheduleNextOccurrence() {
	cases := []struct {
		id       string
		now      time.Time
		expected time.Time
	}{
		{id: "today", now: time.Date(2024, 5, 15, 7, 0, 0, 0, time.UTC), expected: time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)},
		{id: "tomorrow", now: time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC), expected: time.Date(2024, 5, 16, 8, 0, 0, 0, time.UTC)},
	}

	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			s.SetupTest()
			s.now = testcase.now

			request := s.schedule(REMINDER_ID, EIGHT)

			assert := s.Require()
			assert.Equal(testcase.expected, request.At)
			assert.Equal(alarm.ModeExact, request.Mode)
			assert.Equal(request, s.exact.Armed[REMINDER_ID])
			pending, ok := s.scheduler.Pending(REMINDER_ID)
			assert.True(ok)
			assert.Equal(request, pending)
		})
	}
}

func (s *testSuite) TestScheduleAfterReference() {
	// Exercise ---
	request, err := s.scheduler.Schedule(context.Background(), alarm.ScheduleInput{
		ID:    REMINDER_ID,
		Time:  EIGHT,
		After: c.NewOptional(time.Date(2024, 5, 16, 8, 0, 0, 0, time.UTC), true),
	})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC), request.At)
}

func (s *testSuite) TestSchedulePastReferenceUsesNow() {
	// Exercise ---
	request, err := s.scheduler.Schedule(context.Background(), alarm.ScheduleInput{
		ID:    REMINDER_ID,
		Time:  EIGHT,
		After: c.NewOptional(time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC), true),
	})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(time.Date(2024, 5, 16, 8, 0, 0, 0, time.UTC), request.At)
}

func (s *testSuite) TestScheduleBestEffortWithoutPermission() {
	// Setup ---
	s.permissions.ExactAlarmsAllowed = false

	// Exercise ---
	request := s.schedule(REMINDER_ID, EIGHT)

	// Verify ---
	assert := s.Require()
	assert.Equal(alarm.ModeBestEffort, request.Mode)
	assert.Len(s.exact.Armed, 0)
	assert.Equal(request, s.bestEffort.Armed[REMINDER_ID])
}

func (s *testSuite) TestScheduleDegradesWhenExactBackendFails() {
	// Setup ---
	s.exact.ArmError = errors.New("exact alarms are not available")

	// Exercise ---
	request := s.schedule(REMINDER_ID, EIGHT)

	// Verify ---
	assert := s.Require()
	assert.Equal(alarm.ModeBestEffort, request.Mode)
	assert.Equal(request, s.bestEffort.Armed[REMINDER_ID])
	assert.Equal(1, s.logger.CountLevel(logging.WARNING))
}

func (s *testSuite) TestScheduleFallsBackToExactWhenBestEffortFails() {
	// Setup ---
	s.permissions.ExactAlarmsAllowed = false
	s.bestEffort.ArmError = errors.New("broker is down")

	// Exercise ---
	request := s.schedule(REMINDER_ID, EIGHT)

	// Verify ---
	assert := s.Require()
	assert.Equal(alarm.ModeExact, request.Mode)
	assert.Equal(request, s.exact.Armed[REMINDER_ID])
	pending, ok := s.scheduler.Pending(REMINDER_ID)
	assert.True(ok)
	assert.Equal(request, pending)
	assert.Equal(1, s.logger.CountLevel(logging.WARNING))

	// A later cancel disarms the backend that actually holds the wake-up.
	assert.Nil(s.scheduler.Cancel(context.Background(), REMINDER_ID))
	assert.Equal([]reminder.ID{REMINDER_ID}, s.exact.Disarmed)
	assert.Len(s.bestEffort.Disarmed, 0)
}

func (s *testSuite) TestScheduleError() {
	// Setup ---
	s.exact.ArmError = errors.New("alarm clock is closed")
	s.bestEffort.ArmError = errors.New("broker is down")

	// Exercise ---
	_, err := s.scheduler.Schedule(context.Background(), alarm.ScheduleInput{ID: REMINDER_ID, Time: EIGHT})

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, s.bestEffort.ArmError)
	_, ok := s.scheduler.Pending(REMINDER_ID)
	assert.False(ok)
	assert.Equal(2, s.logger.CountLevel(logging.WARNING))
}

func (s *testSuite) TestScheduleInvalidTime() {
	_, err := s.scheduler.Schedule(
		context.Background(),
		alarm.ScheduleInput{ID: REMINDER_ID, Time: reminder.TimeOfDay{Hour: 24, Minute: 0}},
	)
	s.Require().ErrorIs(err, reminder.ErrInvalidTimeOfDay)
}

func (s *testSuite) TestRescheduleReplacesPending() {
	// Setup ---
	first := s.schedule(REMINDER_ID, EIGHT)

	// Exercise ---
	second := s.schedule(REMINDER_ID, reminder.TimeOfDay{Hour: 10, Minute: 0})

	// Verify ---
	assert := s.Require()
	assert.NotEqual(first.Token, second.Token)
	assert.Equal([]reminder.ID{REMINDER_ID}, s.exact.Disarmed)
	assert.Equal(second, s.exact.Armed[REMINDER_ID])
	assert.False(s.scheduler.Claim(context.Background(), first.Delivery()))
	assert.True(s.scheduler.Claim(context.Background(), second.Delivery()))
}

func (s *testSuite) TestRescheduleSucceedsWhenDisarmFails() {
	// Setup ---
	first := s.schedule(REMINDER_ID, EIGHT)
	s.exact.DisarmError = errors.New("timer is gone")

	// Exercise ---
	second := s.schedule(REMINDER_ID, reminder.TimeOfDay{Hour: 10, Minute: 0})

	// Verify ---
	assert := s.Require()
	pending, ok := s.scheduler.Pending(REMINDER_ID)
	assert.True(ok)
	assert.Equal(second, pending)
	assert.Equal(1, s.logger.CountLevel(logging.ERROR))
	assert.False(s.scheduler.Claim(context.Background(), first.Delivery()))
	assert.True(s.scheduler.Claim(context.Background(), second.Delivery()))
}

func (s *testSuite) TestCancel() {
	// Setup ---
	s.schedule(REMINDER_ID, EIGHT)
	other := s.schedule(REMINDER_ID+1, EIGHT)

	// Exercise ---
	err := s.scheduler.Cancel(context.Background(), REMINDER_ID)

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	_, ok := s.scheduler.Pending(REMINDER_ID)
	assert.False(ok)
	_, ok = s.exact.Armed[REMINDER_ID]
	assert.False(ok)
	pending, ok := s.scheduler.Pending(REMINDER_ID + 1)
	assert.True(ok)
	assert.Equal(other, pending)
}

func (s *testSuite) TestCancelIsIdempotent() {
	// Setup ---
	s.schedule(REMINDER_ID, EIGHT)

	// Exercise ---
	assert := s.Require()
	assert.Nil(s.scheduler.Cancel(context.Background(), REMINDER_ID))
	assert.Nil(s.scheduler.Cancel(context.Background(), REMINDER_ID))
	assert.Nil(s.scheduler.Cancel(context.Background(), REMINDER_ID+100))

	// Verify ---
	assert.Equal([]reminder.ID{REMINDER_ID}, s.exact.Disarmed)
}

func (s *testSuite) TestCancelUsesBackendOfRequest() {
	// Setup ---
	s.permissions.ExactAlarmsAllowed = false
	s.schedule(REMINDER_ID, EIGHT)
	s.permissions.ExactAlarmsAllowed = true

	// Exercise ---
	err := s.scheduler.Cancel(context.Background(), REMINDER_ID)

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal([]reminder.ID{REMINDER_ID}, s.bestEffort.Disarmed)
	assert.Len(s.exact.Disarmed, 0)
}

func (s *testSuite) TestClaim() {
	// Setup ---
	request := s.schedule(REMINDER_ID, EIGHT)

	// Exercise ---
	claimed := s.scheduler.Claim(context.Background(), request.Delivery())

	// Verify ---
	assert := s.Require()
	assert.True(claimed)
	_, ok := s.scheduler.Pending(REMINDER_ID)
	assert.False(ok)
	assert.False(s.scheduler.Claim(context.Background(), request.Delivery()))
}

func (s *testSuite) TestClaimRejectsCanceled() {
	// Setup ---
	request := s.schedule(REMINDER_ID, EIGHT)
	s.Require().Nil(s.scheduler.Cancel(context.Background(), REMINDER_ID))

	// Exercise ---
	claimed := s.scheduler.Claim(context.Background(), request.Delivery())

	// Verify ---
	s.Require().False(claimed)
}
