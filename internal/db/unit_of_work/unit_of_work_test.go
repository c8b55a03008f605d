package uow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"waterreminder/internal/core/domain/reminder"

	"github.com/stretchr/testify/suite"
)

var (
	REMINDER_1 = reminder.Reminder{ID: 1, Time: reminder.TimeOfDay{Hour: 8, Minute: 0}}
	REMINDER_2 = reminder.Reminder{ID: 2, Time: reminder.TimeOfDay{Hour: 12, Minute: 30}}
	REMINDER_3 = reminder.Reminder{ID: 3, Time: reminder.TimeOfDay{Hour: 18, Minute: 0}}
)

type testSuite struct {
	suite.Suite
	store *reminder.FakeStore
	uow   *StoreUnitOfWork
}

func (suite *testSuite) SetupTest() {
	suite.store = reminder.NewFakeStore(REMINDER_1, REMINDER_2)
	suite.uow = NewStoreUnitOfWork(suite.store)
}

func TestStoreUnitOfWork(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestBeginLoadsStoreOnce() {
	ctx := context.Background()
	assert := s.Require()

	uow, err := s.uow.Begin(ctx)
	assert.Nil(err)
	assert.Equal([]reminder.Reminder{REMINDER_1, REMINDER_2}, uow.Reminders().All())
	assert.Nil(uow.Rollback(ctx))

	s.store.Saved = nil
	uow, err = s.uow.Begin(ctx)
	assert.Nil(err)
	defer uow.Rollback(ctx)
	assert.Equal(2, uow.Reminders().Len())
}

func (s *testSuite) TestCommitPersistsWholeCollection() {
	// Setup ---
	ctx := context.Background()
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)
	defer uow.Rollback(ctx)

	// Exercise ---
	_, err = uow.Reminders().Append(REMINDER_3)
	s.Require().Nil(err)
	err = uow.Commit(ctx)

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal([]reminder.Reminder{REMINDER_1, REMINDER_2, REMINDER_3}, s.store.Saved)
	assert.Equal(1, s.store.SaveCount)
}

func (s *testSuite) TestRollbackRestoresCollection() {
	// Setup ---
	ctx := context.Background()
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)

	// Exercise ---
	_, err = uow.Reminders().RemoveAt(0)
	s.Require().Nil(err)
	s.Require().Nil(uow.Rollback(ctx))

	// Verify ---
	assert := s.Require()
	uow, err = s.uow.Begin(ctx)
	assert.Nil(err)
	defer uow.Rollback(ctx)
	assert.Equal([]reminder.Reminder{REMINDER_1, REMINDER_2}, uow.Reminders().All())
	assert.Equal(0, s.store.SaveCount)
}

func (s *testSuite) TestFailedCommitRestoresCollection() {
	// Setup ---
	ctx := context.Background()
	s.store.SaveError = errors.New("disk is full")
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)
	defer uow.Rollback(ctx)
	_, err = uow.Reminders().Append(REMINDER_3)
	s.Require().Nil(err)

	// Exercise ---
	err = uow.Commit(ctx)

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, s.store.SaveError)
	assert.Equal([]reminder.Reminder{REMINDER_1, REMINDER_2}, uow.Reminders().All())
}

func (s *testSuite) TestReloadDoesNotSave() {
	// Setup ---
	ctx := context.Background()
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)
	s.store.Saved = []reminder.Reminder{REMINDER_3}

	// Exercise ---
	err = uow.Reload(ctx)
	s.Require().Nil(err)
	s.Require().Nil(uow.Rollback(ctx))

	// Verify ---
	assert := s.Require()
	uow, err = s.uow.Begin(ctx)
	assert.Nil(err)
	defer uow.Rollback(ctx)
	assert.Equal([]reminder.Reminder{REMINDER_3}, uow.Reminders().All())
	assert.Equal(0, s.store.SaveCount)
}

func (s *testSuite) TestLoadErrorReleasesLock() {
	ctx := context.Background()
	s.store.LoadError = errors.New("store is unavailable")

	_, err := s.uow.Begin(ctx)
	s.Require().ErrorIs(err, s.store.LoadError)

	s.store.LoadError = nil
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)
	s.Require().Nil(uow.Rollback(ctx))
}

func (s *testSuite) TestSessionsAreExclusive() {
	var wg sync.WaitGroup
	wg.Add(10)

	for i := 0; i < 10; i++ {
		go func(i int) {
			defer wg.Done()
			ctx := context.Background()
			uow, err := s.uow.Begin(ctx)
			if err != nil {
				return
			}
			defer uow.Rollback(ctx)
			_, err = uow.Reminders().Append(reminder.Reminder{
				ID:   reminder.ID(100 + i),
				Time: reminder.TimeOfDay{Hour: i, Minute: 0},
			})
			if err != nil {
				return
			}
			uow.Commit(ctx)
		}(i)
	}

	wg.Wait()
	s.Require().Len(s.store.Saved, 12)
	s.Require().Equal(10, s.store.SaveCount)
}
