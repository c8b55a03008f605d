package reminder

import (
	"context"
	"sync"
)

type FakeStore struct {
	Saved     []Reminder
	SaveCount int
	LoadError error
	SaveError error
	lock      sync.Mutex
}

func NewFakeStore(reminders ...Reminder) *FakeStore {
	return &FakeStore{Saved: reminders}
}

func (s *FakeStore) Load(ctx context.Context) ([]Reminder, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.LoadError != nil {
		return nil, s.LoadError
	}
	loaded := make([]Reminder, len(s.Saved))
	copy(loaded, s.Saved)
	return loaded, nil
}

func (s *FakeStore) Save(ctx context.Context, reminders []Reminder) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.SaveError != nil {
		return s.SaveError
	}
	s.Saved = make([]Reminder, len(reminders))
	copy(s.Saved, reminders)
	s.SaveCount++
	return nil
}

type FakeIDGenerator struct {
	Next ID
}

func NewFakeIDGenerator(next ID) *FakeIDGenerator {
	return &FakeIDGenerator{Next: next}
}

func (g *FakeIDGenerator) GenerateReminderID(existing []Reminder) ID {
	id := g.Next
	g.Next++
	return id
}
