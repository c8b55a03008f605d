package alarm

import (
	"context"
	"fmt"
	"sync"
	"time"
	"waterreminder/internal/core/domain/reminder"
)

type FakeScheduler struct {
	Scheduled     []ScheduleInput
	Canceled      []reminder.ID
	ScheduleError error
	CancelError   error
	Mode          Mode
	Now           time.Time
	pending       map[reminder.ID]Request
	counter       int
	lock          sync.Mutex
}

func NewFakeScheduler(now time.Time) *FakeScheduler {
	return &FakeScheduler{
		Mode:    ModeExact,
		Now:     now,
		pending: make(map[reminder.ID]Request),
	}
}

func (s *FakeScheduler) Schedule(ctx context.Context, input ScheduleInput) (Request, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Scheduled = append(s.Scheduled, input)
	if s.ScheduleError != nil {
		return Request{}, s.ScheduleError
	}
	ref := s.Now
	if input.After.IsPresent && input.After.Value.After(ref) {
		ref = input.After.Value
	}
	s.counter++
	request := Request{
		ID:    input.ID,
		Time:  input.Time,
		At:    NextOccurrence(ref, input.Time, s.Now.Location()),
		Mode:  s.Mode,
		Token: Token(fmt.Sprintf("token-%d", s.counter)),
	}
	s.pending[input.ID] = request
	return request, nil
}

func (s *FakeScheduler) Cancel(ctx context.Context, id reminder.ID) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Canceled = append(s.Canceled, id)
	if s.CancelError != nil {
		return s.CancelError
	}
	delete(s.pending, id)
	return nil
}

func (s *FakeScheduler) Claim(ctx context.Context, delivery Delivery) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	request, ok := s.pending[delivery.ID]
	if !ok || request.Token != delivery.Token {
		return false
	}
	delete(s.pending, delivery.ID)
	return true
}

func (s *FakeScheduler) Pending(id reminder.ID) (Request, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	request, ok := s.pending[id]
	return request, ok
}

func (s *FakeScheduler) PendingCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.pending)
}

type FakeBackend struct {
	Armed       map[reminder.ID]Request
	Disarmed    []reminder.ID
	ArmCount    int
	ArmError    error
	DisarmError error
	lock        sync.Mutex
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{Armed: make(map[reminder.ID]Request)}
}

func (b *FakeBackend) Arm(ctx context.Context, request Request) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.ArmError != nil {
		return b.ArmError
	}
	b.Armed[request.ID] = request
	b.ArmCount++
	return nil
}

func (b *FakeBackend) Disarm(ctx context.Context, id reminder.ID) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.DisarmError != nil {
		return b.DisarmError
	}
	delete(b.Armed, id)
	b.Disarmed = append(b.Disarmed, id)
	return nil
}

type FakePermissions struct {
	ExactAlarmsAllowed bool
}

func (p *FakePermissions) CanScheduleExactAlarms() bool {
	return p.ExactAlarmsAllowed
}

type FakeTokenGenerator struct {
	counter int
}

func (g *FakeTokenGenerator) GenerateAlarmToken() Token {
	g.counter++
	return Token(fmt.Sprintf("token-%d", g.counter))
}
