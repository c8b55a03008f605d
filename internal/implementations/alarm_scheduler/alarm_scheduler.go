package alarmscheduler

import (
	"context"
	"sync"
	"time"
	"waterreminder/internal/core/domain/alarm"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
)

// Scheduler keeps at most one pending wake-up per reminder. It arms the exact
// backend when permitted and the best-effort one otherwise, and falls back to
// the other backend when the first one fails.
type Scheduler struct {
	log         logging.Logger
	exact       alarm.Backend
	bestEffort  alarm.Backend
	permissions alarm.Permissions
	tokens      alarm.TokenGenerator
	now         func() time.Time
	loc         *time.Location

	lock    sync.Mutex
	pending map[reminder.ID]alarm.Request
}

func New(
	log logging.Logger,
	exact alarm.Backend,
	bestEffort alarm.Backend,
	permissions alarm.Permissions,
	tokens alarm.TokenGenerator,
	now func() time.Time,
	loc *time.Location,
) *Scheduler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if exact == nil {
		panic(e.NewNilArgumentError("exact"))
	}
	if bestEffort == nil {
		panic(e.NewNilArgumentError("bestEffort"))
	}
	if permissions == nil {
		panic(e.NewNilArgumentError("permissions"))
	}
	if tokens == nil {
		panic(e.NewNilArgumentError("tokens"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if loc == nil {
		panic(e.NewNilArgumentError("loc"))
	}
	return &Scheduler{
		log:         log,
		exact:       exact,
		bestEffort:  bestEffort,
		permissions: permissions,
		tokens:      tokens,
		now:         now,
		loc:         loc,
		pending:     make(map[reminder.ID]alarm.Request),
	}
}

func (s *Scheduler) Schedule(ctx context.Context, input alarm.ScheduleInput) (alarm.Request, error) {
	if err := input.Time.Validate(); err != nil {
		return alarm.Request{}, err
	}
	ref := s.now()
	if input.After.IsPresent && input.After.Value.After(ref) {
		ref = input.After.Value
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	// A failed disarm is logged by cancel. The old arming can still fire but
	// Claim drops it, since its token is no longer pending.
	_ = s.cancel(ctx, input.ID)

	request := alarm.Request{
		ID:    input.ID,
		Time:  input.Time,
		At:    alarm.NextOccurrence(ref, input.Time, s.loc),
		Token: s.tokens.GenerateAlarmToken(),
	}
	mode, err := s.arm(ctx, request)
	if err != nil {
		return alarm.Request{}, err
	}
	request.Mode = mode

	s.pending[request.ID] = request
	s.log.Info(ctx, "Wake-up scheduled.", logging.Entry("request", request))
	return request, nil
}

func (s *Scheduler) Cancel(ctx context.Context, id reminder.ID) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cancel(ctx, id)
}

// Claim accepts a delivery only if it belongs to the pending arming of its reminder.
func (s *Scheduler) Claim(ctx context.Context, delivery alarm.Delivery) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	request, ok := s.pending[delivery.ID]
	if !ok || request.Token != delivery.Token {
		s.log.Info(
			ctx,
			"Stale wake-up is ignored.",
			logging.Entry("reminderID", delivery.ID),
			logging.Entry("at", delivery.At),
		)
		return false
	}
	delete(s.pending, delivery.ID)
	return true
}

func (s *Scheduler) Pending(id reminder.ID) (alarm.Request, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	request, ok := s.pending[id]
	return request, ok
}

// arm tries the permitted backend first and the other one when it fails, so a
// reminder keeps a wake-up as long as either backend works.
func (s *Scheduler) arm(ctx context.Context, request alarm.Request) (alarm.Mode, error) {
	modes := []alarm.Mode{alarm.ModeBestEffort, alarm.ModeExact}
	if s.permissions.CanScheduleExactAlarms() {
		modes = []alarm.Mode{alarm.ModeExact, alarm.ModeBestEffort}
	}

	var err error
	for _, mode := range modes {
		request.Mode = mode
		if err = s.backend(mode).Arm(ctx, request); err == nil {
			return mode, nil
		}
		s.log.Warning(
			ctx,
			"Could not arm wake-up.",
			logging.Entry("request", request),
			logging.Entry("err", err),
		)
	}
	logging.Error(ctx, s.log, err, logging.Entry("request", request))
	return "", err
}

func (s *Scheduler) backend(mode alarm.Mode) alarm.Backend {
	if mode == alarm.ModeExact {
		return s.exact
	}
	return s.bestEffort
}

func (s *Scheduler) cancel(ctx context.Context, id reminder.ID) error {
	request, ok := s.pending[id]
	if !ok {
		return nil
	}
	delete(s.pending, id)

	if err := s.backend(request.Mode).Disarm(ctx, id); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("request", request))
		return err
	}
	s.log.Info(ctx, "Wake-up canceled.", logging.Entry("request", request))
	return nil
}
