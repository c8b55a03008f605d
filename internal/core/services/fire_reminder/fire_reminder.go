package firereminder

import (
	"context"
	"time"
	"waterreminder/internal/core/domain/alarm"
	"waterreminder/internal/core/domain/alert"
	c "waterreminder/internal/core/domain/common"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/core/services"
)

type Input struct {
	Delivery alarm.Delivery
}

type Result struct {
	Fired bool
	Next  c.Optional[alarm.Request]
}

type service struct {
	log        logging.Logger
	unitOfWork uow.UnitOfWork
	scheduler  alarm.Scheduler
	ringer     alert.Ringer
	now        func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	scheduler alarm.Scheduler,
	ringer alert.Ringer,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if scheduler == nil {
		panic(e.NewNilArgumentError("scheduler"))
	}
	if ringer == nil {
		panic(e.NewNilArgumentError("ringer"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:        log,
		unitOfWork: unitOfWork,
		scheduler:  scheduler,
		ringer:     ringer,
		now:        now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	delivery := input.Delivery

	rem, next, err := s.rearm(ctx, delivery)
	if !rem.IsPresent {
		return result, err
	}

	// Started after the unit of work is released, posting the notification
	// goes over the network.
	s.ringer.Start(ctx, alert.Alert{ReminderID: rem.Value.ID, Time: rem.Value.Time, StartedAt: s.now()})
	result.Fired = true
	if err != nil {
		return result, err
	}

	s.log.Info(
		ctx,
		"Reminder fired.",
		logging.Entry("reminder", rem.Value),
		logging.Entry("delay", s.now().Sub(delivery.At)),
		logging.Entry("nextAt", next.At),
	)
	result.Next = c.NewOptional(next, true)
	return result, nil
}

// rearm claims the delivery and schedules the next wake-up of its reminder.
// It holds the unit of work, so a deletion cannot race with the re-arm.
// The reminder is absent when the delivery is stale.
func (s *service) rearm(
	ctx context.Context,
	delivery alarm.Delivery,
) (rem c.Optional[reminder.Reminder], next alarm.Request, err error) {
	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("delivery", delivery))
		return rem, next, err
	}
	defer uow.Rollback(ctx)

	if !s.scheduler.Claim(ctx, delivery) {
		return rem, next, nil
	}
	ix, ok := uow.Reminders().IndexOf(delivery.ID)
	if !ok {
		s.log.Info(ctx, "Fired reminder no longer exists.", logging.Entry("delivery", delivery))
		return rem, next, nil
	}
	r, err := uow.Reminders().Get(ix)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("delivery", delivery))
		return rem, next, err
	}
	rem = c.NewOptional(r, true)

	next, err = s.scheduler.Schedule(ctx, alarm.ScheduleInput{
		ID:    r.ID,
		Time:  r.Time,
		After: c.NewOptional(delivery.At, true),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("delivery", delivery), logging.Entry("reminder", r))
	}
	return rem, next, err
}
