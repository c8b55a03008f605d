package editreminder

import (
	"context"
	"errors"
	"time"
	"waterreminder/internal/core/domain/alarm"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/core/services"
)

type Input struct {
	Index int
	Time  reminder.TimeOfDay
}

type Result struct {
	Reminder    reminder.Reminder
	Previous    reminder.Reminder
	ScheduledAt time.Time
}

// Editing replaces the reminder at Index with a new one: the old wake-up is
// canceled and the replacement gets a fresh ID and a fresh schedule.
type service struct {
	log         logging.Logger
	unitOfWork  uow.UnitOfWork
	scheduler   alarm.Scheduler
	idGenerator reminder.IDGenerator
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	scheduler alarm.Scheduler,
	idGenerator reminder.IDGenerator,
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
	if idGenerator == nil {
		panic(e.NewNilArgumentError("idGenerator"))
	}
	return &service{
		log:         log,
		unitOfWork:  unitOfWork,
		scheduler:   scheduler,
		idGenerator: idGenerator,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if err := input.Time.Validate(); err != nil {
		return result, err
	}

	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}
	defer uow.Rollback(ctx)

	reminders := uow.Reminders()
	previous, err := reminders.RemoveAt(input.Index)
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrReminderIndexOutOfRange):
			s.log.Info(ctx, "Reminder index is out of range.", logging.Entry("input", input))
		default:
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}

	rem := reminder.Reminder{
		ID:   s.idGenerator.GenerateReminderID(append(reminders.All(), previous)),
		Time: input.Time,
	}
	if _, err := reminders.Insert(input.Index, rem); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", rem))
		return result, err
	}

	if err := s.scheduler.Cancel(ctx, previous.ID); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("previous", previous))
		return result, err
	}
	request, err := s.scheduler.Schedule(ctx, alarm.ScheduleInput{ID: rem.ID, Time: rem.Time})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", rem))
		s.rearm(ctx, previous)
		return result, err
	}

	if err := uow.Commit(ctx); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", rem))
		if cancelErr := s.scheduler.Cancel(ctx, rem.ID); cancelErr != nil {
			logging.Error(ctx, s.log, cancelErr, logging.Entry("reminder", rem))
		}
		s.rearm(ctx, previous)
		return result, err
	}

	s.log.Info(
		ctx,
		"Reminder successfully edited.",
		logging.Entry("previous", previous),
		logging.Entry("reminder", rem),
		logging.Entry("scheduledAt", request.At),
	)
	result.Reminder = rem
	result.Previous = previous
	result.ScheduledAt = request.At
	return result, nil
}

func (s *service) rearm(ctx context.Context, rem reminder.Reminder) {
	_, err := s.scheduler.Schedule(ctx, alarm.ScheduleInput{ID: rem.ID, Time: rem.Time})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminder", rem))
	}
}
