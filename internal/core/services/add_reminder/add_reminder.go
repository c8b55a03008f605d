package addreminder

import (
	"context"
	"time"
	"waterreminder/internal/core/domain/alarm"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/core/services"
)

type Input struct {
	Time reminder.TimeOfDay
}

type Result struct {
	Reminder    reminder.Reminder
	Index       int
	ScheduledAt time.Time
}

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
	rem := reminder.Reminder{
		ID:   s.idGenerator.GenerateReminderID(reminders.All()),
		Time: input.Time,
	}
	index, err := reminders.Append(rem)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", rem))
		return result, err
	}

	request, err := s.scheduler.Schedule(ctx, alarm.ScheduleInput{ID: rem.ID, Time: rem.Time})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", rem))
		return result, err
	}

	if err := uow.Commit(ctx); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", rem))
		if cancelErr := s.scheduler.Cancel(ctx, rem.ID); cancelErr != nil {
			logging.Error(ctx, s.log, cancelErr, logging.Entry("reminder", rem))
		}
		return result, err
	}

	s.log.Info(
		ctx,
		"Reminder successfully added.",
		logging.Entry("reminder", rem),
		logging.Entry("scheduledAt", request.At),
	)
	result.Reminder = rem
	result.Index = index
	result.ScheduledAt = request.At
	return result, nil
}
