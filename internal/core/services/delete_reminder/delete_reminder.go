package deletereminder

import (
	"context"
	"errors"
	"waterreminder/internal/core/domain/alarm"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/core/services"
)

type Input struct {
	Index int
}

type Result struct {
	Reminder reminder.Reminder
}

type service struct {
	log        logging.Logger
	unitOfWork uow.UnitOfWork
	scheduler  alarm.Scheduler
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	scheduler alarm.Scheduler,
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
	return &service{
		log:        log,
		unitOfWork: unitOfWork,
		scheduler:  scheduler,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}
	defer uow.Rollback(ctx)

	removed, err := uow.Reminders().RemoveAt(input.Index)
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrReminderIndexOutOfRange):
			s.log.Info(ctx, "Reminder index is out of range.", logging.Entry("input", input))
		default:
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
		}
		return result, err
	}

	if err := s.scheduler.Cancel(ctx, removed.ID); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", removed))
		return result, err
	}

	if err := uow.Commit(ctx); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input), logging.Entry("reminder", removed))
		s.rearm(ctx, removed)
		return result, err
	}

	s.log.Info(ctx, "Reminder successfully deleted.", logging.Entry("reminder", removed))
	result.Reminder = removed
	return result, nil
}

// rearm puts back the wake-up of a reminder whose deletion was not persisted.
func (s *service) rearm(ctx context.Context, rem reminder.Reminder) {
	_, err := s.scheduler.Schedule(ctx, alarm.ScheduleInput{ID: rem.ID, Time: rem.Time})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminder", rem))
	}
}
