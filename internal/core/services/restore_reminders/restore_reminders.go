package restorereminders

import (
	"context"
	"waterreminder/internal/core/domain/alarm"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	uow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/core/services"
)

type Input struct{}

type Result struct {
	Restored int
	Failed   int
}

// The service reloads persisted reminders and arms a wake-up for each of
// them. It never writes to the store, so unreadable data is left as is.
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
		logging.Error(ctx, s.log, err)
		return result, err
	}
	defer uow.Rollback(ctx)

	if err := uow.Reload(ctx); err != nil {
		logging.Error(ctx, s.log, err)
		return result, err
	}

	for _, rem := range uow.Reminders().All() {
		_, err := s.scheduler.Schedule(ctx, alarm.ScheduleInput{ID: rem.ID, Time: rem.Time})
		if err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("reminder", rem))
			result.Failed++
			continue
		}
		result.Restored++
	}

	s.log.Info(
		ctx,
		"Reminders restored.",
		logging.Entry("restored", result.Restored),
		logging.Entry("failed", result.Failed),
	)
	return result, nil
}
