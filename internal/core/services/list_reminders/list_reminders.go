package listreminders

import (
	"context"
	"time"
	"waterreminder/internal/core/domain/alarm"
	c "waterreminder/internal/core/domain/common"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	uow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/core/services"
)

type Input struct{}

type Item struct {
	Index    int
	Reminder reminder.Reminder
	NextAt   c.Optional[time.Time]
	Mode     c.Optional[alarm.Mode]
}

type Result struct {
	Reminders []Item
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
		logging.Error(ctx, s.log, err)
		return result, err
	}
	defer uow.Rollback(ctx)

	reminders := uow.Reminders().All()
	result.Reminders = make([]Item, 0, len(reminders))
	for ix, rem := range reminders {
		item := Item{Index: ix, Reminder: rem}
		if request, ok := s.scheduler.Pending(rem.ID); ok {
			item.NextAt = c.NewOptional(request.At, true)
			item.Mode = c.NewOptional(request.Mode, true)
		}
		result.Reminders = append(result.Reminders, item)
	}
	return result, nil
}
