package acknowledgealert

import (
	"context"
	"waterreminder/internal/core/domain/alert"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	"waterreminder/internal/core/services"
)

type Input struct {
	ReminderID reminder.ID
}

type Result struct {
	WasSounding bool
}

type service struct {
	log      logging.Logger
	ringer   alert.Ringer
	notifier alert.Notifier
}

func New(
	log logging.Logger,
	ringer alert.Ringer,
	notifier alert.Notifier,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if ringer == nil {
		panic(e.NewNilArgumentError("ringer"))
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	return &service{
		log:      log,
		ringer:   ringer,
		notifier: notifier,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	result.WasSounding = s.ringer.Stop(ctx, input.ReminderID, alert.StopReasonAcknowledged)
	if !result.WasSounding {
		// The alert may have timed out while its notification is still shown.
		if err := s.notifier.Cancel(ctx, input.ReminderID); err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("input", input))
			return result, err
		}
	}

	s.log.Info(
		ctx,
		"Alert acknowledged.",
		logging.Entry("reminderID", input.ReminderID),
		logging.Entry("wasSounding", result.WasSounding),
	)
	return result, nil
}
