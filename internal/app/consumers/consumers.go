package consumers

import (
	"context"
	"waterreminder/internal/app/deps"
	"waterreminder/internal/app/services"
	"waterreminder/internal/core/domain/alarm"
	dl "waterreminder/internal/core/domain/logging"
	coreservices "waterreminder/internal/core/services"
	firereminder "waterreminder/internal/core/services/fire_reminder"
	telegramnotifier "waterreminder/internal/implementations/telegram_notifier"
	alarmfired "waterreminder/internal/rabbitmq/consumers/alarm_fired"
)

// drainAlarms fires reminders for the in-process alarm clock deliveries, one
// at a time, until ctx is done or the clock is closed.
func drainAlarms(
	ctx context.Context,
	log dl.Logger,
	deliveries <-chan alarm.Delivery,
	service coreservices.Service[firereminder.Input, firereminder.Result],
) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			log.Info(ctx, "Got alarm.", dl.Entry("reminderID", delivery.ID), dl.Entry("at", delivery.At))
			if _, err := service.Run(ctx, firereminder.Input{Delivery: delivery}); err != nil {
				log.Error(
					ctx,
					"Could not fire reminder, service returned an error.",
					dl.Entry("delivery", delivery),
					dl.Entry("err", err),
				)
			}
		}
	}
}

func initAlarmClockConsumer(deps *deps.Deps, services *services.Services) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		drainAlarms(ctx, deps.Logger, deps.AlarmClock.Deliveries(), services.FireReminder)
	}()

	deps.Logger.Info(context.Background(), "Alarm clock consumer has started.")
	return func() {
		cancel()
		<-done
	}
}

func initAlarmFiredConsumer(deps *deps.Deps, services *services.Services) func() {
	if deps.Rabbitmq == nil {
		return func() {}
	}

	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqAlarmQueue
	alarmfired.New(deps.Logger, rabbitmqChannel, queue, services.FireReminder).Consume()

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() { rabbitmqChannel.Close() }
}

func initTelegramUpdates(deps *deps.Deps, services *services.Services) func() {
	if deps.TelegramBot == nil {
		return func() {}
	}

	telegramnotifier.NewCallbackHandler(deps.Logger, services.AcknowledgeAlert).Register(deps.TelegramBot)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		deps.TelegramBot.Start(ctx)
	}()

	deps.Logger.Info(context.Background(), "Telegram polling has started.")
	return func() {
		cancel()
		<-done
	}
}

func InitConsumers(deps *deps.Deps, services *services.Services) func() {
	shutdownAlarmClockConsumer := initAlarmClockConsumer(deps, services)
	shutdownAlarmFiredConsumer := initAlarmFiredConsumer(deps, services)
	shutdownTelegramUpdates := initTelegramUpdates(deps, services)

	return func() {
		shutdownTelegramUpdates()
		shutdownAlarmFiredConsumer()
		shutdownAlarmClockConsumer()
	}
}
