package alarmscheduler

import (
	"context"
	"time"
	"waterreminder/internal/core/domain/alarm"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	"waterreminder/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ is a best-effort wake-up backend built on a delayed-message exchange.
// Published messages cannot be withdrawn, so Disarm does nothing and outdated
// messages are expected to be rejected by their token when they arrive.
type RabbitMQ struct {
	log        logging.Logger
	publisher  Publisher
	exchange   string
	routingKey string
	now        func() time.Time
}

func NewRabbitMQ(
	log logging.Logger,
	publisher Publisher,
	exchange string,
	routingKey string,
	now func() time.Time,
) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if publisher == nil {
		panic(e.NewNilArgumentError("publisher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &RabbitMQ{
		log:        log,
		publisher:  publisher,
		exchange:   exchange,
		routingKey: routingKey,
		now:        now,
	}
}

func (s *RabbitMQ) Arm(ctx context.Context, request alarm.Request) error {
	message := schema.NewAlarm(request)
	body, err := message.Marshal()
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("request", request))
		return err
	}

	delay := request.At.Sub(s.now()).Milliseconds()
	if delay < 0 {
		delay = 0
	}
	err = s.publisher.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp091.Publishing{
		Headers:      amqp091.Table{"x-delay": delay},
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("request", request))
		return err
	}
	s.log.Info(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("exchange", s.exchange),
		logging.Entry("RK", s.routingKey),
		logging.Entry("reminderID", request.ID),
		logging.Entry("delayMs", delay),
	)
	return nil
}

func (s *RabbitMQ) Disarm(ctx context.Context, id reminder.ID) error {
	s.log.Debug(ctx, "Delayed AMQP message stays queued until it expires.", logging.Entry("reminderID", id))
	return nil
}
