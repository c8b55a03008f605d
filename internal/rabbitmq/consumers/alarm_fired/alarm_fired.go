package alarmfired

import (
	"context"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/services"
	firereminder "waterreminder/internal/core/services/fire_reminder"
	"waterreminder/internal/rabbitmq"
	"waterreminder/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	log     logging.Logger
	channel *rabbitmq.Channel
	queue   string
	service services.Service[firereminder.Input, firereminder.Result]
}

func New(
	log logging.Logger,
	channel *rabbitmq.Channel,
	queue string,
	service services.Service[firereminder.Input, firereminder.Result],
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Consumer{log: log, channel: channel, queue: queue, service: service}
}

func (c *Consumer) Consume() {
	deliveries := c.channel.Consume(c.queue, "", false)

	go func() {
		for delivery := range deliveries {
			Handle(context.Background(), c.log, c.service, delivery.Body)
			c.ack(delivery)
		}
	}()
}

// Handle runs the fire service for one message body. Messages are never
// redelivered: a malformed one is logged and dropped.
func Handle(
	ctx context.Context,
	log logging.Logger,
	service services.Service[firereminder.Input, firereminder.Result],
	body []byte,
) {
	message := &schema.Alarm{}
	if err := message.Unmarshal(body); err != nil {
		log.Error(ctx, "Could not unmarshal alarm.", logging.Entry("err", err), logging.Entry("body", string(body)))
		return
	}
	delivery, err := message.Delivery()
	if err != nil {
		log.Error(ctx, "Alarm message is not valid.", logging.Entry("err", err), logging.Entry("alarm", message))
		return
	}

	log.Info(ctx, "Got alarm.", logging.Entry("reminderID", delivery.ID), logging.Entry("at", delivery.At))
	if _, err := service.Run(ctx, firereminder.Input{Delivery: delivery}); err != nil {
		log.Error(
			ctx,
			"Could not fire reminder, service returned an error.",
			logging.Entry("alarm", message),
			logging.Entry("err", err),
		)
	}
}

func (c *Consumer) ack(delivery amqp091.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.log.Error(context.Background(), "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}
