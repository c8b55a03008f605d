package rabbitmq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection wraps amqp.Connection and dials again whenever the broker drops it.
type Connection struct {
	log  logging.Logger
	url  string
	lock sync.RWMutex
	conn *amqp.Connection
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	connection := &Connection{log: log, url: url, conn: conn}
	go connection.watch(conn)
	return connection, nil
}

func (c *Connection) current() *amqp.Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.conn
}

func (c *Connection) watch(conn *amqp.Connection) {
	for {
		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || reason == nil {
			c.log.Info(context.Background(), "RabbitMQ connection closed.")
			return
		}
		c.log.Warning(context.Background(), "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))

		for {
			time.Sleep(reconnectDelay)
			next, err := amqp.Dial(c.url)
			if err == nil {
				c.lock.Lock()
				c.conn = next
				c.lock.Unlock()
				conn = next
				c.log.Info(context.Background(), "RabbitMQ reconnect success.")
				break
			}
			c.log.Error(context.Background(), "RabbitMQ reconnect failed.", logging.Entry("err", err))
		}
	}
}

func (c *Connection) Close() error {
	return c.current().Close()
}

// Channel opens a channel that is reopened after unexpected closes.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.current().Channel()
	if err != nil {
		return nil, err
	}
	channel := &Channel{log: c.log, ch: ch}
	go channel.watch(c, ch)
	return channel, nil
}

type Channel struct {
	log    logging.Logger
	lock   sync.RWMutex
	ch     *amqp.Channel
	closed int32
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.RLock()
	defer ch.lock.RUnlock()
	return ch.ch
}

func (ch *Channel) watch(conn *Connection, current *amqp.Channel) {
	for {
		reason, ok := <-current.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || ch.IsClosed() {
			return
		}
		if reason != nil {
			ch.log.Warning(context.Background(), "RabbitMQ channel closed.", logging.Entry("reason", reason.Error()))
		}

		for {
			time.Sleep(reconnectDelay)
			next, err := conn.current().Channel()
			if err == nil {
				ch.lock.Lock()
				ch.ch = next
				ch.lock.Unlock()
				current = next
				ch.log.Info(context.Background(), "RabbitMQ channel recreated.")
				break
			}
			ch.log.Error(context.Background(), "RabbitMQ channel recreate failed.", logging.Entry("err", err))
		}
	}
}

// IsClosed reports whether Close was called.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return ch.current().Close()
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	return ch.current().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// DeclareDelayedQueue declares an x-delayed-message exchange routing directly
// to a durable queue bound with the queue name.
func (ch *Channel) DeclareDelayedQueue(exchange string, queue string) error {
	current := ch.current()
	err := current.ExchangeDeclare(
		exchange,
		"x-delayed-message",
		true,
		false,
		false,
		false,
		amqp.Table{"x-delayed-type": "direct"},
	)
	if err != nil {
		return err
	}
	if _, err := current.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	return current.QueueBind(queue, queue, exchange, false, nil)
}

// Consume keeps delivering messages across channel reopenings until Close is called.
func (ch *Channel) Consume(queue, consumer string, autoAck bool) <-chan amqp.Delivery {
	deliveries := make(chan amqp.Delivery)

	go func() {
		defer close(deliveries)
		for {
			d, err := ch.current().Consume(queue, consumer, autoAck, false, false, false, nil)
			if err != nil {
				ch.log.Error(context.Background(), "Consume failed.", logging.Entry("err", err))
			} else {
				for msg := range d {
					deliveries <- msg
				}
			}

			// Give Close a chance to set the flag before checking it.
			time.Sleep(reconnectDelay)
			if ch.IsClosed() {
				ch.log.Info(context.Background(), "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				return
			}
		}
	}()

	return deliveries
}
