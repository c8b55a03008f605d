package alarmclock

import (
	"context"
	"sync"
	"waterreminder/internal/core/domain/alarm"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"

	"github.com/jmhodges/clock"
)

const deliveriesBufferSize = 16

type armed struct {
	request alarm.Request
	timer   *clock.Timer
	cancel  chan struct{}
}

// Clock is an in-process wake-up backend. Armed requests fire on their own
// timer and are emitted on Deliveries.
type Clock struct {
	log        logging.Logger
	clock      clock.Clock
	deliveries chan alarm.Delivery
	closed     chan struct{}

	lock  sync.Mutex
	armed map[reminder.ID]*armed
	wg    sync.WaitGroup
}

func New(log logging.Logger, clk clock.Clock) *Clock {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if clk == nil {
		panic(e.NewNilArgumentError("clk"))
	}
	return &Clock{
		log:        log,
		clock:      clk,
		deliveries: make(chan alarm.Delivery, deliveriesBufferSize),
		closed:     make(chan struct{}),
		armed:      make(map[reminder.ID]*armed),
	}
}

func (c *Clock) Deliveries() <-chan alarm.Delivery {
	return c.deliveries
}

func (c *Clock) Arm(ctx context.Context, request alarm.Request) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	select {
	case <-c.closed:
		return alarm.ErrBackendClosed
	default:
	}

	c.disarm(request.ID)
	a := &armed{
		request: request,
		timer:   c.clock.NewTimer(request.At.Sub(c.clock.Now())),
		cancel:  make(chan struct{}),
	}
	c.armed[request.ID] = a
	c.wg.Add(1)
	go c.wait(a)
	return nil
}

func (c *Clock) Disarm(ctx context.Context, id reminder.ID) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.disarm(id)
	return nil
}

// Close stops all timers and waits for their goroutines.
// The deliveries channel is closed afterwards.
func (c *Clock) Close() {
	c.lock.Lock()
	select {
	case <-c.closed:
		c.lock.Unlock()
		return
	default:
	}
	close(c.closed)
	for id := range c.armed {
		c.disarm(id)
	}
	c.lock.Unlock()

	c.wg.Wait()
	close(c.deliveries)
}

func (c *Clock) wait(a *armed) {
	defer c.wg.Done()

	select {
	case <-a.timer.C:
	case <-a.cancel:
		a.timer.Stop()
		return
	}

	c.lock.Lock()
	if current, ok := c.armed[a.request.ID]; !ok || current != a {
		c.lock.Unlock()
		return
	}
	delete(c.armed, a.request.ID)
	c.lock.Unlock()

	select {
	case c.deliveries <- a.request.Delivery():
		c.log.Debug(
			context.Background(),
			"Wake-up fired.",
			logging.Entry("reminderID", a.request.ID),
			logging.Entry("at", a.request.At),
		)
	case <-c.closed:
	}
}

// disarm must be called with the lock held.
func (c *Clock) disarm(id reminder.ID) {
	a, ok := c.armed[id]
	if !ok {
		return
	}
	close(a.cancel)
	delete(c.armed, id)
}
