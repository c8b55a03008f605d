package ringer

import (
	"context"
	"sync"
	"time"
	"waterreminder/internal/core/domain/alert"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"

	"github.com/jmhodges/clock"
)

// Ringer drives the sound, vibration and notification of the one alert
// that may be sounding at a time. Acknowledgement and the auto-stop timeout
// race for the same alert; whichever takes the lock first stops it.
// Notifier calls go over the network and are made without the lock.
type Ringer struct {
	log         logging.Logger
	player      alert.Player
	vibrator    alert.Vibrator
	notifier    alert.Notifier
	permissions alert.Permissions
	clock       clock.Clock
	timeout     time.Duration

	lock       sync.Mutex
	state      alert.State
	current    alert.Alert
	generation uint64
	cancel     chan struct{}
}

func New(
	log logging.Logger,
	player alert.Player,
	vibrator alert.Vibrator,
	notifier alert.Notifier,
	permissions alert.Permissions,
	clk clock.Clock,
	timeout time.Duration,
) *Ringer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if player == nil {
		panic(e.NewNilArgumentError("player"))
	}
	if vibrator == nil {
		panic(e.NewNilArgumentError("vibrator"))
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	if permissions == nil {
		panic(e.NewNilArgumentError("permissions"))
	}
	if clk == nil {
		panic(e.NewNilArgumentError("clk"))
	}
	if timeout <= 0 {
		timeout = alert.DefaultTimeout
	}
	return &Ringer{
		log:         log,
		player:      player,
		vibrator:    vibrator,
		notifier:    notifier,
		permissions: permissions,
		clock:       clk,
		timeout:     timeout,
		state:       alert.StateIdle,
	}
}

// Start sounds a and replaces whatever alert was sounding. The notification
// is posted after the lock is released, so a slow notifier never blocks Stop
// or Current.
func (r *Ringer) Start(ctx context.Context, a alert.Alert) {
	r.lock.Lock()
	var replaced alert.Alert
	wasSounding := r.state == alert.StateSounding
	if wasSounding {
		replaced = r.stop(ctx, alert.StopReasonReplaced)
	}

	if a.StartedAt.IsZero() {
		a.StartedAt = r.clock.Now()
	}
	r.generation++
	generation := r.generation
	r.current = a
	r.state = alert.StateSounding

	if err := r.player.Start(ctx); err != nil {
		r.log.Warning(ctx, "Could not play alert sound.", logging.Entry("alert", a), logging.Entry("err", err))
	}
	if err := r.vibrator.Vibrate(ctx, alert.VibrationPattern); err != nil {
		r.log.Warning(ctx, "Could not start vibration.", logging.Entry("alert", a), logging.Entry("err", err))
	}

	r.cancel = make(chan struct{})
	go r.expireAfter(r.clock.NewTimer(r.timeout), generation, r.cancel)
	r.lock.Unlock()

	r.log.Info(ctx, "Alert started.", logging.Entry("alert", a), logging.Entry("timeout", r.timeout))
	if wasSounding {
		r.cancelNotification(ctx, replaced)
	}
	r.postNotification(ctx, a, generation)
}

// Stop silences the alert if the one sounding belongs to reminderID.
func (r *Ringer) Stop(ctx context.Context, reminderID reminder.ID, reason alert.StopReason) bool {
	r.lock.Lock()
	if r.state != alert.StateSounding || r.current.ReminderID != reminderID {
		r.lock.Unlock()
		return false
	}
	stopped := r.stop(ctx, reason)
	r.lock.Unlock()

	r.cancelNotification(ctx, stopped)
	return true
}

// StopAny silences whatever alert is sounding.
func (r *Ringer) StopAny(ctx context.Context, reason alert.StopReason) bool {
	r.lock.Lock()
	if r.state != alert.StateSounding {
		r.lock.Unlock()
		return false
	}
	stopped := r.stop(ctx, reason)
	r.lock.Unlock()

	r.cancelNotification(ctx, stopped)
	return true
}

func (r *Ringer) Current() (alert.Alert, alert.State) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.current, r.state
}

func (r *Ringer) expireAfter(timer *clock.Timer, generation uint64, cancel <-chan struct{}) {
	select {
	case <-timer.C:
	case <-cancel:
		timer.Stop()
		return
	}

	ctx := context.Background()
	r.lock.Lock()
	if r.state != alert.StateSounding || r.generation != generation {
		r.lock.Unlock()
		return
	}
	stopped := r.stop(ctx, alert.StopReasonTimeout)
	r.lock.Unlock()

	r.cancelNotification(ctx, stopped)
}

// postNotification withdraws the notification again when the alert it
// belongs to stopped while it was being posted.
func (r *Ringer) postNotification(ctx context.Context, a alert.Alert, generation uint64) {
	if !r.permissions.CanPostNotifications() {
		r.log.Info(ctx, "Notifications are not permitted, skip posting.", logging.Entry("alert", a))
		return
	}
	if err := r.notifier.Notify(ctx, alert.NewNotification(a)); err != nil {
		r.log.Warning(ctx, "Could not post notification.", logging.Entry("alert", a), logging.Entry("err", err))
		return
	}

	r.lock.Lock()
	stale := r.state != alert.StateSounding || r.generation != generation
	r.lock.Unlock()
	if stale {
		r.cancelNotification(ctx, a)
	}
}

func (r *Ringer) cancelNotification(ctx context.Context, a alert.Alert) {
	if err := r.notifier.Cancel(ctx, a.ReminderID); err != nil {
		r.log.Warning(ctx, "Could not cancel notification.", logging.Entry("alert", a), logging.Entry("err", err))
	}
}

// stop must be called with the lock held. The caller cancels the notification
// of the returned alert once the lock is released.
func (r *Ringer) stop(ctx context.Context, reason alert.StopReason) alert.Alert {
	if r.cancel != nil {
		close(r.cancel)
		r.cancel = nil
	}
	a := r.current
	if err := r.player.Stop(ctx); err != nil {
		r.log.Warning(ctx, "Could not stop alert sound.", logging.Entry("alert", a), logging.Entry("err", err))
	}
	if err := r.vibrator.Cancel(ctx); err != nil {
		r.log.Warning(ctx, "Could not cancel vibration.", logging.Entry("alert", a), logging.Entry("err", err))
	}
	r.state = alert.StateIdle
	r.log.Info(ctx, "Alert stopped.", logging.Entry("alert", a), logging.Entry("reason", reason))
	return a
}
