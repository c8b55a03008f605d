package alert

import (
	"context"
	"sync"
	"time"
	"waterreminder/internal/core/domain/reminder"
)

type FakePlayer struct {
	StartCount int
	StopCount  int
	Playing    bool
	StartError error
	lock       sync.Mutex
}

func NewFakePlayer() *FakePlayer {
	return &FakePlayer{}
}

func (p *FakePlayer) Start(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.StartCount++
	if p.StartError != nil {
		return p.StartError
	}
	p.Playing = true
	return nil
}

func (p *FakePlayer) Stop(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.StopCount++
	p.Playing = false
	return nil
}

func (p *FakePlayer) IsPlaying() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.Playing
}

type FakeVibrator struct {
	Patterns    [][]time.Duration
	CancelCount int
	Vibrating   bool
	lock        sync.Mutex
}

func NewFakeVibrator() *FakeVibrator {
	return &FakeVibrator{}
}

func (v *FakeVibrator) Vibrate(ctx context.Context, pattern []time.Duration) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.Patterns = append(v.Patterns, pattern)
	v.Vibrating = true
	return nil
}

func (v *FakeVibrator) Cancel(ctx context.Context) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.CancelCount++
	v.Vibrating = false
	return nil
}

func (v *FakeVibrator) IsVibrating() bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.Vibrating
}

type FakeNotifier struct {
	Notified    []Notification
	Canceled    []reminder.ID
	Posted      map[reminder.ID]Notification
	NotifyError error
	lock        sync.Mutex
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{Posted: make(map[reminder.ID]Notification)}
}

func (n *FakeNotifier) Notify(ctx context.Context, notification Notification) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.Notified = append(n.Notified, notification)
	if n.NotifyError != nil {
		return n.NotifyError
	}
	n.Posted[notification.ReminderID] = notification
	return nil
}

func (n *FakeNotifier) Cancel(ctx context.Context, reminderID reminder.ID) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.Canceled = append(n.Canceled, reminderID)
	delete(n.Posted, reminderID)
	return nil
}

func (n *FakeNotifier) IsPosted(reminderID reminder.ID) bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	_, ok := n.Posted[reminderID]
	return ok
}

type FakePermissions struct {
	NotificationsAllowed bool
}

func (p *FakePermissions) CanPostNotifications() bool {
	return p.NotificationsAllowed
}

type FakeRinger struct {
	Started []Alert
	Stopped []StopReason
	current Alert
	state   State
	lock    sync.Mutex
}

func NewFakeRinger() *FakeRinger {
	return &FakeRinger{state: StateIdle}
}

func (r *FakeRinger) Start(ctx context.Context, alert Alert) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Started = append(r.Started, alert)
	r.current = alert
	r.state = StateSounding
}

func (r *FakeRinger) Stop(ctx context.Context, reminderID reminder.ID, reason StopReason) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.state != StateSounding || r.current.ReminderID != reminderID {
		return false
	}
	r.Stopped = append(r.Stopped, reason)
	r.state = StateIdle
	return true
}

func (r *FakeRinger) Current() (Alert, State) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.current, r.state
}
