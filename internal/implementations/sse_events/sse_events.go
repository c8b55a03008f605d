package sseevents

import (
	"context"
	"encoding/json"
	"time"
	"waterreminder/internal/core/domain/alert"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"

	"github.com/r3labs/sse/v2"
)

const DefaultStream = "alerts"

const (
	EventNotificationPosted   = "notification.posted"
	EventNotificationCanceled = "notification.canceled"
	EventVibrationStarted     = "vibration.started"
	EventVibrationCanceled    = "vibration.canceled"
)

type EventPublisher interface {
	Publish(id string, event *sse.Event)
}

type notificationEvent struct {
	ReminderID  int64  `json:"reminder_id"`
	Time        string `json:"time,omitempty"`
	Title       string `json:"title,omitempty"`
	Text        string `json:"text,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
}

type vibrationEvent struct {
	PatternMs []int64 `json:"pattern_ms,omitempty"`
}

type stream struct {
	log       logging.Logger
	publisher EventPublisher
	id        string
}

func (s *stream) publish(ctx context.Context, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.publisher.Publish(s.id, &sse.Event{Event: []byte(name), Data: data})
	s.log.Debug(ctx, "Alert event published.", logging.Entry("stream", s.id), logging.Entry("event", name))
	return nil
}

func newStream(log logging.Logger, publisher EventPublisher, id string) stream {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if publisher == nil {
		panic(e.NewNilArgumentError("publisher"))
	}
	if id == "" {
		id = DefaultStream
	}
	return stream{log: log, publisher: publisher, id: id}
}

// Notifier shows alert notifications to the clients subscribed to the stream.
type Notifier struct {
	stream
}

func NewNotifier(log logging.Logger, publisher EventPublisher, streamID string) *Notifier {
	return &Notifier{stream: newStream(log, publisher, streamID)}
}

func (n *Notifier) Notify(ctx context.Context, notification alert.Notification) error {
	return n.publish(ctx, EventNotificationPosted, notificationEvent{
		ReminderID:  int64(notification.ReminderID),
		Time:        notification.Time.String(),
		Title:       notification.Title,
		Text:        notification.Text,
		ActionLabel: notification.ActionLabel,
	})
}

func (n *Notifier) Cancel(ctx context.Context, reminderID reminder.ID) error {
	return n.publish(ctx, EventNotificationCanceled, notificationEvent{ReminderID: int64(reminderID)})
}

// Vibrator asks the subscribed clients to vibrate.
type Vibrator struct {
	stream
}

func NewVibrator(log logging.Logger, publisher EventPublisher, streamID string) *Vibrator {
	return &Vibrator{stream: newStream(log, publisher, streamID)}
}

func (v *Vibrator) Vibrate(ctx context.Context, pattern []time.Duration) error {
	patternMs := make([]int64, 0, len(pattern))
	for _, d := range pattern {
		patternMs = append(patternMs, d.Milliseconds())
	}
	return v.publish(ctx, EventVibrationStarted, vibrationEvent{PatternMs: patternMs})
}

func (v *Vibrator) Cancel(ctx context.Context) error {
	return v.publish(ctx, EventVibrationCanceled, vibrationEvent{})
}
