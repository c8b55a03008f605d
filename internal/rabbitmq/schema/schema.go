package schema

import (
	"encoding/json"
	"time"
	"waterreminder/internal/core/domain/alarm"
	"waterreminder/internal/core/domain/reminder"
)

// Alarm is the body of a delayed wake-up message.
type Alarm struct {
	ID     int64     `json:"id"`
	Hour   int       `json:"hour"`
	Minute int       `json:"minute"`
	At     time.Time `json:"at"`
	Token  string    `json:"token"`
}

func NewAlarm(request alarm.Request) Alarm {
	return Alarm{
		ID:     int64(request.ID),
		Hour:   request.Time.Hour,
		Minute: request.Time.Minute,
		At:     request.At,
		Token:  string(request.Token),
	}
}

func (a *Alarm) Delivery() (alarm.Delivery, error) {
	t, err := reminder.NewTimeOfDay(a.Hour, a.Minute)
	if err != nil {
		return alarm.Delivery{}, err
	}
	return alarm.Delivery{
		ID:    reminder.ID(a.ID),
		Time:  t,
		At:    a.At,
		Token: alarm.Token(a.Token),
	}, nil
}

func (a *Alarm) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Alarm) Unmarshal(data []byte) error {
	return json.Unmarshal(data, a)
}
