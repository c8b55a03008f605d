package response

import (
	"time"
	"waterreminder/internal/core/domain/alert"
	c "waterreminder/internal/core/domain/common"
)

type Alert struct {
	State      string     `json:"state"`
	ReminderID *int64     `json:"reminder_id"`
	Time       *string    `json:"time"`
	StartedAt  *time.Time `json:"started_at"`
}

func (a *Alert) FromDomainType(state alert.State, current c.Optional[alert.Alert]) {
	a.State = string(state)
	if current.IsPresent {
		id := int64(current.Value.ReminderID)
		t := current.Value.Time.String()
		a.ReminderID = &id
		a.Time = &t
		a.StartedAt = &current.Value.StartedAt
	}
}
