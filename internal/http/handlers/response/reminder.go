package response

import (
	"time"
	"waterreminder/internal/core/domain/alarm"
	c "waterreminder/internal/core/domain/common"
	"waterreminder/internal/core/domain/reminder"
)

type Reminder struct {
	Index  int        `json:"index"`
	ID     int64      `json:"id"`
	Time   string     `json:"time"`
	NextAt *time.Time `json:"next_at"`
	Mode   *string    `json:"mode"`
}

func (r *Reminder) FromDomainType(index int, dr reminder.Reminder) {
	r.Index = index
	r.ID = int64(dr.ID)
	r.Time = dr.Time.String()
}

func (r *Reminder) SetSchedule(nextAt c.Optional[time.Time], mode c.Optional[alarm.Mode]) {
	if nextAt.IsPresent {
		r.NextAt = &nextAt.Value
	}
	if mode.IsPresent {
		m := string(mode.Value)
		r.Mode = &m
	}
}
