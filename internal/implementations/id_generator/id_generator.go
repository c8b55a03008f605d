package idgenerator

import (
	"sync"
	"waterreminder/internal/core/domain/alarm"
	"waterreminder/internal/core/domain/reminder"

	"github.com/google/uuid"
)

// Sequence hands out increasing reminder IDs. It never reuses an ID,
// even one whose reminder was deleted, as long as the process lives.
type Sequence struct {
	last reminder.ID
	lock sync.Mutex
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (g *Sequence) GenerateReminderID(existing []reminder.Reminder) reminder.ID {
	g.lock.Lock()
	defer g.lock.Unlock()
	for _, r := range existing {
		if r.ID > g.last {
			g.last = r.ID
		}
	}
	g.last++
	return g.last
}

type UUIDTokens struct{}

func NewUUIDTokens() *UUIDTokens {
	return &UUIDTokens{}
}

func (g *UUIDTokens) GenerateAlarmToken() alarm.Token {
	return alarm.Token(uuid.NewString())
}
