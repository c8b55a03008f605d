package reminderstore

import (
	"context"
	"encoding/json"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	"waterreminder/internal/db/kv"
)

const DefaultKey = "times"

type record struct {
	ID   int64  `json:"id"`
	Time string `json:"time"`
}

// KVStore keeps the whole reminder collection as one JSON array under a single key.
type KVStore struct {
	log   logging.Logger
	store kv.Store
	key   string
}

func New(log logging.Logger, store kv.Store, key string) *KVStore {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	if key == "" {
		key = DefaultKey
	}
	return &KVStore{log: log, store: store, key: key}
}

// Load returns an empty collection for a missing or unreadable value.
// Records that fail to decode or validate are skipped one by one.
func (s *KVStore) Load(ctx context.Context) ([]reminder.Reminder, error) {
	value, found, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	reminders := make([]reminder.Reminder, 0)
	if !found {
		return reminders, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(value), &raws); err != nil {
		s.log.Warning(
			ctx,
			"Persisted reminders are malformed, starting with an empty list.",
			logging.Entry("key", s.key),
			logging.Entry("err", err),
		)
		return reminders, nil
	}

	seen := make(map[reminder.ID]struct{}, len(raws))
	for _, raw := range raws {
		rem, err := decodeRecord(raw)
		if err == nil {
			if _, ok := seen[rem.ID]; ok {
				err = reminder.ErrReminderIDConflict
			}
		}
		if err != nil {
			s.log.Warning(
				ctx,
				"Persisted reminder is skipped.",
				logging.Entry("record", string(raw)),
				logging.Entry("err", err),
			)
			continue
		}
		seen[rem.ID] = struct{}{}
		reminders = append(reminders, rem)
	}
	return reminders, nil
}

func (s *KVStore) Save(ctx context.Context, reminders []reminder.Reminder) error {
	records := make([]record, 0, len(reminders))
	for _, rem := range reminders {
		records = append(records, record{ID: int64(rem.ID), Time: rem.Time.String()})
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.key, string(encoded))
}

// Any integer is a valid persisted ID, including zero and negative ones.
func decodeRecord(raw json.RawMessage) (rem reminder.Reminder, err error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rem, err
	}
	t, err := reminder.ParseTimeOfDay(rec.Time)
	if err != nil {
		return rem, err
	}
	rem = reminder.Reminder{ID: reminder.ID(rec.ID), Time: t}
	return rem, rem.Validate()
}
