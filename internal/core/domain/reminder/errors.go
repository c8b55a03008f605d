package reminder

import "errors"

var (
	ErrInvalidTimeOfDay        = errors.New("invalid time of day")
	ErrParseTimeOfDay          = errors.New("time of day must be formatted as HH:MM")
	ErrReminderIndexOutOfRange = errors.New("reminder index is out of range")
	ErrReminderIDConflict      = errors.New("reminder with the same ID already exists")
)
