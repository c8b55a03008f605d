package services

import (
	"waterreminder/internal/app/deps"
	"waterreminder/internal/core/services"
	acknowledgealert "waterreminder/internal/core/services/acknowledge_alert"
	addreminder "waterreminder/internal/core/services/add_reminder"
	deletereminder "waterreminder/internal/core/services/delete_reminder"
	editreminder "waterreminder/internal/core/services/edit_reminder"
	firereminder "waterreminder/internal/core/services/fire_reminder"
	getalert "waterreminder/internal/core/services/get_alert"
	listreminders "waterreminder/internal/core/services/list_reminders"
	restorereminders "waterreminder/internal/core/services/restore_reminders"
)

type Services struct {
	AddReminder      services.Service[addreminder.Input, addreminder.Result]
	DeleteReminder   services.Service[deletereminder.Input, deletereminder.Result]
	EditReminder     services.Service[editreminder.Input, editreminder.Result]
	ListReminders    services.Service[listreminders.Input, listreminders.Result]
	RestoreReminders services.Service[restorereminders.Input, restorereminders.Result]

	FireReminder     services.Service[firereminder.Input, firereminder.Result]
	AcknowledgeAlert services.Service[acknowledgealert.Input, acknowledgealert.Result]
	GetAlert         services.Service[getalert.Input, getalert.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.AddReminder = addreminder.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.AlarmScheduler,
		deps.ReminderIDGenerator,
	)
	s.DeleteReminder = deletereminder.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.AlarmScheduler,
	)
	s.EditReminder = editreminder.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.AlarmScheduler,
		deps.ReminderIDGenerator,
	)
	s.ListReminders = listreminders.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.AlarmScheduler,
	)
	s.RestoreReminders = restorereminders.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.AlarmScheduler,
	)

	s.FireReminder = firereminder.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.AlarmScheduler,
		deps.Ringer,
		deps.Now,
	)
	s.AcknowledgeAlert = acknowledgealert.New(
		deps.Logger,
		deps.Ringer,
		deps.Notifier,
	)
	s.GetAlert = getalert.New(deps.Ringer)

	return s
}
