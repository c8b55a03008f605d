package app

import (
	"fmt"
	"net/http"
	"waterreminder/internal/app/deps"
	"waterreminder/internal/app/services"
	acknowledgealert "waterreminder/internal/http/handlers/alert/acknowledge_alert"
	alertevents "waterreminder/internal/http/handlers/alert/alert_events"
	getalert "waterreminder/internal/http/handlers/alert/get_alert"
	addreminder "waterreminder/internal/http/handlers/reminders/add_reminder"
	deletereminder "waterreminder/internal/http/handlers/reminders/delete_reminder"
	editreminder "waterreminder/internal/http/handlers/reminders/edit_reminder"
	listreminders "waterreminder/internal/http/handlers/reminders/list_reminders"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	reminderRouter := chi.NewRouter()
	reminderRouter.Method(http.MethodGet, "/", listreminders.New(s.ListReminders))
	reminderRouter.Method(http.MethodPost, "/", addreminder.New(s.AddReminder))
	reminderRouter.Method(http.MethodPut, "/{index}", editreminder.New(s.EditReminder))
	reminderRouter.Method(http.MethodDelete, "/{index}", deletereminder.New(s.DeleteReminder))

	acknowledgeAlert := acknowledgealert.New(s.AcknowledgeAlert)
	alertRouter := chi.NewRouter()
	alertRouter.Method(http.MethodGet, "/", getalert.New(s.GetAlert))
	alertRouter.Method(http.MethodGet, "/{reminderID}/acknowledge", acknowledgeAlert)
	alertRouter.Method(http.MethodPost, "/{reminderID}/acknowledge", acknowledgeAlert)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/reminders", reminderRouter)
	router.Mount("/alert", alertRouter)
	router.Method(
		http.MethodGet,
		"/events",
		alertevents.New(deps.Logger, deps.SseServer, deps.Config.SseStream),
	)

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: router,
		Addr:    address,
	}
}
