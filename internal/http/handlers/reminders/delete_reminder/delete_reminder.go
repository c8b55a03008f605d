package deletereminder

import (
	"errors"
	"net/http"
	"strconv"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/reminder"
	"waterreminder/internal/core/services"
	service "waterreminder/internal/core/services/delete_reminder"
	"waterreminder/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service services.Service[service.Input, service.Result]
}

func New(
	service services.Service[service.Input, service.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Result struct {
	Reminder response.Reminder `json:"reminder"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.RenderError(rw, "invalid reminder index", http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{Index: index})
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrReminderIndexOutOfRange):
			response.RenderError(rw, err.Error(), http.StatusNotFound)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	var rem response.Reminder
	rem.FromDomainType(index, result.Reminder)
	response.Render(rw, Result{Reminder: rem}, http.StatusOK)
}
