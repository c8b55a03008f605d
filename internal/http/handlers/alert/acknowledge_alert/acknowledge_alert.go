package acknowledgealert

import (
	"net/http"
	"strconv"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/reminder"
	"waterreminder/internal/core/services"
	service "waterreminder/internal/core/services/acknowledge_alert"
	"waterreminder/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
)

// Handler serves GET as well as POST so the link in an alert email works.
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
	WasSounding bool `json:"was_sounding"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	reminderID, err := strconv.ParseInt(chi.URLParam(r, "reminderID"), 10, 64)
	if err != nil {
		response.RenderError(rw, "invalid reminder ID", http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{ReminderID: reminder.ID(reminderID)})
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	response.Render(rw, Result{WasSounding: result.WasSounding}, http.StatusOK)
}
