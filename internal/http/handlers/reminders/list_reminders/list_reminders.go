package listreminders

import (
	"net/http"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/services"
	service "waterreminder/internal/core/services/list_reminders"
	"waterreminder/internal/http/handlers/response"
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
	Reminders []response.Reminder `json:"reminders"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	result, err := h.service.Run(r.Context(), service.Input{})
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	reminders := make([]response.Reminder, 0, len(result.Reminders))
	for _, item := range result.Reminders {
		rem := response.Reminder{}
		rem.FromDomainType(item.Index, item.Reminder)
		rem.SetSchedule(item.NextAt, item.Mode)
		reminders = append(reminders, rem)
	}
	response.Render(rw, Result{Reminders: reminders}, http.StatusOK)
}
