package getalert

import (
	"net/http"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/services"
	service "waterreminder/internal/core/services/get_alert"
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

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	result, err := h.service.Run(r.Context(), service.Input{})
	if err != nil {
		response.RenderInternalError(rw)
		return
	}

	var a response.Alert
	a.FromDomainType(result.State, result.Alert)
	response.Render(rw, a, http.StatusOK)
}
