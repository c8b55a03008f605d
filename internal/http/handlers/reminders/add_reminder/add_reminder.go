package addreminder

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/reminder"
	"waterreminder/internal/core/services"
	service "waterreminder/internal/core/services/add_reminder"
	"waterreminder/internal/http/handlers/response"

	validation "github.com/go-ozzo/ozzo-validation"
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

type Input struct {
	Time string `json:"time"`
}

type Result struct {
	Reminder    response.Reminder `json:"reminder"`
	ScheduledAt time.Time         `json:"scheduled_at"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Time, validation.Required, validation.Length(4, 5)),
	)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.Render(rw, err, http.StatusBadRequest)
		return
	}
	t, err := reminder.ParseTimeOfDay(input.Time)
	if err != nil {
		response.RenderError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Run(r.Context(), service.Input{Time: t})
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrInvalidTimeOfDay):
			response.RenderError(rw, err.Error(), http.StatusBadRequest)
		default:
			response.RenderInternalError(rw)
		}
		return
	}

	rem := response.Reminder{}
	rem.FromDomainType(result.Index, result.Reminder)
	response.Render(rw, Result{Reminder: rem, ScheduledAt: result.ScheduledAt}, http.StatusCreated)
}
