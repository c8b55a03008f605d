package alertevents

import (
	"net/http"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"

	"github.com/r3labs/sse/v2"
)

// Handler subscribes the client to the alert events stream.
type Handler struct {
	log       logging.Logger
	sseServer *sse.Server
	streamID  string
}

func New(
	log logging.Logger,
	sseServer *sse.Server,
	streamID string,
) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sseServer == nil {
		panic(e.NewNilArgumentError("sseServer"))
	}
	if streamID == "" {
		panic("stream ID must not be empty")
	}
	return &Handler{log: log, sseServer: sseServer, streamID: streamID}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if !h.sseServer.StreamExists(h.streamID) {
		h.sseServer.CreateStream(h.streamID)
	}

	query := r.URL.Query()
	query.Set("stream", h.streamID)
	r.URL.RawQuery = query.Encode()

	h.log.Info(r.Context(), "Subscribed to alert events.", logging.Entry("stream", h.streamID))
	h.sseServer.ServeHTTP(rw, r)
	h.log.Info(r.Context(), "Unsubscribed from alert events.", logging.Entry("stream", h.streamID))
}
