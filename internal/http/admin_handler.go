package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/kdyvoda/internal/application"
)

// AdminHandler serves the operator facing listing of every event. The router
// mounts it behind the RequireAdmin middleware.
type AdminHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewAdminHandler(service eventService, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "AdminHandler", "ListEvents")

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "event listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(events)).InfoContext(r.Context(), "events listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

func toEventDTOs(events []application.Event) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

// HealthHandler reports storage liveness for load balancer probes.
type HealthHandler struct {
	pinger    interface{ Ping(ctx context.Context) error }
	responder responder
}

func NewHealthHandler(pinger interface{ Ping(ctx context.Context) error }, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pinger: pinger, responder: newResponder(defaultLogger(logger))}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
