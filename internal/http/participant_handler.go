package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/kdyvoda/internal/application"
	"github.com/example/kdyvoda/internal/dateutil"
)

type participantService interface {
	CreateParticipant(ctx context.Context, input application.ParticipantInput) (application.Participant, error)
	UpdateParticipantDates(ctx context.Context, participantID string, days []time.Time) (application.Participant, error)
}

type ParticipantHandler struct {
	service   participantService
	responder responder
	logger    *slog.Logger
}

func NewParticipantHandler(service participantService, logger *slog.Logger) *ParticipantHandler {
	base := defaultLogger(logger)
	return &ParticipantHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ParticipantHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ParticipantHandler", operation, attrs...)
}

func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode participant request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	days, err := parseDays(req.Dates)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateFormat)
		return
	}

	logger := h.log(r.Context(), "Create", "event_id", req.EventID)

	participant, err := h.service.CreateParticipant(r.Context(), application.ParticipantInput{
		EventID: req.EventID,
		Name:    req.Name,
		Days:    days,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "participant creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("participant_id", participant.ID).InfoContext(r.Context(), "participant created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, participantResponse{Participant: toParticipantDTO(participant)})
}

func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(participantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipantID)
		return
	}

	var req updateParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "participant_id", participantID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode participant update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	days, err := parseDays(req.Dates)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateFormat)
		return
	}

	logger := h.log(r.Context(), "Update", "participant_id", participantID)

	participant, err := h.service.UpdateParticipantDates(r.Context(), participantID, days)
	if err != nil {
		logger.ErrorContext(r.Context(), "participant update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant dates updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, participantResponse{Participant: toParticipantDTO(participant)})
}

type createParticipantRequest struct {
	EventID string   `json:"event_id"`
	Name    string   `json:"name"`
	Dates   []string `json:"dates"`
}

type updateParticipantRequest struct {
	Dates []string `json:"dates"`
}

type participantResponse struct {
	Participant participantDTO `json:"participant"`
}

type participantDTO struct {
	ID        string   `json:"id"`
	EventID   string   `json:"event_id"`
	Name      string   `json:"name"`
	Dates     []string `json:"dates"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toParticipantDTO(participant application.Participant) participantDTO {
	dto := participantDTO{
		ID:        participant.ID,
		EventID:   participant.EventID,
		Name:      participant.Name,
		CreatedAt: participant.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: participant.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, day := range participant.Days {
		dto.Dates = append(dto.Dates, dateutil.Key(day))
	}
	return dto
}
