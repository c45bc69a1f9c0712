package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/kdyvoda/internal/application"
	"github.com/example/kdyvoda/internal/dateutil"
)

type eventService interface {
	CreateEvent(ctx context.Context, input application.EventInput) (application.CreateEventResult, error)
	GetEvent(ctx context.Context, eventID, credential string) (application.Event, error)
	ListEvents(ctx context.Context) ([]application.Event, error)
	EventAvailability(ctx context.Context, eventID string) (application.EventAvailability, error)
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	days, err := parseDays(req.Dates)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateFormat)
		return
	}

	logger := h.log(r.Context(), "Create")

	result, err := h.service.CreateEvent(r.Context(), application.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Days:        days,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", result.Event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createEventResponse{
		Event:                toEventDTO(result.Event),
		ManagementCredential: result.ManagementCredential,
	})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Get", "event_id", eventID)

	event, err := h.service.GetEvent(r.Context(), eventID, r.URL.Query().Get("credential"))
	if err != nil {
		logger.ErrorContext(r.Context(), "event fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Availability", "event_id", eventID)

	result, err := h.service.EventAvailability(r.Context(), eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability aggregation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAvailabilityResponse(result))
}

// ExportCalendar renders the event's candidate dates as all-day entries in an
// iCalendar document, so organizers can overlay the poll onto their own
// calendars.
func (h *EventHandler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "ExportCalendar", "event_id", eventID)

	event, err := h.service.GetEvent(r.Context(), eventID, "")
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//kdyvoda//calendar export//EN")
	for _, date := range event.Dates {
		entry := cal.AddEvent(date.ID + "@kdyvoda")
		entry.SetDtStampTime(event.CreatedAt.UTC())
		entry.SetAllDayStartAt(date.Day)
		entry.SetAllDayEndAt(date.Day.AddDate(0, 0, 1))
		entry.SetSummary(event.Title + " (candidate date)")
		if event.Description != "" {
			entry.SetDescription(event.Description)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+eventID+`.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		logger.ErrorContext(r.Context(), "failed to write calendar", "error", err)
	}
}

func parseDays(values []string) ([]time.Time, error) {
	var days []time.Time
	for _, value := range values {
		day, err := dateutil.ParseDay(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

type eventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Dates       []string `json:"dates"`
}

type createEventResponse struct {
	Event                eventDTO `json:"event"`
	ManagementCredential string   `json:"management_credential"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type eventDTO struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	ManagementCredential string           `json:"management_credential,omitempty"`
	Dates                []eventDateDTO   `json:"dates"`
	Participants         []participantDTO `json:"participants,omitempty"`
	CreatedAt            string           `json:"created_at"`
	UpdatedAt            string           `json:"updated_at"`
}

type eventDateDTO struct {
	ID  string `json:"id"`
	Day string `json:"day"`
}

func toEventDTO(event application.Event) eventDTO {
	dto := eventDTO{
		ID:                   event.ID,
		Title:                event.Title,
		Description:          event.Description,
		ManagementCredential: event.ManagementCredential,
		CreatedAt:            event.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:            event.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, date := range event.Dates {
		dto.Dates = append(dto.Dates, eventDateDTO{ID: date.ID, Day: dateutil.Key(date.Day)})
	}
	for _, participant := range event.Participants {
		dto.Participants = append(dto.Participants, toParticipantDTO(participant))
	}
	return dto
}

type availabilityResponse struct {
	EventID string         `json:"event_id"`
	Counts  []dateCountDTO `json:"counts"`
}

type dateCountDTO struct {
	EventDateID  string   `json:"event_date_id"`
	Day          string   `json:"day"`
	Count        int      `json:"count"`
	Participants []string `json:"participants,omitempty"`
}

func toAvailabilityResponse(result application.EventAvailability) availabilityResponse {
	resp := availabilityResponse{EventID: result.Event.ID}
	for _, count := range result.Counts {
		resp.Counts = append(resp.Counts, dateCountDTO{
			EventDateID:  count.EventDateID,
			Day:          dateutil.Key(count.Day),
			Count:        count.Count,
			Participants: count.Participants,
		})
	}
	return resp
}
