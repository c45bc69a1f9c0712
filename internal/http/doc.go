// Package http provides HTTP handlers and middleware for the date finding API.
//
// The router exposes the following endpoints:
//   - POST /events: creates an event with candidate dates. Body:
//     {"title","description","dates":["YYYY-MM-DD",...]}. The response carries
//     the event plus a `management_credential` that is never returned again.
//   - GET /events/{id}: returns the event with its dates and participants.
//     The stored management credential is included only when the caller passes
//     a matching `credential` query parameter.
//   - GET /events/{id}/availability: returns per-date participant counts,
//     including candidate dates nobody selected.
//   - GET /events/{id}/calendar.ics: exports the candidate dates as all-day
//     iCalendar entries.
//   - POST /participants: records a participant's availability. Body:
//     {"event_id","name","dates":[...]}; dates must be offered by the event.
//   - PUT /participants/{id}: replaces a participant's selected dates.
//   - GET /admin/events: lists every event; guarded by HTTP Basic
//     authentication configured through the admin password hash.
//   - GET /healthz: storage liveness probe.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
