// Package http provides HTTP transport for booking mutations
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"trimline/internal/core/timeline"
	"trimline/internal/modkit/httpkit"
	perr "trimline/internal/platform/errors"
	"trimline/internal/services/api/booking/domain"
	svc "trimline/internal/services/api/booking/service"
)

// Register mounts booking endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.BookInput](r, "/book", h.book)
	httpkit.Post(r, "/cancel/{id}", h.cancel)
	httpkit.PostJSON[domain.TransitionInput](r, "/status/{id}", h.transition)
	httpkit.PostJSON[domain.PriorityInput](r, "/priority/{id}", h.priority)
	httpkit.PostJSON[domain.MoveInput](r, "/queue/{id}/move", h.move)
	httpkit.Post(r, "/queue/{id}/promote", h.promote)
	httpkit.Post(r, "/queue/{id}/demote", h.demote)
	httpkit.PostJSON[domain.RescheduleInput](r, "/reschedule/{id}", h.reschedule)
	httpkit.Get(r, "/appointments/{id}/history", h.history)
	httpkit.Get(r, "/transitions/{status}", h.transitions)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /booking/book Booking bookingBook
// @Summary Book a scheduled or queue appointment
// @Tags Booking
// @Accept json
// @Produce json
// @Param payload body domain.BookInput true "Booking request"
// @Success 200 {object} domain.BookingResult "ok"
// @Router /booking/book [post]
func (h *handlers) book(r *stdhttp.Request, in domain.BookInput) (any, error) {
	return h.svc.Book(r.Context(), in)
}

// swagger:route POST /booking/cancel/{id} Booking bookingCancel
// @Summary Cancel an appointment and close its queue gap
// @Tags Booking
// @Produce json
// @Param id path string true "Appointment id"
// @Success 200 {object} domain.MutationResult "ok"
// @Router /booking/cancel/{id} [post]
func (h *handlers) cancel(r *stdhttp.Request) (any, error) {
	return h.svc.Cancel(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /booking/status/{id} Booking bookingStatus
// @Summary Transition an appointment's lifecycle status
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Appointment id"
// @Param payload body domain.TransitionInput true "New status"
// @Success 200 {object} domain.MutationResult "ok"
// @Router /booking/status/{id} [post]
func (h *handlers) transition(r *stdhttp.Request, in domain.TransitionInput) (any, error) {
	return h.svc.TransitionStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
}

// swagger:route POST /booking/priority/{id} Booking bookingPriority
// @Summary Change a queue appointment's priority and re-derive the order
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Appointment id"
// @Param payload body domain.PriorityInput true "New priority"
// @Success 200 {object} domain.MutationResult "ok"
// @Router /booking/priority/{id} [post]
func (h *handlers) priority(r *stdhttp.Request, in domain.PriorityInput) (any, error) {
	return h.svc.ChangePriority(r.Context(), chi.URLParam(r, "id"), in.Priority)
}

// swagger:route POST /booking/queue/{id}/move Booking bookingMove
// @Summary Move a queue appointment to an explicit position
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Appointment id"
// @Param payload body domain.MoveInput true "Target position"
// @Success 200 {object} domain.MutationResult "ok"
// @Router /booking/queue/{id}/move [post]
func (h *handlers) move(r *stdhttp.Request, in domain.MoveInput) (any, error) {
	return h.svc.MoveQueuePosition(r.Context(), chi.URLParam(r, "id"), in.Position)
}

// swagger:route POST /booking/queue/{id}/promote Booking bookingPromote
// @Summary Promote a queue appointment to the earliest bookable slot
// @Tags Booking
// @Produce json
// @Param id path string true "Appointment id"
// @Success 200 {object} domain.MutationResult "ok"
// @Router /booking/queue/{id}/promote [post]
func (h *handlers) promote(r *stdhttp.Request) (any, error) {
	return h.svc.PromoteQueueToScheduled(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /booking/queue/{id}/demote Booking bookingDemote
// @Summary Demote a scheduled appointment to the queue tail
// @Tags Booking
// @Produce json
// @Param id path string true "Appointment id"
// @Success 200 {object} domain.MutationResult "ok"
// @Router /booking/queue/{id}/demote [post]
func (h *handlers) demote(r *stdhttp.Request) (any, error) {
	return h.svc.DemoteScheduledToQueue(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /booking/reschedule/{id} Booking bookingReschedule
// @Summary Move a scheduled appointment to a new start time
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Appointment id"
// @Param payload body domain.RescheduleInput true "New start time"
// @Success 200 {object} domain.MutationResult "ok"
// @Router /booking/reschedule/{id} [post]
func (h *handlers) reschedule(r *stdhttp.Request, in domain.RescheduleInput) (any, error) {
	return h.svc.Reschedule(r.Context(), chi.URLParam(r, "id"), in.StartTime)
}

// swagger:route GET /booking/appointments/{id}/history Booking bookingHistory
// @Summary Audit trail of an appointment
// @Tags Booking
// @Produce json
// @Param id path string true "Appointment id"
// @Success 200 {array} domain.HistoryEntry "ok"
// @Router /booking/appointments/{id}/history [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	return h.svc.History(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /booking/transitions/{status} Booking bookingTransitions
// @Summary Lifecycle states reachable from a status
// @Tags Booking
// @Produce json
// @Param status path string true "Current status"
// @Success 200 {object} domain.TransitionsResult "ok"
// @Router /booking/transitions/{status} [get]
func (h *handlers) transitions(r *stdhttp.Request) (any, error) {
	st := timeline.Status(chi.URLParam(r, "status"))
	switch st {
	case timeline.StatusPending, timeline.StatusConfirmed, timeline.StatusOngoing,
		timeline.StatusDone, timeline.StatusCancelled, timeline.StatusNoShow:
	default:
		return nil, perr.InvalidRequestf("unknown status %q", st)
	}
	allowed := timeline.AllowedTransitions(st)
	out := domain.TransitionsResult{Status: string(st), Allowed: make([]string, 0, len(allowed))}
	for _, a := range allowed {
		out.Allowed = append(out.Allowed, string(a))
	}
	return out, nil
}
