// Package http provides HTTP transport for schedule reads
package http

import (
	stdhttp "net/http"
	"strconv"

	"trimline/internal/modkit/httpkit"
	perr "trimline/internal/platform/errors"
	svc "trimline/internal/services/api/schedule/service"
)

// Register mounts schedule endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/slots", h.slots)
	httpkit.Get(r, "/alternatives", h.alternatives)
	httpkit.Get(r, "/queue", h.queue)
	httpkit.Get(r, "/timeline", h.timeline)
	httpkit.Get(r, "/next-available", h.nextAvailable)
	httpkit.Get(r, "/summary", h.summary)
}

type handlers struct{ svc svc.Service }

func query(r *stdhttp.Request, key string) string { return r.URL.Query().Get(key) }

func queryInt(r *stdhttp.Request, key string) (int, error) {
	v := query(r, key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perr.InvalidRequestf("%s %q is not a number", key, v)
	}
	return n, nil
}

func requireBarber(r *stdhttp.Request) (string, error) {
	id := query(r, "barber_id")
	if id == "" {
		return "", perr.InvalidRequestf("barber_id is required")
	}
	return id, nil
}

// swagger:route GET /schedule/slots Schedule scheduleSlots
// @Summary Classified candidate slots for a barber and date
// @Tags Schedule
// @Produce json
// @Param barber_id query string true "Barber id"
// @Param date query string true "Service date YYYY-MM-DD"
// @Param service_duration query int false "Service duration in minutes"
// @Success 200 {array} domain.Slot "ok"
// @Router /schedule/slots [get]
func (h *handlers) slots(r *stdhttp.Request) (any, error) {
	barberID, err := requireBarber(r)
	if err != nil {
		return nil, err
	}
	dur, err := queryInt(r, "service_duration")
	if err != nil {
		return nil, err
	}
	return h.svc.Slots(r.Context(), barberID, query(r, "date"), dur)
}

// swagger:route GET /schedule/alternatives Schedule scheduleAlternatives
// @Summary Ranked alternative barbers for a date and duration
// @Tags Schedule
// @Produce json
// @Param date query string true "Service date YYYY-MM-DD"
// @Param service_duration query int false "Service duration in minutes"
// @Param exclude_barber_id query string false "Barber to exclude"
// @Success 200 {array} domain.BarberOption "ok"
// @Router /schedule/alternatives [get]
func (h *handlers) alternatives(r *stdhttp.Request) (any, error) {
	dur, err := queryInt(r, "service_duration")
	if err != nil {
		return nil, err
	}
	return h.svc.Alternatives(r.Context(), query(r, "date"), dur, query(r, "exclude_barber_id"))
}

// swagger:route GET /schedule/queue Schedule scheduleQueue
// @Summary Active queue with estimated windows
// @Tags Schedule
// @Produce json
// @Param barber_id query string true "Barber id"
// @Param date query string true "Service date YYYY-MM-DD"
// @Success 200 {object} domain.QueueInfo "ok"
// @Router /schedule/queue [get]
func (h *handlers) queue(r *stdhttp.Request) (any, error) {
	barberID, err := requireBarber(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Queue(r.Context(), barberID, query(r, "date"))
}

// swagger:route GET /schedule/timeline Schedule scheduleTimeline
// @Summary Unified block timeline for a barber and date
// @Tags Schedule
// @Produce json
// @Param barber_id query string true "Barber id"
// @Param date query string true "Service date YYYY-MM-DD"
// @Success 200 {object} domain.Timeline "ok"
// @Router /schedule/timeline [get]
func (h *handlers) timeline(r *stdhttp.Request) (any, error) {
	barberID, err := requireBarber(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Timeline(r.Context(), barberID, query(r, "date"))
}

// swagger:route GET /schedule/next-available Schedule scheduleNextAvailable
// @Summary Earliest bookable slot for a duration
// @Tags Schedule
// @Produce json
// @Param barber_id query string true "Barber id"
// @Param date query string true "Service date YYYY-MM-DD"
// @Param service_duration query int false "Service duration in minutes"
// @Success 200 {object} domain.NextAvailable "ok"
// @Router /schedule/next-available [get]
func (h *handlers) nextAvailable(r *stdhttp.Request) (any, error) {
	barberID, err := requireBarber(r)
	if err != nil {
		return nil, err
	}
	dur, err := queryInt(r, "service_duration")
	if err != nil {
		return nil, err
	}
	return h.svc.NextAvailable(r.Context(), barberID, query(r, "date"), dur)
}

// swagger:route GET /schedule/summary Schedule scheduleSummary
// @Summary Day at a glance for dashboards
// @Tags Schedule
// @Produce json
// @Param barber_id query string true "Barber id"
// @Param date query string true "Service date YYYY-MM-DD"
// @Success 200 {object} domain.DaySummary "ok"
// @Router /schedule/summary [get]
func (h *handlers) summary(r *stdhttp.Request) (any, error) {
	barberID, err := requireBarber(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Summary(r.Context(), barberID, query(r, "date"))
}
