// Package domain holds DTOs for schedule http and service contracts
package domain

// Slot is one classified candidate grid point
type Slot struct {
	StartTime    string `json:"start_time"`
	StartTime12H string `json:"start_time_12h"`
	StartMinute  int    `json:"start_minute"`
	Kind         string `json:"kind"`
	Bookable     bool   `json:"bookable"`
	Reason       string `json:"reason,omitempty"`
	QueuePreview int    `json:"queue_preview,omitempty"`
}

// BarberOption is one ranked alternative barber
type BarberOption struct {
	BarberID       string  `json:"barber_id"`
	DisplayName    string  `json:"display_name"`
	Status         string  `json:"status"`
	AvgRating      float64 `json:"avg_rating"`
	RatingCount    int     `json:"rating_count"`
	NextAvailable  string  `json:"next_available,omitempty"`
	AvailableCount int     `json:"available_count"`
	QueueLength    int     `json:"queue_length"`
	Score          float64 `json:"score"`
}

// QueueEntry is one active queue row with its estimated window
type QueueEntry struct {
	AppointmentID  string `json:"appointment_id"`
	Position       int    `json:"position"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	DurationMin    int    `json:"duration_min"`
	EstimatedStart string `json:"estimated_start,omitempty"`
	EstimatedEnd   string `json:"estimated_end,omitempty"`
}

// QueueInfo summarizes the active queue of one (barber, date)
type QueueInfo struct {
	BarberID    string       `json:"barber_id"`
	ServiceDate string       `json:"service_date"`
	Length      int          `json:"length"`
	Capacity    int          `json:"capacity"`
	WaitMin     int          `json:"wait_min"`
	Entries     []QueueEntry `json:"entries"`
}

// Block is one stretch of the unified timeline
type Block struct {
	Type          string `json:"type"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	DurationMin   int    `json:"duration_min"`
	AppointmentID string `json:"appointment_id,omitempty"`
	QueuePosition int    `json:"queue_position,omitempty"`
	Estimated     bool   `json:"estimated,omitempty"`
}

// Timeline is the full unified day view
type Timeline struct {
	BarberID    string  `json:"barber_id"`
	ServiceDate string  `json:"service_date"`
	Blocks      []Block `json:"blocks"`
}

// NextAvailable reports the earliest bookable slot, if any
type NextAvailable struct {
	Found     bool   `json:"found"`
	StartTime string `json:"start_time,omitempty"`
}

// DaySummary aggregates one (barber, date) at a glance
type DaySummary struct {
	BarberID       string `json:"barber_id"`
	ServiceDate    string `json:"service_date"`
	ScheduledCount int    `json:"scheduled_count"`
	QueueLength    int    `json:"queue_length"`
	ScheduledMin   int    `json:"scheduled_min"`
	QueuedMin      int    `json:"queued_min"`
	FreeMin        int    `json:"free_min"`
	BookableSlots  int    `json:"bookable_slots"`
}
