// Package domain holds DTOs for booking http and service contracts
package domain

// FriendInput carries contact details when booking for someone else
type FriendInput struct {
	Name              string `json:"name" validate:"required,min=1,max=120" example:"Sam Doe"`
	Phone             string `json:"phone,omitempty" validate:"omitempty,min=5,max=32" example:"+15555550123"`
	Email             string `json:"email,omitempty" validate:"omitempty,email" example:"sam@example.com"`
	PrimaryCustomerID string `json:"primary_customer_id,omitempty" validate:"omitempty,min=1" example:"cust-42"`
}

// BookInput is the booking request body
type BookInput struct {
	BarberID       string       `json:"barber_id" validate:"required,min=1" example:"barber-7"`
	ServiceDate    string       `json:"service_date" validate:"required,datetime=2006-01-02" example:"2025-10-10"`
	Kind           string       `json:"kind" validate:"required,oneof=scheduled queue" example:"scheduled"`
	StartTime      string       `json:"start_time,omitempty" validate:"omitempty,len=5" example:"09:00"`
	ServiceIDs     []string     `json:"service_ids" validate:"required,min=1,dive,min=1" example:"svc-haircut"`
	AddOnIDs       []string     `json:"addon_ids,omitempty" validate:"omitempty,dive,min=1"`
	Priority       string       `json:"priority,omitempty" validate:"omitempty,oneof=urgent high normal low" example:"normal"`
	CustomerID     string       `json:"customer_id,omitempty" validate:"omitempty,min=1" example:"cust-17"`
	Friend         *FriendInput `json:"friend_block,omitempty"`
	Notes          string       `json:"notes,omitempty" validate:"omitempty,max=2000"`
	IdempotencyKey string       `json:"idempotency_key,omitempty" validate:"omitempty,min=8,max=128" example:"c0ffee-7781"`
}

// BookingResult is the booking response body
type BookingResult struct {
	AppointmentID      string `json:"appointment_id"`
	Kind               string `json:"kind"`
	StartTime          string `json:"start_time,omitempty"`
	QueuePosition      int    `json:"queue_position,omitempty"`
	EstimatedStartTime string `json:"estimated_start_time"`
	EstimatedEndTime   string `json:"estimated_end_time"`
	Version            int64  `json:"version"`
}

// TransitionInput sets a new lifecycle status
type TransitionInput struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed ongoing done cancelled no_show" example:"confirmed"`
}

// PriorityInput sets a new queue priority
type PriorityInput struct {
	Priority string `json:"priority" validate:"required,oneof=urgent high normal low" example:"high"`
}

// MoveInput moves a queue row to a new position
type MoveInput struct {
	Position int `json:"position" validate:"required,min=1" example:"2"`
}

// RescheduleInput moves a scheduled row to a new start time
type RescheduleInput struct {
	StartTime string `json:"start_time" validate:"required,len=5" example:"14:30"`
}

// MutationResult reports the row state after any non-book mutation
type MutationResult struct {
	AppointmentID string `json:"appointment_id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	StartTime     string `json:"start_time,omitempty"`
	QueuePosition int    `json:"queue_position,omitempty"`
	Priority      string `json:"priority,omitempty"`
	Version       int64  `json:"version"`
}

// BarberSuggestion is one alternative barber in a rejection payload
type BarberSuggestion struct {
	BarberID       string  `json:"barber_id"`
	DisplayName    string  `json:"display_name"`
	NextAvailable  string  `json:"next_available,omitempty"`
	AvailableCount int     `json:"available_count"`
	QueueLength    int     `json:"queue_length"`
	Score          float64 `json:"score"`
}

// Suggestions is the best-effort alternatives payload attached to
// policy rejections
type Suggestions struct {
	AlternativeSlots   []string           `json:"alternative_slots,omitempty"`
	AlternativeBarbers []BarberSuggestion `json:"alternative_barbers,omitempty"`
	NextAvailableDate  string             `json:"next_available_date,omitempty"`
}

// HistoryEntry is one audit record of an appointment
type HistoryEntry struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointment_id"`
	Action        string `json:"action"`
	Detail        string `json:"detail,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// TransitionsResult lists the states reachable from a status
type TransitionsResult struct {
	Status  string   `json:"status"`
	Allowed []string `json:"allowed"`
}
