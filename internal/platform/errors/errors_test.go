package errors

import (
	"encoding/json"
	stderrs "errors"
	"net/http"
	"testing"
)

func TestWireNamesStable(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{ErrorCodeSlotNotAvailable, "SlotNotAvailable"},
		{ErrorCodeOutsideBookingWindow, "OutsideBookingWindow"},
		{ErrorCodeQueueFull, "QueueFull"},
		{ErrorCodeLunchConflict, "LunchConflict"},
		{ErrorCodeWorkingHoursExceeded, "WorkingHoursExceeded"},
		{ErrorCodeDayOff, "DayOff"},
		{ErrorCodeBarberOffline, "BarberOffline"},
		{ErrorCodeInvalidTransition, "InvalidTransition"},
		{ErrorCodeVersionConflict, "VersionConflict"},
		{ErrorCodeTimeout, "Timeout"},
		{ErrorCodeRepositoryUnavailable, "RepositoryUnavailable"},
		{ErrorCodeInternal, "Internal"},
		{ErrorCodePanic, "Internal"},
		{ErrorCodeDuplicateKey, "VersionConflict"},
	}
	for _, tc := range cases {
		if got := tc.code.String(); got != tc.want {
			t.Fatalf("String(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestErrorCodeMarshalJSON(t *testing.T) {
	b, err := json.Marshal(ErrorCodeSlotNotAvailable)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"SlotNotAvailable"` {
		t.Fatalf("marshal = %s, want %q", b, `"SlotNotAvailable"`)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeUnknownBarber, http.StatusNotFound},
		{ErrorCodeUnknownAppointment, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeInvalidRequest, http.StatusUnprocessableEntity},
		{ErrorCodeSlotNotAvailable, http.StatusConflict},
		{ErrorCodeQueueFull, http.StatusConflict},
		{ErrorCodeVersionConflict, http.StatusConflict},
		{ErrorCodeTimeout, http.StatusRequestTimeout},
		{ErrorCodeRepositoryUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.code); got != tc.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrs.New("pool closed")
	err := Wrap(cause, ErrorCodeRepositoryUnavailable, "listing appointments")

	if !stderrs.Is(err, cause) {
		t.Fatalf("wrapped error should match cause via errors.Is")
	}
	if CodeOf(err) != ErrorCodeRepositoryUnavailable {
		t.Fatalf("CodeOf = %v, want RepositoryUnavailable", CodeOf(err))
	}
	if Root(err) != cause {
		t.Fatalf("Root should return the deepest cause")
	}
}

func TestWithSuggestions(t *testing.T) {
	type suggestion struct {
		Slots []string `json:"slots"`
	}
	err := SlotNotAvailablef("09:00 is taken")
	err = WithSuggestions(err, suggestion{Slots: []string{"09:30", "10:00"}})

	e, ok := As(err)
	if !ok {
		t.Fatalf("expected *Error")
	}
	w := e.ToWire()
	if w.Suggestions == nil {
		t.Fatalf("wire form should carry suggestions")
	}
	if w.Code != ErrorCodeSlotNotAvailable {
		t.Fatalf("wire code = %v, want SlotNotAvailable", w.Code)
	}
}

func TestWireFromForeignError(t *testing.T) {
	w := WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeInternal {
		t.Fatalf("foreign errors map to Internal, got %v", w.Code)
	}
	if w.Message != "boom" {
		t.Fatalf("message = %q", w.Message)
	}
}

func TestIsCode(t *testing.T) {
	err := QueueFullf("queue is at capacity")
	if !IsCode(err, ErrorCodeQueueFull) {
		t.Fatalf("IsCode should match QueueFull")
	}
	if IsCode(err, ErrorCodeDayOff) {
		t.Fatalf("IsCode should not match DayOff")
	}
}
