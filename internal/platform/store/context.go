package store

import "context"

type dayScopeKey struct{}

// DayScope names the (barber, date) a unit of work operates on.
// Repos and the query tracer use it to annotate rows and log lines
type DayScope struct {
	BarberID string
	DateISO  string
}

// WithDayScope attaches a day scope to the context
func WithDayScope(ctx context.Context, scope DayScope) context.Context {
	return context.WithValue(ctx, dayScopeKey{}, scope)
}

// DayScopeFrom retrieves the day scope from context if present
func DayScopeFrom(ctx context.Context) (DayScope, bool) {
	v := ctx.Value(dayScopeKey{})
	if v == nil {
		return DayScope{}, false
	}
	s, _ := v.(DayScope)
	return s, s.BarberID != ""
}
