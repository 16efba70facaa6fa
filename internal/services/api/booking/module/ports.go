package module

import (
	bookingdom "trimline/internal/services/api/booking/domain"
)

// Ports exposes the coordinator port for cross-module lookups
type Ports struct {
	Service bookingdom.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
