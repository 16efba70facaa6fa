// Package module wires the schedule read facade into the API using modkit
package module

import (
	"net/http"

	"trimline/internal/core/policy"
	modkit "trimline/internal/modkit"
	"trimline/internal/modkit/httpkit"
	"trimline/internal/platform/clock"
	str "trimline/internal/platform/strings"
	bookingrepo "trimline/internal/services/api/booking/repo"
	scheduledom "trimline/internal/services/api/schedule/domain"
	schedulehttp "trimline/internal/services/api/schedule/http"
	schedulesvc "trimline/internal/services/api/schedule/service"
)

// Extras carries the shared collaborators the facade needs beyond Deps
type Extras struct {
	Policy policy.Policy
	Clock  clock.Clock
}

// Ports exposes the facade port for cross-module lookups
type Ports struct {
	Service scheduledom.ServicePort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc schedulesvc.Service
}

// New constructs a schedule module with the provided dependencies and options
func New(deps modkit.Deps, ex Extras, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("schedule"), modkit.WithPrefix("/schedule")}, opts...)...)

	svc := schedulesvc.New(deps.PG, bookingrepo.NewPG(), ex.Policy, ex.Clock)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Service: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		schedulehttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
