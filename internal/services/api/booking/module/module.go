// Package module wires booking into the API using modkit
package module

import (
	"net/http"

	"trimline/internal/core/policy"
	"trimline/internal/events"
	modkit "trimline/internal/modkit"
	"trimline/internal/modkit/httpkit"
	"trimline/internal/platform/clock"
	str "trimline/internal/platform/strings"
	bookinghttp "trimline/internal/services/api/booking/http"
	bookingrepo "trimline/internal/services/api/booking/repo"
	bookingsvc "trimline/internal/services/api/booking/service"
	"trimline/internal/services/catalog"
)

// Extras carries the shared collaborators the coordinator needs beyond Deps
type Extras struct {
	Catalog *catalog.Cache
	Policy  policy.Policy
	Clock   clock.Clock
	Bus     events.Publisher
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc bookingsvc.Service
}

// New constructs a booking module with the provided dependencies and options
func New(deps modkit.Deps, ex Extras, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("booking"), modkit.WithPrefix("/booking")}, opts...)...)

	repo := bookingrepo.NewPG()
	svc := bookingsvc.New(deps.PG, repo, ex.Catalog, ex.Policy, ex.Clock, ex.Bus, deps.Log)

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
		bookinghttp.Register(r, m.svc)
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
