// Package api provides the HTTP API for the application
package api

import (
	"time"

	"trimline/internal/core/policy"
	"trimline/internal/core/timemath"
	"trimline/internal/events"
	"trimline/internal/platform/clock"
	"trimline/internal/platform/config"
	"trimline/internal/platform/logger"
	phttp "trimline/internal/platform/net/http"
	"trimline/internal/platform/store"

	"trimline/internal/modkit"
	"trimline/internal/modkit/httpkit"
	"trimline/internal/modkit/module"
	"trimline/internal/modkit/swaggerkit"

	bookingmod "trimline/internal/services/api/booking/module"
	metamod "trimline/internal/services/api/meta/module"
	schedulemod "trimline/internal/services/api/schedule/module"
	"trimline/internal/services/catalog"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		RD:  opt.Store.RD,
	}

	pol := PolicyFromConfig(opt.Config.Prefix("BOOKING_"))
	if err := pol.Validate(); err != nil {
		panic(err)
	}
	clk := clock.System{}
	bus := events.NewBus(pol.EventBufferSize, *opt.Logger)

	catTTL := opt.Config.Prefix("CATALOG_").MayDuration("TTL", 5*time.Minute)
	cat := catalog.New(catalog.NewPG().Bind(deps.PG), catTTL, clk, deps.RD, *opt.Logger)

	booking := bookingmod.New(deps, bookingmod.Extras{
		Catalog: cat,
		Policy:  pol,
		Clock:   clk,
		Bus:     bus,
	})
	schedule := schedulemod.New(deps, schedulemod.Extras{
		Policy: pol,
		Clock:  clk,
	})

	mods := []module.Module{
		metamod.New(deps),
		booking,
		schedule,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}

// PolicyFromConfig reads the scheduling constants, falling back to the stock
// barbershop defaults. Time-of-day keys use HH:MM
func PolicyFromConfig(cfg config.Conf) policy.Policy {
	p := policy.Default()
	p.WorkStart = minuteKey(cfg, "WORKING_START", p.WorkStart)
	p.WorkEnd = minuteKey(cfg, "WORKING_END", p.WorkEnd)
	p.LunchStart = minuteKey(cfg, "LUNCH_START", p.LunchStart)
	p.LunchEnd = minuteKey(cfg, "LUNCH_END", p.LunchEnd)
	p.SlotGranularity = cfg.MayInt("SLOT_GRANULARITY_MIN", p.SlotGranularity)
	p.MinServiceDuration = cfg.MayInt("MIN_SERVICE_DURATION_MIN", p.MinServiceDuration)
	p.MaxActiveQueue = cfg.MayInt("MAX_ACTIVE_QUEUE", p.MaxActiveQueue)
	p.SameDayCutoff = minuteKey(cfg, "SAME_DAY_CUTOFF", p.SameDayCutoff)
	p.EventBufferSize = cfg.MayInt("EVENT_BUFFER_SIZE", p.EventBufferSize)
	return p
}

func minuteKey(cfg config.Conf, key string, def int) int {
	raw := cfg.MayString(key, "")
	if raw == "" {
		return def
	}
	m, err := timemath.ToMinutes(raw)
	if err != nil {
		panic("config " + key + ": " + err.Error())
	}
	return m
}
