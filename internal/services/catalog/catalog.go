// Package catalog serves the Service/AddOn reference data the engine books
// against. Reads come from an immutable in-memory snapshot refreshed on a
// TTL; a Redis lookaside warms cold processes. Appointments capture
// durations at creation, so a stale snapshot never rewrites a timeline
package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"trimline/internal/platform/clock"
	perr "trimline/internal/platform/errors"
	"trimline/internal/platform/logger"
	"trimline/internal/platform/store"
)

// Service is one bookable service row
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	PriceCents  int64  `json:"price_cents"`
	Active      bool   `json:"active"`
}

// AddOn is one bookable add-on row.
// LegacyAlias carries the historical addon<N> id still seen in old clients
type AddOn struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	PriceCents  int64  `json:"price_cents"`
	Active      bool   `json:"active"`
	LegacyAlias string `json:"legacy_alias,omitempty"`
}

// Snapshot is an immutable view of the catalog; never mutate a returned one
type Snapshot struct {
	Services map[string]Service `json:"services"`
	AddOns   map[string]AddOn   `json:"addons"`
	Aliases  map[string]string  `json:"aliases"`
	LoadedAt time.Time          `json:"loaded_at"`
}

// Repo loads catalog rows from the store
type Repo interface {
	ListServices(ctx context.Context) ([]Service, error)
	ListAddOns(ctx context.Context) ([]AddOn, error)
}

const lookasideKey = "trimline:catalog:v1"

// Cache is the process-wide catalog with copy-on-refresh semantics
type Cache struct {
	repo Repo
	ttl  time.Duration
	clk  clock.Clock
	rd   store.Cache // optional; nil disables the lookaside
	log  logger.Logger

	mu  sync.Mutex // guards refresh, not reads
	cur *Snapshot
}

// New builds a catalog cache; rd may be nil
func New(repo Repo, ttl time.Duration, clk clock.Clock, rd store.Cache, log logger.Logger) *Cache {
	return &Cache{repo: repo, ttl: ttl, clk: clk, rd: rd, log: log}
}

// Snapshot returns the current catalog view, refreshing it when stale.
// On refresh failure a stale snapshot keeps serving with a warning
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	if c.cur != nil && now.Sub(c.cur.LoadedAt) < c.ttl {
		return c.cur, nil
	}

	snap, err := c.load(ctx, now)
	if err != nil {
		if c.cur != nil {
			c.log.Warn().Err(err).Msg("catalog refresh failed; serving stale snapshot")
			return c.cur, nil
		}
		return nil, err
	}
	c.cur = snap
	return snap, nil
}

// Invalidate drops the in-memory and lookaside copies
func (c *Cache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.cur = nil
	c.mu.Unlock()
	if c.rd != nil {
		if err := c.rd.Del(ctx, lookasideKey); err != nil {
			c.log.Warn().Err(err).Msg("catalog lookaside invalidate failed")
		}
	}
}

func (c *Cache) load(ctx context.Context, now time.Time) (*Snapshot, error) {
	// lookaside first: another process may have refreshed recently
	if c.rd != nil {
		if raw, ok, err := c.rd.Get(ctx, lookasideKey); err == nil && ok {
			var snap Snapshot
			if jerr := json.Unmarshal([]byte(raw), &snap); jerr == nil && now.Sub(snap.LoadedAt) < c.ttl {
				return &snap, nil
			}
		}
	}

	services, err := c.repo.ListServices(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeRepositoryUnavailable, "loading services")
	}
	addons, err := c.repo.ListAddOns(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeRepositoryUnavailable, "loading addons")
	}

	snap := &Snapshot{
		Services: make(map[string]Service, len(services)),
		AddOns:   make(map[string]AddOn, len(addons)),
		Aliases:  make(map[string]string),
		LoadedAt: now,
	}
	for _, s := range services {
		snap.Services[s.ID] = s
	}
	for _, a := range addons {
		snap.AddOns[a.ID] = a
		if a.LegacyAlias != "" {
			snap.Aliases[a.LegacyAlias] = a.ID
		}
	}

	if c.rd != nil {
		if raw, jerr := json.Marshal(snap); jerr == nil {
			if serr := c.rd.Set(ctx, lookasideKey, string(raw), c.ttl); serr != nil {
				c.log.Warn().Err(serr).Msg("catalog lookaside write failed")
			}
		}
	}
	return snap, nil
}

// CanonicalAddOnIDs translates legacy addon<N> aliases to catalog ids.
// Unknown ids pass through untouched; resolution rejects them later
func (s *Snapshot) CanonicalAddOnIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		if canonical, ok := s.Aliases[id]; ok {
			out[i] = canonical
			continue
		}
		out[i] = id
	}
	return out
}

// ResolveDuration sums durations and prices for a booking request.
// Unknown or inactive references reject with the matching taxonomy code
func (s *Snapshot) ResolveDuration(serviceIDs, addonIDs []string) (totalMin int, priceCents int64, err error) {
	if len(serviceIDs) == 0 {
		return 0, 0, perr.InvalidRequestf("at least one service is required")
	}
	for _, id := range serviceIDs {
		svc, ok := s.Services[id]
		if !ok || !svc.Active {
			return 0, 0, perr.Newf(perr.ErrorCodeUnknownService, "unknown or inactive service %q", id)
		}
		totalMin += svc.DurationMin
		priceCents += svc.PriceCents
	}
	for _, id := range s.CanonicalAddOnIDs(addonIDs) {
		ao, ok := s.AddOns[id]
		if !ok || !ao.Active {
			return 0, 0, perr.Newf(perr.ErrorCodeUnknownAddOn, "unknown or inactive addon %q", id)
		}
		totalMin += ao.DurationMin
		priceCents += ao.PriceCents
	}
	return totalMin, priceCents, nil
}
