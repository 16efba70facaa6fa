package catalog

import (
	"context"

	"trimline/internal/modkit/repokit"
	perr "trimline/internal/platform/errors"
	"trimline/internal/platform/store"
)

type (
	// PG implements the catalog Repo using Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres catalog repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) ListServices(ctx context.Context) ([]Service, error) {
	const sql = `
select id::text, name, duration_min, price_cents, active
from services
order by id
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (Service, error) {
		var s Service
		err := row.Scan(&s.ID, &s.Name, &s.DurationMin, &s.PriceCents, &s.Active)
		return s, err
	}, sql)
	if err != nil {
		return nil, perr.FromPostgres(err, "list services")
	}
	return out, nil
}

func (r *queries) ListAddOns(ctx context.Context) ([]AddOn, error) {
	const sql = `
select id::text, name, duration_min, price_cents, active, coalesce(legacy_alias, '')
from addons
order by id
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (AddOn, error) {
		var a AddOn
		err := row.Scan(&a.ID, &a.Name, &a.DurationMin, &a.PriceCents, &a.Active, &a.LegacyAlias)
		return a, err
	}, sql)
	if err != nil {
		return nil, perr.FromPostgres(err, "list addons")
	}
	return out, nil
}
