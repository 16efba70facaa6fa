// Package repo persists appointments and the reference rows booking needs.
// Appointment times cross this boundary as HH:MM:SS strings and are
// converted to minutes before the engine sees them
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"trimline/internal/core/availability"
	"trimline/internal/core/policy"
	"trimline/internal/core/timeline"
	"trimline/internal/core/timemath"
	"trimline/internal/modkit/repokit"
	perr "trimline/internal/platform/errors"
	"trimline/internal/platform/store"
	"trimline/internal/services/api/booking/domain"
)

// Repo is the storage contract the coordinator runs against
type Repo interface {
	// ListDay returns every appointment of one (barber, date), scheduled
	// before queue, then by start time and queue position
	ListDay(ctx context.Context, barberID, dateISO string) ([]timeline.Appointment, error)

	Get(ctx context.Context, id string) (timeline.Appointment, error)
	GetBarber(ctx context.Context, id string) (availability.Barber, error)
	ListActiveBarbers(ctx context.Context) ([]availability.Barber, error)
	IsDayOff(ctx context.Context, barberID, dateISO string) (bool, error)

	// ByIdempotencyKey returns the row a previous book call created, if any
	ByIdempotencyKey(ctx context.Context, key string) (timeline.Appointment, bool, error)

	Insert(ctx context.Context, a timeline.Appointment, idempotencyKey string) (timeline.Appointment, error)

	// Update writes the mutable fields and bumps version; a stale
	// expectedVersion fails with VersionConflict
	Update(ctx context.Context, a timeline.Appointment, expectedVersion int64) (timeline.Appointment, error)

	// RenumberQueue applies an id -> position mapping in one statement
	RenumberQueue(ctx context.Context, barberID, dateISO string, mapping map[string]int) error

	AppendHistory(ctx context.Context, appointmentID, action, detail string, at time.Time) error
	History(ctx context.Context, appointmentID string) ([]domain.HistoryEntry, error)
}

type (
	// PG implements the booking Repo using Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres booking repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const apptColumns = `
a.id::text, a.barber_id::text, coalesce(a.customer_id::text, ''),
to_char(a.service_date, 'YYYY-MM-DD'), a.kind,
coalesce(to_char(a.start_time, 'HH24:MI:SS'), ''), coalesce(a.queue_position, 0),
a.priority, a.status, a.duration_min, a.service_ids, a.addon_ids,
a.total_price_cents, coalesce(a.notes, ''),
coalesce(a.friend_name, ''), coalesce(a.friend_phone, ''),
coalesce(a.friend_email, ''), coalesce(a.primary_customer_id::text, ''),
a.created_at, a.updated_at, a.version
`

func scanAppt(row interface{ Scan(...any) error }) (timeline.Appointment, error) {
	var (
		a          timeline.Appointment
		kind       string
		startHHMM  string
		priority   string
		status     string
		friendName string
		friendTel  string
		friendMail string
		primaryID  string
	)
	err := row.Scan(
		&a.ID, &a.BarberID, &a.CustomerID,
		&a.ServiceDate, &kind,
		&startHHMM, &a.QueuePosition,
		&priority, &status, &a.DurationMin, &a.ServiceIDs, &a.AddOnIDs,
		&a.TotalPrice, &a.Notes,
		&friendName, &friendTel, &friendMail, &primaryID,
		&a.CreatedAt, &a.UpdatedAt, &a.Version,
	)
	if err != nil {
		return timeline.Appointment{}, err
	}
	a.Kind = timeline.Kind(kind)
	a.Priority = timeline.Priority(priority)
	a.Status = timeline.Status(status)
	if a.Kind == timeline.KindQueue || startHHMM == "" {
		a.StartMinute = timeline.NoStart
	} else {
		a.StartMinute, err = timemath.ToMinutes(startHHMM)
		if err != nil {
			return timeline.Appointment{}, perr.Internalf("row %s has malformed start_time %q", a.ID, startHHMM)
		}
	}
	if friendName != "" || friendTel != "" || friendMail != "" || primaryID != "" {
		a.Friend = &timeline.FriendBlock{
			Name: friendName, Phone: friendTel, Email: friendMail, PrimaryCustomerID: primaryID,
		}
	}
	return a, nil
}

func (r *queries) ListDay(ctx context.Context, barberID, dateISO string) ([]timeline.Appointment, error) {
	const sql = `
select ` + apptColumns + `
from appointments a
where a.barber_id = $1 and a.service_date = $2::date
order by case a.kind when 'scheduled' then 0 else 1 end,
         a.start_time asc nulls last, a.queue_position asc nulls last
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (timeline.Appointment, error) {
		return scanAppt(row)
	}, sql, barberID, dateISO)
	if err != nil {
		return nil, perr.FromPostgres(err, "list day")
	}
	return out, nil
}

func (r *queries) Get(ctx context.Context, id string) (timeline.Appointment, error) {
	const sql = `select ` + apptColumns + ` from appointments a where a.id = $1`
	a, err := store.One(ctx, r.q, func(row store.Row) (timeline.Appointment, error) {
		return scanAppt(row)
	}, sql, id)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return timeline.Appointment{}, perr.Newf(perr.ErrorCodeUnknownAppointment, "appointment %s not found", id)
		}
		return timeline.Appointment{}, perr.FromPostgres(err, "get appointment")
	}
	return a, nil
}

func scanBarber(row interface{ Scan(...any) error }) (availability.Barber, error) {
	var (
		b      availability.Barber
		status string
	)
	if err := row.Scan(&b.ID, &b.DisplayName, &status, &b.AvgRating, &b.RatingCount); err != nil {
		return availability.Barber{}, err
	}
	b.Status = policy.BarberStatus(status)
	return b, nil
}

func (r *queries) GetBarber(ctx context.Context, id string) (availability.Barber, error) {
	const sql = `
select id::text, display_name, status, avg_rating, rating_count
from barbers
where id = $1
`
	b, err := store.One(ctx, r.q, func(row store.Row) (availability.Barber, error) {
		return scanBarber(row)
	}, sql, id)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return availability.Barber{}, perr.Newf(perr.ErrorCodeUnknownBarber, "barber %s not found", id)
		}
		return availability.Barber{}, perr.FromPostgres(err, "get barber")
	}
	return b, nil
}

func (r *queries) ListActiveBarbers(ctx context.Context) ([]availability.Barber, error) {
	const sql = `
select id::text, display_name, status, avg_rating, rating_count
from barbers
where status <> 'offline'
order by id
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (availability.Barber, error) {
		return scanBarber(row)
	}, sql)
	if err != nil {
		return nil, perr.FromPostgres(err, "list active barbers")
	}
	return out, nil
}

func (r *queries) IsDayOff(ctx context.Context, barberID, dateISO string) (bool, error) {
	const sql = `
select exists (
  select 1 from barber_days_off
  where barber_id = $1 and $2::date between start_date and end_date
)
`
	off, err := store.Scalar[bool](ctx, r.q, sql, barberID, dateISO)
	if err != nil {
		return false, perr.FromPostgres(err, "day off lookup")
	}
	return off, nil
}

func (r *queries) ByIdempotencyKey(ctx context.Context, key string) (timeline.Appointment, bool, error) {
	const sql = `select ` + apptColumns + ` from appointments a where a.idempotency_key = $1`
	a, err := store.One(ctx, r.q, func(row store.Row) (timeline.Appointment, error) {
		return scanAppt(row)
	}, sql, key)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return timeline.Appointment{}, false, nil
		}
		return timeline.Appointment{}, false, perr.FromPostgres(err, "idempotency lookup")
	}
	return a, true, nil
}

func (r *queries) Insert(ctx context.Context, a timeline.Appointment, idempotencyKey string) (timeline.Appointment, error) {
	const sql = `
insert into appointments (
  id, barber_id, customer_id, service_date, kind, start_time, queue_position,
  priority, status, duration_min, service_ids, addon_ids, total_price_cents,
  notes, friend_name, friend_phone, friend_email, primary_customer_id,
  idempotency_key, created_at, updated_at, version
) values (
  $1, $2, nullif($3, ''), $4::date, $5, nullif($6, '')::time, nullif($7, 0),
  $8, $9, $10, $11, $12, $13,
  nullif($14, ''), nullif($15, ''), nullif($16, ''), nullif($17, ''), nullif($18, ''),
  nullif($19, ''), $20, $21, $22
)
returning ` + apptColumnsBare

	start := ""
	if a.Kind == timeline.KindScheduled {
		start = timemath.ToHHMMSS(a.StartMinute)
	}
	var friendName, friendTel, friendMail, primaryID string
	if a.Friend != nil {
		friendName, friendTel = a.Friend.Name, a.Friend.Phone
		friendMail, primaryID = a.Friend.Email, a.Friend.PrimaryCustomerID
	}
	row := r.q.QueryRow(ctx, sql,
		a.ID, a.BarberID, a.CustomerID, a.ServiceDate, string(a.Kind), start, a.QueuePosition,
		string(a.Priority), string(a.Status), a.DurationMin, a.ServiceIDs, a.AddOnIDs, a.TotalPrice,
		a.Notes, friendName, friendTel, friendMail, primaryID,
		idempotencyKey, a.CreatedAt, a.UpdatedAt, a.Version,
	)
	out, err := scanAppt(row)
	if err != nil {
		return timeline.Appointment{}, perr.FromPostgres(err, "insert appointment")
	}
	return out, nil
}

func (r *queries) Update(ctx context.Context, a timeline.Appointment, expectedVersion int64) (timeline.Appointment, error) {
	const sql = `
update appointments a set
  kind = $3, start_time = nullif($4, '')::time, queue_position = nullif($5, 0),
  priority = $6, status = $7, notes = nullif($8, ''),
  updated_at = $9, version = a.version + 1
where a.id = $1 and a.version = $2
returning ` + apptColumnsBare

	start := ""
	if a.Kind == timeline.KindScheduled {
		start = timemath.ToHHMMSS(a.StartMinute)
	}
	row := r.q.QueryRow(ctx, sql,
		a.ID, expectedVersion, string(a.Kind), start, a.QueuePosition,
		string(a.Priority), string(a.Status), a.Notes, a.UpdatedAt,
	)
	out, err := scanAppt(row)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return timeline.Appointment{}, perr.FromPostgres(err, "update appointment")
	}

	// either the row is gone or the version moved under us
	cur, verr := store.Scalar[int64](ctx, r.q, `select version from appointments where id = $1`, a.ID)
	if errors.Is(verr, pgx.ErrNoRows) {
		return timeline.Appointment{}, perr.Newf(perr.ErrorCodeUnknownAppointment, "appointment %s not found", a.ID)
	}
	if verr != nil {
		return timeline.Appointment{}, perr.FromPostgres(verr, "update appointment")
	}
	return timeline.Appointment{}, perr.VersionConflictf("appointment %s is at version %d, expected %d", a.ID, cur, expectedVersion)
}

func (r *queries) RenumberQueue(ctx context.Context, barberID, dateISO string, mapping map[string]int) error {
	if len(mapping) == 0 {
		return nil
	}
	ids := make([]string, 0, len(mapping))
	positions := make([]int, 0, len(mapping))
	for id, pos := range mapping {
		ids = append(ids, id)
		positions = append(positions, pos)
	}
	const sql = `
update appointments a
set queue_position = m.pos, version = a.version + 1, updated_at = now()
from (select unnest($3::text[]) as id, unnest($4::int[]) as pos) m
where a.id::text = m.id and a.barber_id = $1 and a.service_date = $2::date
  and a.kind = 'queue'
`
	tag, err := store.Exec(ctx, r.q, sql, barberID, dateISO, ids, positions)
	if err != nil {
		return perr.FromPostgres(err, "renumber queue")
	}
	if int(tag.RowsAffected()) != len(mapping) {
		return perr.Internalf("renumber touched %d of %d rows", tag.RowsAffected(), len(mapping))
	}
	return nil
}

func (r *queries) AppendHistory(ctx context.Context, appointmentID, action, detail string, at time.Time) error {
	const sql = `
insert into appointment_history (appointment_id, action, detail, occurred_at)
values ($1, $2, nullif($3, ''), $4)
`
	err := store.ExecOne(ctx, r.q, sql, appointmentID, action, detail, at)
	return perr.WrapIf(err, perr.ErrorCodeRepositoryUnavailable, "append history")
}

func (r *queries) History(ctx context.Context, appointmentID string) ([]domain.HistoryEntry, error) {
	const sql = `
select id::text, appointment_id::text, action, coalesce(detail, ''),
       to_char(occurred_at at time zone 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
from appointment_history
where appointment_id = $1
order by occurred_at asc, id asc
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.HistoryEntry, error) {
		var h domain.HistoryEntry
		err := row.Scan(&h.ID, &h.AppointmentID, &h.Action, &h.Detail, &h.OccurredAt)
		return h, err
	}, sql, appointmentID)
	if err != nil {
		return nil, perr.FromPostgres(err, "appointment history")
	}
	return out, nil
}

// apptColumnsBare is apptColumns without the alias, for returning clauses
const apptColumnsBare = `
id::text, barber_id::text, coalesce(customer_id::text, ''),
to_char(service_date, 'YYYY-MM-DD'), kind,
coalesce(to_char(start_time, 'HH24:MI:SS'), ''), coalesce(queue_position, 0),
priority, status, duration_min, service_ids, addon_ids,
total_price_cents, coalesce(notes, ''),
coalesce(friend_name, ''), coalesce(friend_phone, ''),
coalesce(friend_email, ''), coalesce(primary_customer_id::text, ''),
created_at, updated_at, version
`
