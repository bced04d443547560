package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

var ErrConcurrentUpdate = errors.New("postgres: concurrent update detected")

type PropertyRepository struct {
	q Querier
}

func (r PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	p := &domainproperty.Property{}
	err := r.q.QueryRow(ctx,
		`SELECT id, owner_name, created_at, updated_at FROM properties WHERE id = $1`, string(id),
	).Scan(&p.ID, &p.OwnerName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainproperty.ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return p, nil
}

func (r PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO properties (id, owner_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET owner_name = EXCLUDED.owner_name, updated_at = EXCLUDED.updated_at`,
		string(p.ID), p.OwnerName, p.CreatedAt, p.UpdatedAt)
	return err
}

const bookingColumns = `id, property_id, start_day, end_day, status, guest_name, guest_last4_ssn, created_at, last_updated_at, version`

type BookingRepository struct {
	q Querier
}

func (r BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	rows, err := r.q.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	if err != nil {
		return nil, err
	}
	items, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domainbooking.ErrBookingNotFound
	}
	return items[0], nil
}

// Save inserts new bookings and updates existing ones only if the stored
// version still matches.
func (r BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	next := b.Version + 1
	tag, err := r.q.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			start_day = EXCLUDED.start_day,
			end_day = EXCLUDED.end_day,
			status = EXCLUDED.status,
			guest_name = EXCLUDED.guest_name,
			guest_last4_ssn = EXCLUDED.guest_last4_ssn,
			last_updated_at = EXCLUDED.last_updated_at,
			version = EXCLUDED.version
		WHERE bookings.version = $11`,
		string(b.ID), string(b.PropertyID), b.Range.Start, b.Range.End, string(b.Status),
		b.GuestName, b.GuestLast4SSN, b.CreatedAt, nullableTime(b.LastUpdatedAt), next, b.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = next
	return nil
}

func (r BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainbooking.ErrBookingNotFound
	}
	return nil
}

func (r BookingRepository) FindOverlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange, exclude domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE property_id = $1 AND start_day <= $3 AND end_day >= $2
		  AND status <> $4 AND id <> $5
		ORDER BY start_day`,
		string(propertyID), dr.Start, dr.End, string(domainbooking.StatusCanceled), string(exclude))
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	rows, err := r.q.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE property_id = $1 ORDER BY start_day`, string(propertyID))
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]*domainbooking.Booking, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domainbooking.Booking, error) {
		var (
			b          domainbooking.Booking
			start, end time.Time
			status     string
			updated    *time.Time
		)
		if err := row.Scan(&b.ID, &b.PropertyID, &start, &end, &status, &b.GuestName, &b.GuestLast4SSN, &b.CreatedAt, &updated, &b.Version); err != nil {
			return nil, err
		}
		s, err := domainbooking.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		b.Status = s
		b.Range = daterange.Between(start, end)
		b.CreatedAt = b.CreatedAt.UTC()
		if updated != nil {
			b.LastUpdatedAt = updated.UTC()
		}
		return &b, nil
	})
}

const blockColumns = `id, property_id, start_day, end_day, reason, created_at, last_updated_at, version`

type BlockRepository struct {
	q Querier
}

func (r BlockRepository) ByID(ctx context.Context, id domainblock.BlockID) (*domainblock.Block, error) {
	rows, err := r.q.Query(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1`, string(id))
	if err != nil {
		return nil, err
	}
	items, err := collectBlocks(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domainblock.ErrBlockNotFound
	}
	return items[0], nil
}

func (r BlockRepository) Save(ctx context.Context, b *domainblock.Block) error {
	next := b.Version + 1
	tag, err := r.q.Exec(ctx, `
		INSERT INTO blocks (`+blockColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			start_day = EXCLUDED.start_day,
			end_day = EXCLUDED.end_day,
			reason = EXCLUDED.reason,
			last_updated_at = EXCLUDED.last_updated_at,
			version = EXCLUDED.version
		WHERE blocks.version = $9`,
		string(b.ID), string(b.PropertyID), b.Range.Start, b.Range.End, b.Reason,
		b.CreatedAt, nullableTime(b.LastUpdatedAt), next, b.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = next
	return nil
}

func (r BlockRepository) Delete(ctx context.Context, id domainblock.BlockID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM blocks WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainblock.ErrBlockNotFound
	}
	return nil
}

func (r BlockRepository) FindOverlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange, exclude domainblock.BlockID) ([]*domainblock.Block, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+blockColumns+` FROM blocks
		WHERE property_id = $1 AND start_day <= $3 AND end_day >= $2 AND id <> $4
		ORDER BY start_day`,
		string(propertyID), dr.Start, dr.End, string(exclude))
	if err != nil {
		return nil, err
	}
	return collectBlocks(rows)
}

func (r BlockRepository) ListByProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainblock.Block, error) {
	rows, err := r.q.Query(ctx, `SELECT `+blockColumns+` FROM blocks WHERE property_id = $1 ORDER BY start_day`, string(propertyID))
	if err != nil {
		return nil, err
	}
	return collectBlocks(rows)
}

func collectBlocks(rows pgx.Rows) ([]*domainblock.Block, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domainblock.Block, error) {
		var (
			b          domainblock.Block
			start, end time.Time
			updated    *time.Time
		)
		if err := row.Scan(&b.ID, &b.PropertyID, &start, &end, &b.Reason, &b.CreatedAt, &updated, &b.Version); err != nil {
			return nil, err
		}
		b.Range = daterange.Between(start, end)
		b.CreatedAt = b.CreatedAt.UTC()
		if updated != nil {
			b.LastUpdatedAt = updated.UTC()
		}
		return &b, nil
	})
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var (
	_ domainproperty.Repository = PropertyRepository{}
	_ domainbooking.Repository  = BookingRepository{}
	_ domainblock.Repository    = BlockRepository{}
)
