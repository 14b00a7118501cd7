package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/rsvp"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

const rsvpColumns = `id, guest_id, is_attending, is_cancelled, adults_count, children_count, plus_one_name, hotel_name,
	transport_to_church, transport_to_reception, transport_to_hotel, created_at, last_updated, cancelled_at`

// GetRSVPByGuest loads the reply of a guest with its details.
func (s *Store) GetRSVPByGuest(ctx context.Context, guestID int64) (rsvp.RSVP, error) {
	if err := s.ready(ctx); err != nil {
		return rsvp.RSVP{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+rsvpColumns+` FROM rsvps WHERE guest_id = ?`, guestID)
	r, err := scanRSVP(row.Scan)
	if err != nil {
		return rsvp.RSVP{}, notFound(err)
	}
	additional, err := loadAdditionalGuests(ctx, s.db, `WHERE rsvp_id = ?`, r.ID)
	if err != nil {
		return rsvp.RSVP{}, err
	}
	allergens, err := loadGuestAllergens(ctx, s.db, `WHERE ga.rsvp_id = ?`, r.ID)
	if err != nil {
		return rsvp.RSVP{}, err
	}
	r.AdditionalGuests = additional[r.ID]
	r.Allergens = allergens[r.ID]
	return r, nil
}

// ListRSVPs returns every reply with details, oldest first.
func (s *Store) ListRSVPs(ctx context.Context) ([]rsvp.RSVP, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+rsvpColumns+` FROM rsvps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	var out []rsvp.RSVP
	for rows.Next() {
		r, err := scanRSVP(rows.Scan)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan rsvp row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate rsvp rows: %w", err)
	}
	_ = rows.Close()

	additional, err := loadAdditionalGuests(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	allergens, err := loadGuestAllergens(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].AdditionalGuests = additional[out[i].ID]
		out[i].Allergens = allergens[out[i].ID]
	}
	return out, nil
}

// SaveRSVP inserts or updates r and replaces its details.
func (s *Store) SaveRSVP(ctx context.Context, r rsvp.RSVP, g guest.Guest) (rsvp.RSVP, error) {
	if err := s.ready(ctx); err != nil {
		return rsvp.RSVP{}, err
	}
	if r.GuestID == 0 {
		r.GuestID = g.ID
	}
	err := s.inTx(ctx, "rsvp save", func(tx *sql.Tx) error {
		id, err := upsertRSVP(ctx, tx, r)
		if err != nil {
			return err
		}
		r.ID = id
		if _, err := tx.ExecContext(ctx, `DELETE FROM additional_guests WHERE rsvp_id = ?`, r.ID); err != nil {
			return fmt.Errorf("clear additional guests: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM guest_allergens WHERE rsvp_id = ?`, r.ID); err != nil {
			return fmt.Errorf("clear guest allergens: %w", err)
		}
		for i, a := range r.AdditionalGuests {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO additional_guests (rsvp_id, position, name, is_child, needs_menu) VALUES (?, ?, ?, ?, ?)
			`, r.ID, i, a.Name, a.IsChild, a.IsChild && a.NeedsMenu); err != nil {
				return fmt.Errorf("insert additional guest: %w", err)
			}
		}
		for i, a := range r.Allergens {
			var allergenID sql.NullInt64
			var custom sql.NullString
			if a.AllergenID != nil {
				allergenID = sql.NullInt64{Int64: *a.AllergenID, Valid: true}
			} else {
				custom = sql.NullString{String: a.Custom, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO guest_allergens (rsvp_id, position, guest_name, allergen_id, custom_allergen) VALUES (?, ?, ?, ?, ?)
			`, r.ID, i, a.GuestName, allergenID, custom); err != nil {
				return fmt.Errorf("insert guest allergen: %w", err)
			}
		}
		result, err := tx.ExecContext(ctx, `UPDATE guests SET plus_one_used = ? WHERE id = ?`, g.PlusOneUsed, r.GuestID)
		if err != nil {
			return fmt.Errorf("update plus one: %w", err)
		}
		return affectedOne(result)
	})
	if err != nil {
		return rsvp.RSVP{}, err
	}
	for i := range r.Allergens {
		r.Allergens[i].RSVPID = r.ID
	}
	return r, nil
}

func upsertRSVP(ctx context.Context, tx *sql.Tx, r rsvp.RSVP) (int64, error) {
	args := []any{
		r.IsAttending,
		r.IsCancelled,
		r.AdultsCount,
		r.ChildrenCount,
		r.PlusOneName,
		r.HotelName,
		r.TransportToChurch,
		r.TransportToReception,
		r.TransportToHotel,
		toMillis(r.LastUpdated),
		nullMillis(r.CancelledAt),
	}
	if r.ID != 0 {
		result, err := tx.ExecContext(ctx, `
		UPDATE rsvps SET is_attending = ?, is_cancelled = ?, adults_count = ?, children_count = ?, plus_one_name = ?,
			hotel_name = ?, transport_to_church = ?, transport_to_reception = ?, transport_to_hotel = ?,
			last_updated = ?, cancelled_at = ?
		WHERE id = ?
		`, append(args, r.ID)...)
		if err != nil {
			return 0, fmt.Errorf("update rsvp: %w", err)
		}
		return r.ID, affectedOne(result)
	}
	result, err := tx.ExecContext(ctx, `
	INSERT INTO rsvps (is_attending, is_cancelled, adults_count, children_count, plus_one_name,
		hotel_name, transport_to_church, transport_to_reception, transport_to_hotel,
		last_updated, cancelled_at, guest_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, append(args, r.GuestID, toMillis(r.CreatedAt))...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, storage.ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert rsvp: %w", err)
	}
	return result.LastInsertId()
}

func scanRSVP(scan scanner) (rsvp.RSVP, error) {
	var r rsvp.RSVP
	var createdAt, lastUpdated int64
	var cancelledAt sql.NullInt64
	if err := scan(
		&r.ID,
		&r.GuestID,
		&r.IsAttending,
		&r.IsCancelled,
		&r.AdultsCount,
		&r.ChildrenCount,
		&r.PlusOneName,
		&r.HotelName,
		&r.TransportToChurch,
		&r.TransportToReception,
		&r.TransportToHotel,
		&createdAt,
		&lastUpdated,
		&cancelledAt,
	); err != nil {
		return rsvp.RSVP{}, err
	}
	r.CreatedAt = fromMillis(createdAt)
	r.LastUpdated = fromMillis(lastUpdated)
	r.CancelledAt = fromNullMillis(cancelledAt)
	return r, nil
}

func loadAdditionalGuests(ctx context.Context, q sqlQueryer, where string, args ...any) (map[int64][]rsvp.AdditionalGuest, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT rsvp_id, name, is_child, needs_menu FROM additional_guests `+where+` ORDER BY rsvp_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list additional guests: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]rsvp.AdditionalGuest)
	for rows.Next() {
		var rsvpID int64
		var a rsvp.AdditionalGuest
		if err := rows.Scan(&rsvpID, &a.Name, &a.IsChild, &a.NeedsMenu); err != nil {
			return nil, fmt.Errorf("scan additional guest: %w", err)
		}
		out[rsvpID] = append(out[rsvpID], a)
	}
	return out, rows.Err()
}

func loadGuestAllergens(ctx context.Context, q sqlQueryer, where string, args ...any) (map[int64][]allergen.GuestAllergen, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT ga.rsvp_id, ga.guest_name, ga.allergen_id, ga.custom_allergen, COALESCE(a.name, '')
	FROM guest_allergens ga
	LEFT JOIN allergens a ON a.id = ga.allergen_id
	`+where+`
	ORDER BY ga.rsvp_id, ga.position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list guest allergens: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]allergen.GuestAllergen)
	for rows.Next() {
		var record allergen.GuestAllergen
		var allergenID sql.NullInt64
		var custom sql.NullString
		if err := rows.Scan(&record.RSVPID, &record.GuestName, &allergenID, &custom, &record.Name); err != nil {
			return nil, fmt.Errorf("scan guest allergen: %w", err)
		}
		if allergenID.Valid {
			value := allergenID.Int64
			record.AllergenID = &value
		}
		record.Custom = custom.String
		out[record.RSVPID] = append(out[record.RSVPID], record)
	}
	return out, rows.Err()
}
