package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

const guestColumns = `id, name, phone, email, token, language, has_plus_one, plus_one_used, is_family, created_at`

// CreateGuest inserts one guest and returns it with its id.
func (s *Store) CreateGuest(ctx context.Context, g guest.Guest) (guest.Guest, error) {
	if err := s.ready(ctx); err != nil {
		return guest.Guest{}, err
	}
	return insertGuest(ctx, s.db, g)
}

// CreateGuests inserts every guest in one transaction.
func (s *Store) CreateGuests(ctx context.Context, guests []guest.Guest) ([]guest.Guest, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	created := make([]guest.Guest, 0, len(guests))
	err := s.inTx(ctx, "guest import", func(tx *sql.Tx) error {
		for _, g := range guests {
			stored, err := insertGuest(ctx, tx, g)
			if err != nil {
				return err
			}
			created = append(created, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertGuest(ctx context.Context, execer sqlExecer, g guest.Guest) (guest.Guest, error) {
	result, err := execer.ExecContext(ctx, `
	INSERT INTO guests (name, phone, email, token, language, has_plus_one, plus_one_used, is_family, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.Name,
		g.Phone,
		g.Email,
		g.Token,
		string(g.Language),
		g.HasPlusOne,
		g.PlusOneUsed,
		g.IsFamily,
		toMillis(g.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return guest.Guest{}, storage.ErrAlreadyExists
		}
		return guest.Guest{}, fmt.Errorf("insert guest: %w", err)
	}
	g.ID, err = result.LastInsertId()
	if err != nil {
		return guest.Guest{}, fmt.Errorf("guest id: %w", err)
	}
	g.CreatedAt = fromMillis(toMillis(g.CreatedAt))
	return g, nil
}

// UpdateGuest replaces the editable fields of a guest. The token never
// changes.
func (s *Store) UpdateGuest(ctx context.Context, g guest.Guest) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
	UPDATE guests SET name = ?, phone = ?, email = ?, language = ?, has_plus_one = ?, plus_one_used = ?, is_family = ?
	WHERE id = ?
	`,
		g.Name,
		g.Phone,
		g.Email,
		string(g.Language),
		g.HasPlusOne,
		g.PlusOneUsed,
		g.IsFamily,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	return affectedOne(result)
}

// DeleteGuest removes a guest. Replies, allergens and reminder rows go
// with it through cascades.
func (s *Store) DeleteGuest(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	return affectedOne(result)
}

// GetGuest loads a guest by id.
func (s *Store) GetGuest(ctx context.Context, id int64) (guest.Guest, error) {
	if err := s.ready(ctx); err != nil {
		return guest.Guest{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = ?`, id)
	g, err := scanGuest(row.Scan)
	if err != nil {
		return guest.Guest{}, notFound(err)
	}
	return g, nil
}

// GetGuestByToken loads the guest owning an RSVP link.
func (s *Store) GetGuestByToken(ctx context.Context, token string) (guest.Guest, error) {
	if err := s.ready(ctx); err != nil {
		return guest.Guest{}, err
	}
	if token == "" {
		return guest.Guest{}, storage.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE token = ?`, token)
	g, err := scanGuest(row.Scan)
	if err != nil {
		return guest.Guest{}, notFound(err)
	}
	return g, nil
}

// ListGuests returns every guest ordered by name.
func (s *Store) ListGuests(ctx context.Context) ([]guest.Guest, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+guestColumns+` FROM guests ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	var out []guest.Guest
	for rows.Next() {
		g, err := scanGuest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan guest row: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guest rows: %w", err)
	}
	return out, nil
}

func scanGuest(scan scanner) (guest.Guest, error) {
	var g guest.Guest
	var language string
	var createdAt int64
	if err := scan(
		&g.ID,
		&g.Name,
		&g.Phone,
		&g.Email,
		&g.Token,
		&language,
		&g.HasPlusOne,
		&g.PlusOneUsed,
		&g.IsFamily,
		&createdAt,
	); err != nil {
		return guest.Guest{}, err
	}
	g.Language = guest.ParseLanguage(language)
	g.CreatedAt = fromMillis(createdAt)
	return g, nil
}
