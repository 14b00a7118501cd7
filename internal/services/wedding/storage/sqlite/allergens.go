package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/allergen"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

// ListAllergens returns the selectable allergens in insertion order.
func (s *Store) ListAllergens(ctx context.Context) ([]allergen.Allergen, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM allergens ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list allergens: %w", err)
	}
	defer rows.Close()

	var out []allergen.Allergen
	for rows.Next() {
		var a allergen.Allergen
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan allergen: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allergens: %w", err)
	}
	return out, nil
}

// CreateAllergen adds one allergen by name.
func (s *Store) CreateAllergen(ctx context.Context, name string) (allergen.Allergen, error) {
	if err := s.ready(ctx); err != nil {
		return allergen.Allergen{}, err
	}
	result, err := s.db.ExecContext(ctx, `INSERT INTO allergens (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueConstraintError(err) {
			return allergen.Allergen{}, storage.ErrAlreadyExists
		}
		return allergen.Allergen{}, fmt.Errorf("insert allergen: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return allergen.Allergen{}, fmt.Errorf("allergen id: %w", err)
	}
	return allergen.Allergen{ID: id, Name: name}, nil
}

// SeedAllergens inserts the missing names in order.
func (s *Store) SeedAllergens(ctx context.Context, names []string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	added := 0
	err := s.inTx(ctx, "allergen seed", func(tx *sql.Tx) error {
		for _, name := range names {
			result, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO allergens (name) VALUES (?)`, name)
			if err != nil {
				return fmt.Errorf("seed allergen %q: %w", name, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return err
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
