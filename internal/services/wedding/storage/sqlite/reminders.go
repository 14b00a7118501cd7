package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/reminder"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/storage"
)

const historyColumns = `id, guest_id, reminder_type, status, sent_to, subject, error_message, sent_by, notes, created_at, sent_at`

const batchColumns = `id, kind, reminder_type, executed_by, days_before_deadline, total, sent, failed, skipped, started_at, completed_at`

// CreateHistory records one delivery attempt.
func (s *Store) CreateHistory(ctx context.Context, h reminder.History) (reminder.History, error) {
	if err := s.ready(ctx); err != nil {
		return reminder.History{}, err
	}
	result, err := s.db.ExecContext(ctx, `
	INSERT INTO reminder_history (guest_id, reminder_type, status, sent_to, subject, error_message, sent_by, notes, created_at, sent_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.GuestID,
		string(h.Type),
		string(h.Status),
		h.SentTo,
		h.Subject,
		h.Error,
		h.SentBy,
		h.Notes,
		toMillis(h.CreatedAt),
		nullMillis(h.SentAt),
	)
	if err != nil {
		return reminder.History{}, fmt.Errorf("insert reminder history: %w", err)
	}
	h.ID, err = result.LastInsertId()
	if err != nil {
		return reminder.History{}, fmt.Errorf("reminder history id: %w", err)
	}
	return h, nil
}

// UpdateHistory stores the outcome of a delivery attempt.
func (s *Store) UpdateHistory(ctx context.Context, h reminder.History) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
	UPDATE reminder_history SET status = ?, subject = ?, error_message = ?, sent_at = ? WHERE id = ?
	`, string(h.Status), h.Subject, h.Error, nullMillis(h.SentAt), h.ID)
	if err != nil {
		return fmt.Errorf("update reminder history: %w", err)
	}
	return affectedOne(result)
}

// ListHistory returns delivery attempts newest first. A zero guestID lists
// every guest.
func (s *Store) ListHistory(ctx context.Context, guestID int64) ([]reminder.History, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + historyColumns + ` FROM reminder_history`
	var args []any
	if guestID != 0 {
		query += ` WHERE guest_id = ?`
		args = append(args, guestID)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminder history: %w", err)
	}
	defer rows.Close()

	var out []reminder.History
	for rows.Next() {
		h, err := scanHistory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan reminder history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// SentTypes returns the guests that already received t.
func (s *Store) SentTypes(ctx context.Context, t reminder.Type) (map[int64]bool, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT guest_id FROM reminder_history WHERE reminder_type = ? AND status = ?
	`, string(t), string(reminder.StatusSent))
	if err != nil {
		return nil, fmt.Errorf("list sent reminders: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var guestID int64
		if err := rows.Scan(&guestID); err != nil {
			return nil, fmt.Errorf("scan sent reminder: %w", err)
		}
		out[guestID] = true
	}
	return out, rows.Err()
}

// GetPreference loads the reminder preference of a guest.
func (s *Store) GetPreference(ctx context.Context, guestID int64) (reminder.Preference, error) {
	if err := s.ready(ctx); err != nil {
		return reminder.Preference{}, err
	}
	row := s.db.QueryRowContext(ctx, `
	SELECT guest_id, opt_out, max_reminders, total_sent, last_sent_at FROM reminder_preferences WHERE guest_id = ?
	`, guestID)
	p, err := scanPreference(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return reminder.DefaultPreference(guestID), nil
	}
	if err != nil {
		return reminder.Preference{}, fmt.Errorf("get reminder preference: %w", err)
	}
	return p, nil
}

// ListPreferences returns the stored preferences keyed by guest.
func (s *Store) ListPreferences(ctx context.Context) (map[int64]reminder.Preference, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT guest_id, opt_out, max_reminders, total_sent, last_sent_at FROM reminder_preferences
	`)
	if err != nil {
		return nil, fmt.Errorf("list reminder preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]reminder.Preference)
	for rows.Next() {
		p, err := scanPreference(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan reminder preference: %w", err)
		}
		out[p.GuestID] = p
	}
	return out, rows.Err()
}

// SavePreference upserts a guest preference.
func (s *Store) SavePreference(ctx context.Context, p reminder.Preference) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO reminder_preferences (guest_id, opt_out, max_reminders, total_sent, last_sent_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(guest_id) DO UPDATE SET
		opt_out = excluded.opt_out,
		max_reminders = excluded.max_reminders,
		total_sent = excluded.total_sent,
		last_sent_at = excluded.last_sent_at
	`, p.GuestID, p.OptOut, p.MaxReminders, p.TotalSent, nullMillis(p.LastSentAt))
	if err != nil {
		return fmt.Errorf("save reminder preference: %w", err)
	}
	return nil
}

// CreateBatch records the start of a batch.
func (s *Store) CreateBatch(ctx context.Context, b reminder.Batch) (reminder.Batch, error) {
	if err := s.ready(ctx); err != nil {
		return reminder.Batch{}, err
	}
	result, err := s.db.ExecContext(ctx, `
	INSERT INTO reminder_batches (kind, reminder_type, executed_by, days_before_deadline, total, sent, failed, skipped, started_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(b.Kind),
		string(b.Type),
		b.ExecutedBy,
		b.DaysBefore,
		b.Total,
		b.Sent,
		b.Failed,
		b.Skipped,
		toMillis(b.StartedAt),
		nullMillis(b.CompletedAt),
	)
	if err != nil {
		return reminder.Batch{}, fmt.Errorf("insert reminder batch: %w", err)
	}
	b.ID, err = result.LastInsertId()
	if err != nil {
		return reminder.Batch{}, fmt.Errorf("reminder batch id: %w", err)
	}
	return b, nil
}

// UpdateBatch stores batch totals and completion.
func (s *Store) UpdateBatch(ctx context.Context, b reminder.Batch) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
	UPDATE reminder_batches SET total = ?, sent = ?, failed = ?, skipped = ?, completed_at = ? WHERE id = ?
	`, b.Total, b.Sent, b.Failed, b.Skipped, nullMillis(b.CompletedAt), b.ID)
	if err != nil {
		return fmt.Errorf("update reminder batch: %w", err)
	}
	return affectedOne(result)
}

// ListBatches returns the most recent batches first.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]reminder.Batch, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+batchColumns+` FROM reminder_batches ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reminder batches: %w", err)
	}
	defer rows.Close()

	var out []reminder.Batch
	for rows.Next() {
		b, err := scanBatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan reminder batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountReminders aggregates history by status and type.
func (s *Store) CountReminders(ctx context.Context) (storage.ReminderCounts, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ReminderCounts{}, err
	}
	counts := storage.ReminderCounts{ByType: make(map[reminder.Type]int)}
	for _, t := range reminder.Scheduled {
		counts.ByType[t] = 0
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT reminder_type, status, COUNT(*) FROM reminder_history GROUP BY reminder_type, status
	`)
	if err != nil {
		return storage.ReminderCounts{}, fmt.Errorf("count reminders: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t, status string
		var n int
		if err := rows.Scan(&t, &status, &n); err != nil {
			return storage.ReminderCounts{}, fmt.Errorf("scan reminder count: %w", err)
		}
		switch reminder.Status(status) {
		case reminder.StatusSent:
			counts.Sent += n
			counts.ByType[reminder.Type(t)] += n
		case reminder.StatusFailed:
			counts.Failed += n
		case reminder.StatusPending:
			counts.Pending += n
		}
	}
	if err := rows.Err(); err != nil {
		return storage.ReminderCounts{}, err
	}
	if err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM reminder_preferences WHERE opt_out = 1
	`).Scan(&counts.OptedOut); err != nil {
		return storage.ReminderCounts{}, fmt.Errorf("count opted out: %w", err)
	}
	return counts, nil
}

func scanHistory(scan scanner) (reminder.History, error) {
	var h reminder.History
	var t, status string
	var createdAt int64
	var sentAt sql.NullInt64
	if err := scan(
		&h.ID,
		&h.GuestID,
		&t,
		&status,
		&h.SentTo,
		&h.Subject,
		&h.Error,
		&h.SentBy,
		&h.Notes,
		&createdAt,
		&sentAt,
	); err != nil {
		return reminder.History{}, err
	}
	h.Type = reminder.Type(t)
	h.Status = reminder.Status(status)
	h.CreatedAt = fromMillis(createdAt)
	h.SentAt = fromNullMillis(sentAt)
	return h, nil
}

func scanBatch(scan scanner) (reminder.Batch, error) {
	var b reminder.Batch
	var kind, t string
	var startedAt int64
	var completedAt sql.NullInt64
	if err := scan(
		&b.ID,
		&kind,
		&t,
		&b.ExecutedBy,
		&b.DaysBefore,
		&b.Total,
		&b.Sent,
		&b.Failed,
		&b.Skipped,
		&startedAt,
		&completedAt,
	); err != nil {
		return reminder.Batch{}, err
	}
	b.Kind = reminder.BatchKind(kind)
	b.Type = reminder.Type(t)
	b.StartedAt = fromMillis(startedAt)
	b.CompletedAt = fromNullMillis(completedAt)
	return b, nil
}

func scanPreference(scan scanner) (reminder.Preference, error) {
	var p reminder.Preference
	var lastSentAt sql.NullInt64
	if err := scan(&p.GuestID, &p.OptOut, &p.MaxReminders, &p.TotalSent, &lastSentAt); err != nil {
		return reminder.Preference{}, err
	}
	p.LastSentAt = fromNullMillis(lastSentAt)
	return p, nil
}
