package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/store"
)

type reminderStore struct {
	db *sql.DB
}

func (s *reminderStore) Create(ctx context.Context, r store.Reminder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, owner_id, chat_id, message_id, due_at, text, delivered)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		r.ID, r.OwnerID, r.ChatID, r.MessageID, r.DueAt.Unix(), r.Text,
	)
	return err
}

func (s *reminderStore) Due(ctx context.Context, now time.Time) ([]store.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, chat_id, message_id, due_at, text
		 FROM reminders WHERE delivered = 0 AND due_at <= ?
		 ORDER BY due_at`,
		now.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Reminder
	for rows.Next() {
		var (
			r     store.Reminder
			dueAt int64
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.ChatID, &r.MessageID, &dueAt, &r.Text); err != nil {
			return nil, err
		}
		r.DueAt = time.Unix(dueAt, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkDelivered is the exactly-once guard: the WHERE delivered = 0 clause
// makes the flip atomic, so only one caller ever observes affected == 1.
func (s *reminderStore) MarkDelivered(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET delivered = 1 WHERE id = ? AND delivered = 0`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

type scheduleStore struct {
	db *sql.DB
}

func (s *scheduleStore) Create(ctx context.Context, m store.ScheduledMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_messages (id, chat_id, due_at, text, cron_expr, delivered)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		m.ID, m.ChatID, m.DueAt.Unix(), m.Text, m.CronExpr,
	)
	return err
}

func (s *scheduleStore) Due(ctx context.Context, now time.Time) ([]store.ScheduledMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, due_at, text, cron_expr
		 FROM scheduled_messages WHERE delivered = 0 AND due_at <= ?
		 ORDER BY due_at`,
		now.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ScheduledMessage
	for rows.Next() {
		var (
			m     store.ScheduledMessage
			dueAt int64
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &dueAt, &m.Text, &m.CronExpr); err != nil {
			return nil, err
		}
		m.DueAt = time.Unix(dueAt, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *scheduleStore) MarkDelivered(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_messages SET delivered = 1 WHERE id = ? AND delivered = 0`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *scheduleStore) Rearm(ctx context.Context, id string, next time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_messages SET due_at = ? WHERE id = ? AND delivered = 0`,
		next.Unix(), id)
	return err
}
