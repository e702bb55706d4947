package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/store"
)

type noteStore struct {
	db *sql.DB
}

func (s *noteStore) Put(ctx context.Context, n store.Note) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (owner_id, name, content) VALUES (?, ?, ?)
		 ON CONFLICT (owner_id, name) DO UPDATE SET content = excluded.content`,
		n.OwnerID, n.Name, n.Content,
	)
	return err
}

func (s *noteStore) Get(ctx context.Context, ownerID int64, name string) (store.Note, error) {
	var n store.Note
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id, name, content FROM notes WHERE owner_id = ? AND name = ?`,
		ownerID, name,
	).Scan(&n.OwnerID, &n.Name, &n.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Note{}, store.ErrNotFound
	}
	return n, err
}

func (s *noteStore) Delete(ctx context.Context, ownerID int64, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE owner_id = ? AND name = ?`, ownerID, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *noteStore) List(ctx context.Context, ownerID int64) ([]store.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id, name, content FROM notes WHERE owner_id = ? ORDER BY name`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Note
	for rows.Next() {
		var n store.Note
		if err := rows.Scan(&n.OwnerID, &n.Name, &n.Content); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type warningStore struct {
	db *sql.DB
}

func (s *warningStore) Add(ctx context.Context, w store.Warning) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO warnings (id, user_id, chat_id, reason, issued_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.ChatID, w.Reason, w.IssuedBy, w.CreatedAt.Unix(),
	)
	return err
}

// RemoveOldest deletes the earliest warning for the pair. FIFO is the
// documented unwarn policy: the first strike is forgiven first.
func (s *warningStore) RemoveOldest(ctx context.Context, userID, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM warnings WHERE id = (
		   SELECT id FROM warnings WHERE user_id = ? AND chat_id = ?
		   ORDER BY created_at ASC, id ASC LIMIT 1
		 )`,
		userID, chatID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *warningStore) List(ctx context.Context, userID, chatID int64) ([]store.Warning, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, chat_id, reason, issued_by, created_at
		 FROM warnings WHERE user_id = ? AND chat_id = ?
		 ORDER BY created_at ASC, id ASC`,
		userID, chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Warning
	for rows.Next() {
		var (
			w         store.Warning
			createdAt int64
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.ChatID, &w.Reason, &w.IssuedBy, &createdAt); err != nil {
			return nil, err
		}
		w.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, w)
	}
	return out, rows.Err()
}

type settingStore struct {
	db *sql.DB
}

func (s *settingStore) Set(ctx context.Context, scopeID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (scope_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (scope_id, key) DO UPDATE SET value = excluded.value`,
		scopeID, key, value,
	)
	return err
}

func (s *settingStore) Get(ctx context.Context, scopeID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE scope_id = ? AND key = ?`, scopeID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	return value, err
}

func (s *settingStore) Delete(ctx context.Context, scopeID int64, key string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE scope_id = ? AND key = ?`, scopeID, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *settingStore) ScopesWith(ctx context.Context, key string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scope_id FROM settings WHERE key = ?`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type chatStore struct {
	db *sql.DB
}

func (s *chatStore) Touch(ctx context.Context, c store.KnownChat) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO known_chats (id, title, kind, last_seen) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   kind = excluded.kind,
		   last_seen = excluded.last_seen`,
		c.ID, c.Title, c.Kind, c.LastSeen.Unix(),
	)
	return err
}

func (s *chatStore) Groups(ctx context.Context) ([]store.KnownChat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, kind, last_seen FROM known_chats
		 WHERE kind IN ('group', 'supergroup') ORDER BY last_seen DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.KnownChat
	for rows.Next() {
		var (
			c        store.KnownChat
			lastSeen int64
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Kind, &lastSeen); err != nil {
			return nil, err
		}
		c.LastSeen = time.Unix(lastSeen, 0)
		out = append(out, c)
	}
	return out, rows.Err()
}
