package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nextlevelbuilder/selfgo/internal/store"
)

type afkStore struct {
	db *sql.DB
}

func (s *afkStore) Get(ctx context.Context, ownerID int64) (store.AFKState, error) {
	var (
		st        store.AFKState
		active    int
		startedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id, active, reason, started_at FROM afk_state WHERE owner_id = ?`,
		ownerID,
	).Scan(&st.OwnerID, &active, &st.Reason, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.AFKState{}, store.ErrNotFound
	}
	if err != nil {
		return store.AFKState{}, err
	}
	st.Active = active != 0
	if startedAt > 0 {
		st.StartedAt = time.Unix(startedAt, 0)
	}
	return st, nil
}

func (s *afkStore) Put(ctx context.Context, st store.AFKState) error {
	active := 0
	if st.Active {
		active = 1
	}
	var startedAt int64
	if !st.StartedAt.IsZero() {
		startedAt = st.StartedAt.Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO afk_state (owner_id, active, reason, started_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id) DO UPDATE SET
		   active = excluded.active,
		   reason = excluded.reason,
		   started_at = excluded.started_at`,
		st.OwnerID, active, st.Reason, startedAt,
	)
	return err
}
