package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Find(ctx context.Context, userID string) (*Cart, error) {
	row := s.db.QueryRowContext(ctx,
		`select user_id, items, updated_at from carts where user_id=$1`, userID)

	var (
		c     Cart
		items []byte
	)
	if err := row.Scan(&c.UserID, &items, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = json.Unmarshal(items, &c.Items)
	if c.Items == nil {
		c.Items = []Item{}
	}
	return &c, nil
}

func (s *PGStore) Save(ctx context.Context, c *Cart) error {
	if c.Items == nil {
		c.Items = []Item{}
	}
	c.UpdatedAt = time.Now().UTC()
	items, _ := json.Marshal(c.Items)
	_, err := s.db.ExecContext(ctx,
		`insert into carts(user_id, items, updated_at) values($1,$2,$3)
		 on conflict (user_id) do update set items=excluded.items, updated_at=excluded.updated_at`,
		c.UserID, items, c.UpdatedAt)
	return err
}
