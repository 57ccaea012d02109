package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"supernova.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, username, email, full_name, role, addresses, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	fullName, _ := json.Marshal(u.FullName)
	addresses, _ := json.Marshal(u.Addresses)
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, username, email, password_hash, full_name, role, addresses, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Username, u.Email, u.PasswordHash, fullName, u.Role, addresses, now, now,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where username=$1 or email=$2`, username, email)
	return scanUser(row)
}

func (s *PGStore) FindForLogin(ctx context.Context, username, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+`, password_hash from users where username=$1 or email=$2`,
		username, email)

	var (
		u         User
		fullName  []byte
		addresses []byte
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &fullName, &u.Role, &addresses,
		&u.CreatedAt, &u.UpdatedAt, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = json.Unmarshal(fullName, &u.FullName)
	_ = json.Unmarshal(addresses, &u.Addresses)
	return &u, nil
}

func (s *PGStore) UpdateAddresses(ctx context.Context, userID string, addrs []Address) error {
	if addrs == nil {
		addrs = []Address{}
	}
	encoded, _ := json.Marshal(addrs)
	res, err := s.db.ExecContext(ctx,
		`update users set addresses=$1, updated_at=$2 where id=$3`,
		encoded, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u         User
		fullName  []byte
		addresses []byte
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &fullName, &u.Role, &addresses,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = json.Unmarshal(fullName, &u.FullName)
	_ = json.Unmarshal(addresses, &u.Addresses)
	return &u, nil
}

// 23505 is the postgres unique_violation code; the handler pre-checks for
// duplicates but the constraint closes the race.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
