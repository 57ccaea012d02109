package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

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

const productColumns = `id, seller_id, title, description, price_amount, price_currency, images, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = ids.New()
	}
	if p.Price.Currency == "" {
		p.Price.Currency = DefaultCurrency
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	images, _ := json.Marshal(p.Images)
	_, err := s.db.ExecContext(ctx,
		`insert into products(id, seller_id, title, description, price_amount, price_currency, images, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.SellerID, p.Title, p.Description, p.Price.Amount, p.Price.Currency, images, now, now,
	)
	return err
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+productColumns+` from products where id=$1`, id)
	return scanProduct(row)
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]*Product, int, error) {
	var (
		conds []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf(`(title ilike $%d or description ilike $%d)`, len(args), len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		conds = append(conds, fmt.Sprintf(`price_amount >= $%d`, len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		conds = append(conds, fmt.Sprintf(`price_amount <= $%d`, len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " where " + strings.Join(conds, " and ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit)
	limitPos := len(args)
	args = append(args, f.Skip)
	offsetPos := len(args)

	rows, err := s.db.QueryContext(ctx,
		`select `+productColumns+` from products`+where+
			fmt.Sprintf(` order by created_at desc limit $%d offset $%d`, limitPos, offsetPos),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *PGStore) ListBySeller(ctx context.Context, sellerID string, skip, limit int) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+productColumns+` from products where seller_id=$1 order by created_at desc limit $2 offset $3`,
		sellerID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *PGStore) Update(ctx context.Context, p *Product) error {
	res, err := s.db.ExecContext(ctx,
		`update products set title=$1, description=$2, price_amount=$3, price_currency=$4, updated_at=$5 where id=$6`,
		p.Title, p.Description, p.Price.Amount, p.Price.Currency, time.Now().UTC(), p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from products where id=$1`, id)
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

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p      Product
		images []byte
	)
	err := row.Scan(&p.ID, &p.SellerID, &p.Title, &p.Description,
		&p.Price.Amount, &p.Price.Currency, &images, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = json.Unmarshal(images, &p.Images)
	if p.Images == nil {
		p.Images = []Image{}
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if products == nil {
		products = []*Product{}
	}
	return products, rows.Err()
}
