package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores products as jsonb documents with the columns the queries
// need (product_code, status, is_active) extracted alongside.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Product, error) {
	const q = `
SELECT doc, created_at, updated_at
FROM products
WHERE product_code = $1
`
	var doc []byte
	p := &Product{}
	if err := r.db.QueryRow(ctx, q, code).Scan(&doc, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	created, updated := p.CreatedAt, p.UpdatedAt
	if err := json.Unmarshal(doc, p); err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt = created, updated
	return p, nil
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	q := `
SELECT doc, created_at, updated_at
FROM products
ORDER BY product_code
`
	if activeOnly {
		q = `
SELECT doc, created_at, updated_at
FROM products
WHERE is_active
ORDER BY product_code
`
	}
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListActivePage pages active products by product_code for the reprice
// sweep; keyset pagination avoids a long-lived cursor across batches.
func (r *Repository) ListActivePage(ctx context.Context, afterCode string, limit int) ([]Product, error) {
	const q = `
SELECT doc, created_at, updated_at
FROM products
WHERE is_active AND product_code > $1
ORDER BY product_code
LIMIT $2
`
	rows, err := r.db.Query(ctx, q, afterCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		var doc []byte
		var p Product
		if err := rows.Scan(&doc, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		created, updated := p.CreatedAt, p.UpdatedAt
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, err
		}
		p.CreatedAt, p.UpdatedAt = created, updated
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePricing writes back a recomputed breakdown (and price range for
// configurator products) without touching the rest of the document.
func UpdatePricing(ctx context.Context, tx pgx.Tx, code string, breakdown PriceBreakdown, priceRange *PriceRange) error {
	bd, err := json.Marshal(breakdown)
	if err != nil {
		return err
	}

	if priceRange != nil {
		pr, err := json.Marshal(priceRange)
		if err != nil {
			return err
		}
		const q = `
UPDATE products
SET doc = jsonb_set(jsonb_set(doc, '{pricing,breakdown}', $2::jsonb, true), '{priceRange}', $3::jsonb, true),
    updated_at = NOW()
WHERE product_code = $1
`
		_, err = tx.Exec(ctx, q, code, bd, pr)
		return err
	}

	const q = `
UPDATE products
SET doc = jsonb_set(doc, '{pricing,breakdown}', $2::jsonb, true) - 'priceRange',
    updated_at = NOW()
WHERE product_code = $1
`
	_, err = tx.Exec(ctx, q, code, bd)
	return err
}

// The methods below implement the approval gate's entity store for
// entityType "product". Entity ids are product codes.

func (r *Repository) Get(ctx context.Context, tx pgx.Tx, code string) (json.RawMessage, error) {
	const q = `SELECT doc FROM products WHERE product_code = $1 FOR UPDATE`
	var doc []byte
	if err := tx.QueryRow(ctx, q, code).Scan(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Repository) Create(ctx context.Context, tx pgx.Tx, doc json.RawMessage) (string, error) {
	p, normalized, err := normalizeDoc(doc)
	if err != nil {
		return "", err
	}
	if p.ProductCode == "" {
		return "", fmt.Errorf("missing productCode")
	}
	const q = `
INSERT INTO products (product_code, status, is_active, doc)
VALUES ($1, $2, $3, $4)
`
	if _, err := tx.Exec(ctx, q, p.ProductCode, p.Status, p.IsActive, normalized); err != nil {
		return "", err
	}
	return p.ProductCode, nil
}

func (r *Repository) Replace(ctx context.Context, tx pgx.Tx, code string, doc json.RawMessage) error {
	p, normalized, err := normalizeDoc(doc)
	if err != nil {
		return err
	}
	const q = `
UPDATE products
SET status = $2, is_active = $3, doc = $4, updated_at = NOW()
WHERE product_code = $1
`
	ct, err := tx.Exec(ctx, q, code, p.Status, p.IsActive, normalized)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) SetActive(ctx context.Context, tx pgx.Tx, code string, active bool) error {
	status := StatusArchived
	if active {
		status = StatusActive
	}
	const q = `
UPDATE products
SET status = $2,
    is_active = $3,
    doc = jsonb_set(jsonb_set(doc, '{status}', to_jsonb($2::text), true), '{isActive}', to_jsonb($3::bool), true),
    updated_at = NOW()
WHERE product_code = $1
`
	ct, err := tx.Exec(ctx, q, code, status, active)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tx pgx.Tx, code string) error {
	const q = `DELETE FROM products WHERE product_code = $1`
	ct, err := tx.Exec(ctx, q, code)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) DisplayName(doc json.RawMessage) string {
	var p struct {
		Name        string `json:"name"`
		ProductCode string `json:"productCode"`
	}
	if err := json.Unmarshal(doc, &p); err != nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	return p.ProductCode
}

// normalizeDoc re-derives isActive from status and re-marshals so the stored
// document always agrees with the extracted columns.
func normalizeDoc(doc json.RawMessage) (*Product, []byte, error) {
	p := &Product{}
	if err := json.Unmarshal(doc, p); err != nil {
		return nil, nil, fmt.Errorf("invalid product document: %w", err)
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.DeriveActive()
	normalized, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	return p, normalized, nil
}
