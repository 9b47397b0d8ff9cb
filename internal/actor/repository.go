package actor

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Actor, error) {
	const q = `
SELECT id, email, COALESCE(name,''), role, COALESCE(permissions,'[]'), is_active, skip_approval, created_at
FROM actors
WHERE id = $1
`
	return r.scanOne(ctx, q, id)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*Actor, error) {
	const q = `
SELECT id, email, COALESCE(name,''), role, COALESCE(permissions,'[]'), is_active, skip_approval, created_at
FROM actors
WHERE email = $1
`
	return r.scanOne(ctx, q, email)
}

func (r *Repository) Upsert(ctx context.Context, email, name string, role Role, skipApproval bool) (*Actor, error) {
	const q = `
INSERT INTO actors (email, name, role, skip_approval, is_active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (email) DO UPDATE SET
  name = EXCLUDED.name,
  role = EXCLUDED.role,
  skip_approval = EXCLUDED.skip_approval,
  is_active = TRUE
RETURNING id, email, COALESCE(name,''), role, COALESCE(permissions,'[]'), is_active, skip_approval, created_at
`
	return r.scanOne(ctx, q, email, name, string(role), skipApproval)
}

func (r *Repository) scanOne(ctx context.Context, q string, args ...any) (*Actor, error) {
	a := &Actor{}
	var perms []byte
	if err := r.db.QueryRow(ctx, q, args...).Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &perms, &a.IsActive, &a.SkipApproval, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &a.Permissions); err != nil {
		a.Permissions = nil
	}
	return a, nil
}
