package rates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

type Snapshot struct {
	Table       Table     `json:"rates"`
	PublishedBy string    `json:"publishedBy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Current returns the live snapshot. A missing row yields an empty table so
// pricing degrades to zero rates instead of failing.
func (r *Repository) Current(ctx context.Context) (*Snapshot, error) {
	const q = `
SELECT doc, COALESCE(published_by,''), updated_at
FROM current_rates
WHERE id = 1
`
	var doc []byte
	s := &Snapshot{}
	if err := r.db.QueryRow(ctx, q).Scan(&doc, &s.PublishedBy, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return &Snapshot{UpdatedAt: time.Time{}}, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(doc, &s.Table); err != nil {
		return nil, err
	}
	return s, nil
}

// Publish archives the current snapshot into rate_history and replaces it
// with the new table, all inside the caller's transaction. The history row
// records the moment of replacement.
func Publish(ctx context.Context, tx pgx.Tx, next Table, publishedBy string) error {
	const qArchive = `
INSERT INTO rate_history (doc, published_by, replaced_at)
SELECT doc, published_by, NOW()
FROM current_rates
WHERE id = 1
`
	if _, err := tx.Exec(ctx, qArchive); err != nil {
		return err
	}

	doc, err := json.Marshal(next)
	if err != nil {
		return err
	}
	const qUpsert = `
INSERT INTO current_rates (id, doc, published_by, updated_at)
VALUES (1, $1, $2, NOW())
ON CONFLICT (id) DO UPDATE SET
  doc = EXCLUDED.doc,
  published_by = EXCLUDED.published_by,
  updated_at = NOW()
`
	_, err = tx.Exec(ctx, qUpsert, doc, publishedBy)
	return err
}
