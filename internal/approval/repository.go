package approval

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const pendingColumns = `
id, entity_type, action_type, entity_id, COALESCE(entity_name,''),
proposed_changes, previous_state, status, submitted_by, submitted_at,
reviewed_by, reviewed_at, review_note
`

func Insert(ctx context.Context, tx pgx.Tx, p *Pending) (string, error) {
	id := uuid.NewString()
	const q = `
INSERT INTO pending_approvals
  (id, entity_type, action_type, entity_id, entity_name, proposed_changes, previous_state, status, submitted_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
`
	var prev any
	if p.PreviousState != nil {
		prev = []byte(p.PreviousState)
	}
	_, err := tx.Exec(ctx, q,
		id, p.EntityType, string(p.ActionType), p.EntityID, p.EntityName,
		[]byte(p.ProposedChanges), prev, p.SubmittedBy,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Pending, error) {
	q := `SELECT ` + pendingColumns + ` FROM pending_approvals WHERE id = $1`
	return scanPending(r.db.QueryRow(ctx, q, id))
}

// GetForUpdate locks the record for the duration of the review transaction
// so two concurrent reviews serialize; the loser then fails the
// terminal-state check.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Pending, error) {
	q := `SELECT ` + pendingColumns + ` FROM pending_approvals WHERE id = $1 FOR UPDATE`
	return scanPending(tx.QueryRow(ctx, q, id))
}

func (r *Repository) List(ctx context.Context, status Status) ([]Pending, error) {
	q := `SELECT ` + pendingColumns + ` FROM pending_approvals WHERE status = $1 ORDER BY submitted_at DESC LIMIT 200`
	rows, err := r.db.Query(ctx, q, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pending
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func MarkReviewed(ctx context.Context, tx pgx.Tx, id string, status Status, reviewedBy string, note string, reviewedAt time.Time) error {
	const q = `
UPDATE pending_approvals
SET status = $2, reviewed_by = $3, review_note = NULLIF($4,''), reviewed_at = $5
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(status), reviewedBy, note, reviewedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPending(row rowScanner) (*Pending, error) {
	p := &Pending{}
	var proposed, prev []byte
	var action, status string
	if err := row.Scan(
		&p.ID, &p.EntityType, &action, &p.EntityID, &p.EntityName,
		&proposed, &prev, &status, &p.SubmittedBy, &p.SubmittedAt,
		&p.ReviewedBy, &p.ReviewedAt, &p.ReviewNote,
	); err != nil {
		return nil, err
	}
	p.ActionType = ActionType(action)
	p.Status = Status(status)
	p.ProposedChanges = json.RawMessage(proposed)
	if prev != nil {
		p.PreviousState = json.RawMessage(prev)
	}
	return p, nil
}
