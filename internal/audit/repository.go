package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

func Insert(ctx context.Context, tx pgx.Tx, actorID string, entityType string, entityID *string, action string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (actor_id, entity_type, entity_id, action, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, actorID, entityType, entityID, action, s)
	return err
}
