package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
)

func Insert(ctx context.Context, tx pgx.Tx, entityType, entityID, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, _ := json.Marshal(data)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO entity_events (entity_type, entity_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS jsonb))
`
	_, err := tx.Exec(ctx, q, entityType, entityID, eventType, summary, actor, occurredAt, s)
	return err
}
