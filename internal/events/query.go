package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         int64           `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	EventType  string          `json:"eventType"`
	Summary    string          `json:"summary"`
	Actor      string          `json:"actor"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data,omitempty"`
}

func ListByEntity(ctx context.Context, db *pgxpool.Pool, entityType, entityID string) ([]Event, error) {
	const q = `
SELECT id, entity_type, entity_id, event_type, summary, actor, occurred_at, data
FROM entity_events
WHERE entity_type = $1 AND entity_id = $2
ORDER BY occurred_at DESC
LIMIT 200
`
	rows, err := db.Query(ctx, q, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.EventType, &e.Summary, &e.Actor, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
