package approval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EntityStore is what the gate needs from an entity's persistence layer.
// Implementations work on opaque documents so the gate stays agnostic of
// entity schemas.
type EntityStore interface {
	Get(ctx context.Context, tx pgx.Tx, id string) (json.RawMessage, error)
	Create(ctx context.Context, tx pgx.Tx, doc json.RawMessage) (string, error)
	Replace(ctx context.Context, tx pgx.Tx, id string, doc json.RawMessage) error
	SetActive(ctx context.Context, tx pgx.Tx, id string, active bool) error
	Delete(ctx context.Context, tx pgx.Tx, id string) error
	DisplayName(doc json.RawMessage) string
}

// applyChange mutates the live entity for one approved (or directly
// applied) change. Returns the entity id, which for create is only known
// after the insert.
func applyChange(ctx context.Context, tx pgx.Tx, store EntityStore, action ActionType, entityID string, proposed json.RawMessage) (string, error) {
	switch action {
	case ActionCreate:
		return store.Create(ctx, tx, proposed)
	case ActionUpdate:
		current, err := store.Get(ctx, tx, entityID)
		if err != nil {
			return "", err
		}
		merged, err := MergeShallow(current, proposed)
		if err != nil {
			return "", err
		}
		return entityID, store.Replace(ctx, tx, entityID, merged)
	case ActionArchive:
		return entityID, store.SetActive(ctx, tx, entityID, false)
	case ActionRestore:
		return entityID, store.SetActive(ctx, tx, entityID, true)
	case ActionDelete:
		return entityID, store.Delete(ctx, tx, entityID)
	default:
		return "", fmt.Errorf("unknown action type: %s", action)
	}
}

// MergeShallow overlays the top-level keys of overlay onto base. Proposed
// changes are captured at the same top-level granularity the admin edit
// forms submit, so a deep merge would only obscure what the reviewer
// approved.
func MergeShallow(base, overlay json.RawMessage) (json.RawMessage, error) {
	var b, o map[string]json.RawMessage
	if err := json.Unmarshal(base, &b); err != nil {
		return nil, fmt.Errorf("invalid base document: %w", err)
	}
	if err := json.Unmarshal(overlay, &o); err != nil {
		return nil, fmt.Errorf("invalid proposed changes: %w", err)
	}
	for k, v := range o {
		b[k] = v
	}
	return json.Marshal(b)
}
