package approval

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/actor"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/audit"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/events"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/db"
)

var (
	ErrAlreadyReviewed   = errors.New("pending change already reviewed")
	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrNotFound          = errors.New("entity not found")
)

// pendingStore is the slice of pending-record persistence the gate's
// transaction bodies touch, carved out so those bodies can run against an
// in-memory implementation.
type pendingStore interface {
	Insert(ctx context.Context, tx pgx.Tx, p *Pending) (string, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Pending, error)
	MarkReviewed(ctx context.Context, tx pgx.Tx, id string, status Status, reviewedBy, note string, reviewedAt time.Time) error
}

// sqlPendings routes pendingStore through the SQL repository helpers.
type sqlPendings struct{}

func (sqlPendings) Insert(ctx context.Context, tx pgx.Tx, p *Pending) (string, error) {
	return Insert(ctx, tx, p)
}

func (sqlPendings) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Pending, error) {
	return GetForUpdate(ctx, tx, id)
}

func (sqlPendings) MarkReviewed(ctx context.Context, tx pgx.Tx, id string, status Status, reviewedBy, note string, reviewedAt time.Time) error {
	return MarkReviewed(ctx, tx, id, status, reviewedBy, note, reviewedAt)
}

// trailWriter records the audit row and timeline event for a gate outcome.
// Both writes are best-effort and never fail the mutation.
type trailWriter interface {
	Audit(ctx context.Context, tx pgx.Tx, actorID, entityType string, entityID *string, action string, meta map[string]any)
	Event(ctx context.Context, tx pgx.Tx, entityType, entityID, eventType, summary, actorID string, at time.Time, data map[string]any)
}

type sqlTrail struct{}

func (sqlTrail) Audit(ctx context.Context, tx pgx.Tx, actorID, entityType string, entityID *string, action string, meta map[string]any) {
	_ = audit.Insert(ctx, tx, actorID, entityType, entityID, action, meta)
}

func (sqlTrail) Event(ctx context.Context, tx pgx.Tx, entityType, entityID, eventType, summary, actorID string, at time.Time, data map[string]any) {
	_ = events.Insert(ctx, tx, entityType, entityID, eventType, summary, actorID, at, data)
}

// Gate decides whether a catalog mutation takes effect immediately or is
// held for review, and owns the pending record's lifecycle.
type Gate struct {
	DB     *pgxpool.Pool
	Stores map[string]EntityStore

	// OnApplied runs inside the applying transaction after a change lands on
	// the live entity. The catalog wires pricing recomputation here.
	OnApplied func(ctx context.Context, tx pgx.Tx, entityType, entityID string) error

	// Substituted by tests; nil means the SQL-backed defaults.
	pendings pendingStore
	trail    trailWriter
}

func (g *Gate) pendingRecords() pendingStore {
	if g.pendings != nil {
		return g.pendings
	}
	return sqlPendings{}
}

func (g *Gate) auditTrail() trailWriter {
	if g.trail != nil {
		return g.trail
	}
	return sqlTrail{}
}

type SubmitResult struct {
	Applied   bool   `json:"applied"`
	PendingID string `json:"pendingId,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
}

// Submit runs one proposed mutation through the gate. When the actor needs
// approval the live entity is untouched: only a pending record (with the
// full prior snapshot) is written.
func (g *Gate) Submit(ctx context.Context, a *actor.Actor, entityType string, action ActionType, entityID string, proposed json.RawMessage) (*SubmitResult, error) {
	store, ok := g.Stores[entityType]
	if !ok {
		return nil, ErrUnknownEntityType
	}

	res := &SubmitResult{EntityID: entityID}
	err := db.WithTx(ctx, g.DB, func(tx pgx.Tx) error {
		return g.submitTx(ctx, tx, store, a, entityType, action, entityID, proposed, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// submitTx is the Submit transaction body.
func (g *Gate) submitTx(ctx context.Context, tx pgx.Tx, store EntityStore, a *actor.Actor, entityType string, action ActionType, entityID string, proposed json.RawMessage, res *SubmitResult) error {
	var previous json.RawMessage
	if action != ActionCreate {
		doc, err := store.Get(ctx, tx, entityID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		previous = doc
	}

	if RequiresApproval(a) {
		name := store.DisplayName(proposed)
		if name == "" && previous != nil {
			name = store.DisplayName(previous)
		}
		p := &Pending{
			EntityType:      entityType,
			ActionType:      action,
			EntityName:      name,
			ProposedChanges: proposed,
			PreviousState:   previous,
			SubmittedBy:     a.ID,
		}
		if entityID != "" {
			p.EntityID = &entityID
		}
		id, err := g.pendingRecords().Insert(ctx, tx, p)
		if err != nil {
			return err
		}
		res.PendingID = id
		g.auditTrail().Audit(ctx, tx, a.ID, entityType, p.EntityID, "CHANGE_SUBMITTED", map[string]any{
			"actionType": action,
			"pendingId":  id,
		})
		return nil
	}

	id, err := applyChange(ctx, tx, store, action, entityID, proposed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	res.Applied = true
	res.EntityID = id
	if g.OnApplied != nil {
		if err := g.OnApplied(ctx, tx, entityType, id); err != nil {
			return err
		}
	}
	g.auditTrail().Audit(ctx, tx, a.ID, entityType, &id, "CHANGE_APPLIED", map[string]any{"actionType": action})
	g.auditTrail().Event(ctx, tx, entityType, id, "CHANGE_APPLIED", summaryFor(action), a.ID, time.Now(), nil)
	return nil
}

// Review settles a pending record. Terminal and exclusive: the row is locked
// for the transaction and a second review fails with ErrAlreadyReviewed.
// Approval applies the held change inside the same transaction.
func (g *Gate) Review(ctx context.Context, reviewer *actor.Actor, pendingID string, decision Status, note string) (*Pending, error) {
	var reviewed *Pending
	err := db.WithTx(ctx, g.DB, func(tx pgx.Tx) error {
		p, err := g.reviewTx(ctx, tx, reviewer, pendingID, decision, note)
		if err != nil {
			return err
		}
		reviewed = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// reviewTx is the Review transaction body.
func (g *Gate) reviewTx(ctx context.Context, tx pgx.Tx, reviewer *actor.Actor, pendingID string, decision Status, note string) (*Pending, error) {
	p, err := g.pendingRecords().GetForUpdate(ctx, tx, pendingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !CanTransition(p.Status, decision) {
		return nil, ErrAlreadyReviewed
	}

	now := time.Now()
	if err := g.pendingRecords().MarkReviewed(ctx, tx, p.ID, decision, reviewer.ID, note, now); err != nil {
		return nil, err
	}

	if decision == StatusApproved {
		store, ok := g.Stores[p.EntityType]
		if !ok {
			return nil, ErrUnknownEntityType
		}
		entityID := ""
		if p.EntityID != nil {
			entityID = *p.EntityID
		}
		id, err := applyChange(ctx, tx, store, p.ActionType, entityID, p.ProposedChanges)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if g.OnApplied != nil {
			if err := g.OnApplied(ctx, tx, p.EntityType, id); err != nil {
				return nil, err
			}
		}
		g.auditTrail().Event(ctx, tx, p.EntityType, id, "CHANGE_APPLIED", summaryFor(p.ActionType), reviewer.ID, now, map[string]any{"pendingId": p.ID})
	}

	g.auditTrail().Audit(ctx, tx, reviewer.ID, p.EntityType, p.EntityID, "CHANGE_REVIEWED", map[string]any{
		"pendingId": p.ID,
		"decision":  decision,
	})

	p.Status = decision
	p.ReviewedBy = &reviewer.ID
	p.ReviewedAt = &now
	if note != "" {
		p.ReviewNote = &note
	}
	return p, nil
}

func summaryFor(action ActionType) string {
	switch action {
	case ActionCreate:
		return "Entity created"
	case ActionUpdate:
		return "Entity updated"
	case ActionArchive:
		return "Entity archived"
	case ActionRestore:
		return "Entity restored"
	case ActionDelete:
		return "Entity deleted"
	}
	return "Entity changed"
}
