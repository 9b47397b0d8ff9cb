package approval

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/actor"
)

type ActionType string

const (
	ActionCreate  ActionType = "create"
	ActionUpdate  ActionType = "update"
	ActionArchive ActionType = "archive"
	ActionRestore ActionType = "restore"
	ActionDelete  ActionType = "delete"
)

func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case ActionCreate, ActionUpdate, ActionArchive, ActionRestore, ActionDelete:
		return ActionType(s), nil
	default:
		return "", fmt.Errorf("unknown action type: %s", s)
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseDecision accepts only the two terminal review outcomes.
func ParseDecision(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown decision: %s", s)
	}
}

// Approved and rejected are terminal; a reviewed record never moves again.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:  {StatusApproved: true, StatusRejected: true},
	StatusApproved: {},
	StatusRejected: {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// RequiresApproval is the gate predicate: super admins and actors flagged
// skipApproval mutate the catalog directly, everyone else is held for
// review.
func RequiresApproval(a *actor.Actor) bool {
	return a.Role != actor.RoleSuperAdmin && !a.SkipApproval
}

// Pending is one held catalog mutation. PreviousState is the full entity
// snapshot captured at submission time (nil only for create); it backs diff
// display and rollback safety.
type Pending struct {
	ID         string     `json:"id"`
	EntityType string     `json:"entityType"`
	ActionType ActionType `json:"actionType"`
	EntityID   *string    `json:"entityId"`
	EntityName string     `json:"entityName"`

	ProposedChanges json.RawMessage `json:"proposedChanges"`
	PreviousState   json.RawMessage `json:"previousState,omitempty"`

	Status      Status     `json:"status"`
	SubmittedBy string     `json:"submittedBy"`
	SubmittedAt time.Time  `json:"submittedAt"`
	ReviewedBy  *string    `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewNote  *string    `json:"reviewNote,omitempty"`
}
