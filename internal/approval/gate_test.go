package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/actor"
)

func TestRequiresApproval(t *testing.T) {
	cases := []struct {
		role         actor.Role
		skipApproval bool
		want         bool
	}{
		{actor.RoleSuperAdmin, false, false},
		{actor.RoleSuperAdmin, true, false},
		{actor.RoleAdmin, false, true},
		{actor.RoleAdmin, true, false},
		{actor.RoleStaff, false, true},
	}
	for _, c := range cases {
		a := &actor.Actor{Role: c.role, SkipApproval: c.skipApproval}
		if got := RequiresApproval(a); got != c.want {
			t.Errorf("role=%s skip=%v: expected %v, got %v", c.role, c.skipApproval, c.want, got)
		}
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	if !CanTransition(StatusPending, StatusApproved) || !CanTransition(StatusPending, StatusRejected) {
		t.Fatalf("pending must allow both review outcomes")
	}
	for _, from := range []Status{StatusApproved, StatusRejected} {
		for _, to := range []Status{StatusPending, StatusApproved, StatusRejected} {
			if CanTransition(from, to) {
				t.Errorf("terminal %s must not transition to %s", from, to)
			}
		}
	}
}

func TestMergeShallow(t *testing.T) {
	base := json.RawMessage(`{"productCode":"RING-001","name":"Band","pricing":{"discount":"100"}}`)
	overlay := json.RawMessage(`{"name":"Classic Band","status":"active"}`)

	merged, err := MergeShallow(base, overlay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(merged, &m); err != nil {
		t.Fatalf("merged doc invalid: %v", err)
	}
	if m["name"] != "Classic Band" || m["status"] != "active" {
		t.Fatalf("overlay keys not applied: %v", m)
	}
	if m["productCode"] != "RING-001" {
		t.Fatalf("base key lost: %v", m)
	}
	// Untouched top-level keys survive whole; overlay replaces, not deep-merges.
	if _, ok := m["pricing"].(map[string]any); !ok {
		t.Fatalf("expected pricing block preserved, got %v", m["pricing"])
	}
}

// memStore is an in-memory EntityStore; the tx is ignored, which lets the
// pure apply dispatch be exercised without a database.
type memStore struct {
	docs   map[string]json.RawMessage
	active map[string]bool
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]json.RawMessage{}, active: map[string]bool{}}
}

func (s *memStore) Get(_ context.Context, _ pgx.Tx, id string) (json.RawMessage, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return doc, nil
}

func (s *memStore) Create(_ context.Context, _ pgx.Tx, doc json.RawMessage) (string, error) {
	var p struct {
		ProductCode string `json:"productCode"`
	}
	if err := json.Unmarshal(doc, &p); err != nil || p.ProductCode == "" {
		return "", fmt.Errorf("missing productCode")
	}
	s.docs[p.ProductCode] = doc
	s.active[p.ProductCode] = true
	return p.ProductCode, nil
}

func (s *memStore) Replace(_ context.Context, _ pgx.Tx, id string, doc json.RawMessage) error {
	if _, ok := s.docs[id]; !ok {
		return pgx.ErrNoRows
	}
	s.docs[id] = doc
	return nil
}

func (s *memStore) SetActive(_ context.Context, _ pgx.Tx, id string, active bool) error {
	if _, ok := s.docs[id]; !ok {
		return pgx.ErrNoRows
	}
	s.active[id] = active
	return nil
}

func (s *memStore) Delete(_ context.Context, _ pgx.Tx, id string) error {
	if _, ok := s.docs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.docs, id)
	delete(s.active, id)
	return nil
}

func (s *memStore) DisplayName(doc json.RawMessage) string {
	var p struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(doc, &p)
	return p.Name
}

func TestApplyChange_PerActionType(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	// create
	id, err := applyChange(ctx, nil, store, ActionCreate, "", json.RawMessage(`{"productCode":"RING-001","name":"Band"}`))
	if err != nil || id != "RING-001" {
		t.Fatalf("create: id=%q err=%v", id, err)
	}

	// update: shallow merge over the live doc
	if _, err := applyChange(ctx, nil, store, ActionUpdate, "RING-001", json.RawMessage(`{"name":"Classic Band"}`)); err != nil {
		t.Fatalf("update: %v", err)
	}
	var doc map[string]any
	_ = json.Unmarshal(store.docs["RING-001"], &doc)
	if doc["name"] != "Classic Band" || doc["productCode"] != "RING-001" {
		t.Fatalf("update merged wrong: %v", doc)
	}

	// archive / restore
	if _, err := applyChange(ctx, nil, store, ActionArchive, "RING-001", nil); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if store.active["RING-001"] {
		t.Fatalf("archive should deactivate")
	}
	if _, err := applyChange(ctx, nil, store, ActionRestore, "RING-001", nil); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !store.active["RING-001"] {
		t.Fatalf("restore should reactivate")
	}

	// delete
	if _, err := applyChange(ctx, nil, store, ActionDelete, "RING-001", nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.docs["RING-001"]; ok {
		t.Fatalf("delete should remove the document")
	}

	// unknown entity after delete surfaces not-found, not a silent no-op
	if _, err := applyChange(ctx, nil, store, ActionUpdate, "RING-001", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected not-found after delete")
	}
}

// memPendings keeps pending records in memory so the gate's transaction
// bodies can run without a database, same as memStore.
type memPendings struct {
	rows map[string]*Pending
	seq  int
}

func newMemPendings() *memPendings {
	return &memPendings{rows: map[string]*Pending{}}
}

func (m *memPendings) Insert(_ context.Context, _ pgx.Tx, p *Pending) (string, error) {
	m.seq++
	cp := *p
	cp.ID = fmt.Sprintf("pending-%d", m.seq)
	cp.Status = StatusPending
	cp.SubmittedAt = time.Now()
	m.rows[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memPendings) GetForUpdate(_ context.Context, _ pgx.Tx, id string) (*Pending, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *memPendings) MarkReviewed(_ context.Context, _ pgx.Tx, id string, status Status, reviewedBy, note string, reviewedAt time.Time) error {
	p, ok := m.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = status
	p.ReviewedBy = &reviewedBy
	p.ReviewedAt = &reviewedAt
	if note != "" {
		p.ReviewNote = &note
	}
	return nil
}

type nopTrail struct{}

func (nopTrail) Audit(context.Context, pgx.Tx, string, string, *string, string, map[string]any) {}

func (nopTrail) Event(context.Context, pgx.Tx, string, string, string, string, string, time.Time, map[string]any) {
}

func TestGateSubmit_PendingPathLeavesEntityUntouched(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.docs["RING-001"] = json.RawMessage(`{"productCode":"RING-001","name":"Band"}`)
	store.active["RING-001"] = true
	before := string(store.docs["RING-001"])

	pendings := newMemPendings()
	g := &Gate{
		Stores:   map[string]EntityStore{"product": store},
		pendings: pendings,
		trail:    nopTrail{},
	}

	a := &actor.Actor{ID: "staff-1", Role: actor.RoleStaff}
	res := &SubmitResult{EntityID: "RING-001"}
	err := g.submitTx(ctx, nil, store, a, "product", ActionUpdate, "RING-001", json.RawMessage(`{"name":"Renamed Band"}`), res)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Applied {
		t.Fatalf("a staff edit must be held for review, not applied")
	}
	if res.PendingID == "" {
		t.Fatalf("expected a pending id")
	}
	if got := string(store.docs["RING-001"]); got != before {
		t.Fatalf("live entity changed under a pending submission:\nbefore %s\nafter  %s", before, got)
	}
	if !store.active["RING-001"] {
		t.Fatalf("live entity deactivated under a pending submission")
	}

	p := pendings.rows[res.PendingID]
	if p == nil || p.Status != StatusPending {
		t.Fatalf("expected a pending record, got %+v", p)
	}
	if string(p.PreviousState) != before {
		t.Fatalf("previous state snapshot mismatch: %s", p.PreviousState)
	}
}

func TestGateSubmit_ExemptActorAppliesDirectly(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.docs["RING-001"] = json.RawMessage(`{"productCode":"RING-001","name":"Band"}`)
	store.active["RING-001"] = true

	var recomputed []string
	g := &Gate{
		Stores:   map[string]EntityStore{"product": store},
		pendings: newMemPendings(),
		trail:    nopTrail{},
		OnApplied: func(_ context.Context, _ pgx.Tx, _, entityID string) error {
			recomputed = append(recomputed, entityID)
			return nil
		},
	}

	a := &actor.Actor{ID: "root-1", Role: actor.RoleSuperAdmin}
	res := &SubmitResult{EntityID: "RING-001"}
	err := g.submitTx(ctx, nil, store, a, "product", ActionUpdate, "RING-001", json.RawMessage(`{"name":"Renamed Band"}`), res)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Applied || res.EntityID != "RING-001" {
		t.Fatalf("super admin edit should apply immediately: %+v", res)
	}
	var doc map[string]any
	_ = json.Unmarshal(store.docs["RING-001"], &doc)
	if doc["name"] != "Renamed Band" {
		t.Fatalf("live entity not updated: %v", doc)
	}
	if len(recomputed) != 1 || recomputed[0] != "RING-001" {
		t.Fatalf("expected one recompute for RING-001, got %v", recomputed)
	}
}

func TestGateReview_SecondReviewConflicts(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.docs["RING-001"] = json.RawMessage(`{"productCode":"RING-001","name":"Band"}`)
	store.active["RING-001"] = true

	pendings := newMemPendings()
	entityID := "RING-001"
	id, err := pendings.Insert(ctx, nil, &Pending{
		EntityType:      "product",
		ActionType:      ActionUpdate,
		EntityID:        &entityID,
		EntityName:      "Band",
		ProposedChanges: json.RawMessage(`{"name":"Reviewed Band"}`),
		SubmittedBy:     "staff-1",
	})
	if err != nil {
		t.Fatalf("seed pending: %v", err)
	}

	g := &Gate{
		Stores:   map[string]EntityStore{"product": store},
		pendings: pendings,
		trail:    nopTrail{},
	}
	reviewer := &actor.Actor{ID: "root-1", Role: actor.RoleSuperAdmin}

	first, err := g.reviewTx(ctx, nil, reviewer, id, StatusApproved, "")
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if first.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", first.Status)
	}
	var doc map[string]any
	_ = json.Unmarshal(store.docs["RING-001"], &doc)
	if doc["name"] != "Reviewed Band" {
		t.Fatalf("approved change not applied: %v", doc)
	}

	// The record is terminal now; a second decision must conflict and the
	// held change must not apply twice.
	if _, err := g.reviewTx(ctx, nil, reviewer, id, StatusRejected, ""); err != ErrAlreadyReviewed {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	_ = json.Unmarshal(store.docs["RING-001"], &doc)
	if doc["name"] != "Reviewed Band" {
		t.Fatalf("terminal record must not reapply: %v", doc)
	}
	if pendings.rows[id].Status != StatusApproved {
		t.Fatalf("terminal status overwritten: %s", pendings.rows[id].Status)
	}
}

func TestParseDecision(t *testing.T) {
	if _, err := ParseDecision("approved"); err != nil {
		t.Fatalf("approved should parse")
	}
	if _, err := ParseDecision("pending"); err == nil {
		t.Fatalf("pending is not a decision")
	}
}
