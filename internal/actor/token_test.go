package actor

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := IssueSessionToken("actor-123", "secret", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	vs, err := VerifySessionToken(tok, "secret", now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if vs.ActorID != "actor-123" {
		t.Fatalf("expected actor-123, got %s", vs.ActorID)
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := IssueSessionToken("actor-123", "secret", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := VerifySessionToken(tok, "secret", now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := IssueSessionToken("actor-123", "secret", time.Hour, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := VerifySessionToken(tok, "other", now); err == nil {
		t.Fatalf("expected signature error")
	}
}
