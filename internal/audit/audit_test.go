package audit

import (
	"path/filepath"
	"testing"

	"github.com/mkarren/toolgate/internal/models"
	"github.com/mkarren/toolgate/internal/store"
)

func TestRecorder_HashesPayload(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	rec := NewRecorder(s)
	secret := "the raw payload with secrets"
	rec.Record("interaction", "outbound", "search", secret, models.ScreeningVerdict{
		Flagged:    true,
		Categories: []string{"prompt_injection", "jailbreak"},
	}, "blocked")

	events, err := s.RecentEvents(1)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.PayloadHash == secret || e.PayloadHash == "" {
		t.Errorf("payload must be stored as a hash, got %q", e.PayloadHash)
	}
	if len(e.PayloadHash) != 64 {
		t.Errorf("expected hex sha256 digest, got %q", e.PayloadHash)
	}
	if e.Categories != "prompt_injection,jailbreak" {
		t.Errorf("Categories = %q", e.Categories)
	}
	if e.Outcome != "blocked" || !e.Flagged {
		t.Errorf("event = %+v", e)
	}
}

func TestRecorder_SamePayloadSameHash(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	rec := NewRecorder(s)
	rec.Record("interaction", "outbound", "a", "payload", models.ScreeningVerdict{}, "allowed")
	rec.Record("interaction", "inbound", "b", "payload", models.ScreeningVerdict{}, "allowed")

	events, err := s.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].PayloadHash != events[1].PayloadHash {
		t.Error("identical payloads should produce identical hashes for correlation")
	}
}
