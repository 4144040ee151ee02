package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_WriteAndReadEvents(t *testing.T) {
	s := newTestStore(t)

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	if _, err := s.WriteEvent("interaction", "outbound", "search", "abc123", false, "", "allowed"); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}
	if _, err := s.WriteEvent("interaction", "inbound", "search", "def456", true, "prompt_injection", "blocked"); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}
	if _, err := s.WriteEvent("registration", "", "fetch", "0a0b", true, "moderated_content", "recorded"); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}

	n, err := s.CountEvents()
	if err != nil {
		t.Fatalf("CountEvents() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountEvents() = %d, want 3", n)
	}

	recent, err := s.RecentEvents(10)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("RecentEvents() returned %d, want 3", len(recent))
	}

	flagged, err := s.FlaggedEvents(10)
	if err != nil {
		t.Fatalf("FlaggedEvents() error = %v", err)
	}
	if len(flagged) != 2 {
		t.Fatalf("FlaggedEvents() returned %d, want 2", len(flagged))
	}
	for _, e := range flagged {
		if !e.Flagged {
			t.Errorf("unflagged event in flagged query: %+v", e)
		}
	}
}

func TestStore_EventFieldsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	written, err := s.WriteEvent("interaction", "inbound", "web_search", "cafe01", true, "prompt_injection,jailbreak", "blocked")
	if err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}

	events, err := s.RecentEvents(1)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	got := events[0]
	if got.ID != written.ID {
		t.Errorf("ID = %q, want %q", got.ID, written.ID)
	}
	if got.Kind != "interaction" || got.Direction != "inbound" || got.Subject != "web_search" {
		t.Errorf("event = %+v", got)
	}
	if got.PayloadHash != "cafe01" || !got.Flagged || got.Categories != "prompt_injection,jailbreak" || got.Outcome != "blocked" {
		t.Errorf("event = %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}
