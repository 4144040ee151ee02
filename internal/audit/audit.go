// Package audit records screening decisions for later inspection.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"github.com/mkarren/toolgate/internal/models"
	"github.com/mkarren/toolgate/internal/store"
)

// Recorder persists screening decisions. Only a SHA-256 digest of the
// screened payload is stored, never the payload itself.
type Recorder struct {
	store *store.Store
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// Record writes one screening event. Failures are logged and swallowed so
// the audit trail never blocks a screening decision.
func (r *Recorder) Record(kind, direction, subject, payload string, verdict models.ScreeningVerdict, outcome string) {
	_, err := r.store.WriteEvent(kind, direction, subject, hashPayload(payload),
		verdict.Flagged, strings.Join(verdict.Categories, ","), outcome)
	if err != nil {
		log.Printf("audit: failed to record screening event for %q: %v", subject, err)
	}
}

// hashPayload digests the screened payload for reproducible correlation.
func hashPayload(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
