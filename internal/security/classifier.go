// Package security screens tool registrations and call payloads through a
// content classifier, under a configurable policy.
package security

import (
	"context"
	"errors"

	"github.com/mkarren/toolgate/internal/models"
)

// ErrClassifierUnavailable indicates the classifier service could not be
// reached or refused the request. It is distinct from a flagged verdict and
// is handled according to the manager's fail-open setting.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Classifier screens a text payload and returns a verdict. Implementations
// return an error wrapping ErrClassifierUnavailable when the underlying
// service cannot be reached; a flagged verdict is not an error.
type Classifier interface {
	Screen(ctx context.Context, text string) (models.ScreeningVerdict, error)
}

// ViolationError is returned when screening flags content under a policy
// that blocks the operation. It carries the classifier's verdict details.
type ViolationError struct {
	Subject    string
	Categories []string
	Scores     map[string]float64
}

func (e *ViolationError) Error() string {
	return "security violation: " + e.Subject + " flagged by content screening"
}

// IsViolation reports whether err is (or wraps) a screening violation.
func IsViolation(err error) bool {
	var v *ViolationError
	return errors.As(err, &v)
}
