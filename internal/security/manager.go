package security

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/mkarren/toolgate/internal/models"
)

// Mode selects the screening policy.
type Mode string

const (
	// ModeStrict blocks any operation whose content is flagged.
	ModeStrict Mode = "strict"
	// ModePermissive records violations but lets operations proceed.
	ModePermissive Mode = "permissive"
	// ModeMinimal skips registration screening; interactions are still
	// screened under the configured interaction mode.
	ModeMinimal Mode = "minimal"
	// ModeDisabled performs no classifier calls at all.
	ModeDisabled Mode = "disabled"
)

// Direction labels which side of a tool call a payload belongs to.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Config holds security manager policy settings.
type Config struct {
	Mode Mode `yaml:"mode"`
	// InteractionMode applies when Mode is minimal: strict or permissive.
	InteractionMode Mode `yaml:"interaction_mode"`
	// FailOpen treats classifier-unavailable errors as "allow" instead of
	// surfacing them as hard errors.
	FailOpen bool `yaml:"fail_open"`
}

// DefaultConfig returns the fail-closed strict policy.
func DefaultConfig() Config {
	return Config{Mode: ModeStrict, InteractionMode: ModeStrict}
}

// Validate checks that the policy configuration is coherent.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeStrict, ModePermissive, ModeMinimal, ModeDisabled:
	default:
		return fmt.Errorf("invalid security mode %q, must be: strict, permissive, minimal, or disabled", c.Mode)
	}
	if c.Mode == ModeMinimal {
		switch c.InteractionMode {
		case ModeStrict, ModePermissive:
		default:
			return fmt.Errorf("invalid interaction_mode %q for minimal mode, must be: strict or permissive", c.InteractionMode)
		}
	}
	return nil
}

// Recorder receives every screening decision for audit purposes. Implementations
// must not retain payload; they are expected to hash it.
type Recorder interface {
	Record(kind, direction, subject, payload string, verdict models.ScreeningVerdict, outcome string)
}

// Manager wraps a Classifier and enforces the screening policy around tool
// registrations and call payloads. Counters are atomic so concurrent catalog
// builds and tool calls can screen without coordination.
type Manager struct {
	classifier Classifier
	cfg        Config
	recorder   Recorder

	toolsScreened        atomic.Int64
	interactionsScreened atomic.Int64
	violationsDetected   atomic.Int64
	classifierErrors     atomic.Int64
}

// NewManager creates a security manager. The classifier may be nil only when
// the mode is disabled. The recorder is optional.
func NewManager(classifier Classifier, cfg Config, recorder Recorder) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if classifier == nil && cfg.Mode != ModeDisabled {
		return nil, fmt.Errorf("classifier is required unless security mode is disabled")
	}
	return &Manager{classifier: classifier, cfg: cfg, recorder: recorder}, nil
}

// Mode returns the configured policy mode.
func (m *Manager) Mode() Mode {
	return m.cfg.Mode
}

// ScreenRegistration screens one tool before it is admitted to the catalog.
// A nil return admits the tool. A *ViolationError (strict mode) or a
// classifier error (fail-closed) means the tool must be excluded.
func (m *Manager) ScreenRegistration(ctx context.Context, tool models.ToolDescriptor) error {
	if m.cfg.Mode == ModeDisabled || m.cfg.Mode == ModeMinimal {
		return nil
	}

	payload := renderRegistration(tool)
	verdict, err := m.classifier.Screen(ctx, payload)
	if err != nil {
		return m.handleClassifierError("registration", "", tool.Name, payload, err)
	}
	m.toolsScreened.Add(1)

	if !verdict.Flagged {
		m.record("registration", "", tool.Name, payload, verdict, "allowed")
		return nil
	}

	m.violationsDetected.Add(1)
	if m.cfg.Mode == ModeStrict {
		m.record("registration", "", tool.Name, payload, verdict, "blocked")
		return &ViolationError{
			Subject:    fmt.Sprintf("tool %q", tool.Name),
			Categories: verdict.Categories,
			Scores:     verdict.CategoryScores,
		}
	}

	log.Printf("security: tool %q flagged (categories: %s), admitting under permissive mode",
		tool.Name, strings.Join(verdict.Categories, ","))
	m.record("registration", "", tool.Name, payload, verdict, "recorded")
	return nil
}

// ScreenInteraction screens one side of a tool call. Outbound payloads are
// screened before dispatch, inbound payloads before the result is returned.
func (m *Manager) ScreenInteraction(ctx context.Context, direction Direction, subject, payload string) error {
	if m.cfg.Mode == ModeDisabled {
		return nil
	}

	verdict, err := m.classifier.Screen(ctx, payload)
	if err != nil {
		return m.handleClassifierError("interaction", string(direction), subject, payload, err)
	}
	m.interactionsScreened.Add(1)

	if !verdict.Flagged {
		m.record("interaction", string(direction), subject, payload, verdict, "allowed")
		return nil
	}

	m.violationsDetected.Add(1)
	if m.interactionStrict() {
		m.record("interaction", string(direction), subject, payload, verdict, "blocked")
		return &ViolationError{
			Subject:    fmt.Sprintf("%s payload for %q", direction, subject),
			Categories: verdict.Categories,
			Scores:     verdict.CategoryScores,
		}
	}

	log.Printf("security: %s payload for %q flagged (categories: %s), proceeding under permissive mode",
		direction, subject, strings.Join(verdict.Categories, ","))
	m.record("interaction", string(direction), subject, payload, verdict, "recorded")
	return nil
}

// interactionStrict reports whether a flagged interaction blocks the call.
func (m *Manager) interactionStrict() bool {
	if m.cfg.Mode == ModeMinimal {
		return m.cfg.InteractionMode == ModeStrict
	}
	return m.cfg.Mode == ModeStrict
}

// handleClassifierError applies the fail-open setting to an unavailable
// classifier. The error is always counted.
func (m *Manager) handleClassifierError(kind, direction, subject, payload string, err error) error {
	m.classifierErrors.Add(1)
	m.record(kind, direction, subject, payload, models.ScreeningVerdict{}, "error")

	if m.cfg.FailOpen {
		log.Printf("security: classifier error for %q, allowing (fail-open): %v", subject, err)
		return nil
	}
	return fmt.Errorf("screening %s for %q: %w", kind, subject, err)
}

// Stats returns cumulative screening counters.
func (m *Manager) Stats() models.ScreeningStats {
	return models.ScreeningStats{
		ToolsScreened:        m.toolsScreened.Load(),
		InteractionsScreened: m.interactionsScreened.Load(),
		ViolationsDetected:   m.violationsDetected.Load(),
		ClassifierErrors:     m.classifierErrors.Load(),
	}
}

func (m *Manager) record(kind, direction, subject, payload string, verdict models.ScreeningVerdict, outcome string) {
	if m.recorder == nil {
		return
	}
	m.recorder.Record(kind, direction, subject, payload, verdict, outcome)
}

// renderRegistration builds the text representation of a tool that is
// submitted to the classifier during registration screening.
func renderRegistration(tool models.ToolDescriptor) string {
	var b strings.Builder
	b.WriteString("Tool: ")
	b.WriteString(tool.Name)
	b.WriteString("\nDescription: ")
	b.WriteString(tool.Description)
	if len(tool.Parameters.Fields) > 0 {
		b.WriteString("\nParameters:")
		for _, f := range tool.Parameters.Fields {
			b.WriteString("\n  - ")
			b.WriteString(f.Name)
			b.WriteString(" (")
			b.WriteString(string(f.Kind))
			if f.Required {
				b.WriteString(", required")
			}
			b.WriteString(")")
			if f.Description != "" {
				b.WriteString(": ")
				b.WriteString(f.Description)
			}
		}
	}
	return b.String()
}
