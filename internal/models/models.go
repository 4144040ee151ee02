// Package models defines the core domain types for toolgate.
package models

import "time"

// ServerConfig describes a single configured MCP server.
type ServerConfig struct {
	Name           string            `yaml:"name" json:"name"`
	Address        string            `yaml:"address" json:"address"`
	Enabled        bool              `yaml:"enabled" json:"enabled"`
	TimeoutSeconds int               `yaml:"timeout_seconds" json:"timeout_seconds"`
	Priority       int               `yaml:"priority" json:"priority"` // lower value = preferred
	Tags           []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Metadata       map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Timeout returns the server timeout as a duration.
func (c ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HasTag reports whether the server carries the given tag.
func (c ServerConfig) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ParamKind is the declared kind of a tool parameter.
type ParamKind string

const (
	KindString  ParamKind = "string"
	KindNumber  ParamKind = "number"
	KindInteger ParamKind = "integer"
	KindBoolean ParamKind = "boolean"
	KindArray   ParamKind = "array"
	KindObject  ParamKind = "object"
	KindAny     ParamKind = "any"
)

// ParamField describes one declared tool parameter.
type ParamField struct {
	Name        string    `json:"name"`
	Kind        ParamKind `json:"kind"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
}

// ParameterSchema is the explicit, tagged shape of a tool's arguments.
// Fields are kept in declaration order so rendering is deterministic.
type ParameterSchema struct {
	Fields []ParamField `json:"fields,omitempty"`
}

// Field returns the field with the given name, if declared.
func (s ParameterSchema) Field(name string) (ParamField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ParamField{}, false
}

// ToolDescriptor is one tool offered by a server. Descriptors are immutable
// once placed in a catalog snapshot; a rebuild supersedes them wholesale.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
	ServerName  string          `json:"server_name"`
	Priority    int             `json:"priority"`
}

// ScreeningVerdict is the outcome of one classifier call.
type ScreeningVerdict struct {
	Flagged        bool               `json:"flagged"`
	Categories     []string           `json:"categories,omitempty"`
	CategoryScores map[string]float64 `json:"category_scores,omitempty"`
}

// ScreeningStats holds cumulative security manager counters.
type ScreeningStats struct {
	ToolsScreened        int64 `json:"tools_screened"`
	InteractionsScreened int64 `json:"interactions_screened"`
	ViolationsDetected   int64 `json:"violations_detected"`
	ClassifierErrors     int64 `json:"classifier_errors"`
}

// ScreeningEvent is one persisted audit record of a screening decision.
// PayloadHash is a SHA-256 digest; raw payloads are never stored.
type ScreeningEvent struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`      // "registration" or "interaction"
	Direction   string    `json:"direction"` // "outbound"/"inbound", empty for registration
	Subject     string    `json:"subject"`   // tool name or interaction label
	PayloadHash string    `json:"payload_hash"`
	Flagged     bool      `json:"flagged"`
	Categories  string    `json:"categories,omitempty"` // comma-separated
	Outcome     string    `json:"outcome"`              // "allowed", "blocked", "recorded", "error"
	Timestamp   time.Time `json:"timestamp"`
}
