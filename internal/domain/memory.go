package domain

import (
	"time"

	"github.com/google/uuid"
)

// Belief bounds. PStatic never saturates fully so that contrary evidence
// can always move it; confidence lives in [0, 1].
const (
	PStaticMin = 0.05
	PStaticMax = 0.95

	ConfidenceMin = 0.0
	ConfidenceMax = 1.0
)

// ClampPStatic clamps a static-probability value into its legal range.
// Applied at every write site to stop floating-point drift.
func ClampPStatic(p float64) float64 {
	if p < PStaticMin {
		return PStaticMin
	}
	if p > PStaticMax {
		return PStaticMax
	}
	return p
}

// ClampConfidence clamps a confidence value into [0, 1].
func ClampConfidence(c float64) float64 {
	if c < ConfidenceMin {
		return ConfidenceMin
	}
	if c > ConfidenceMax {
		return ConfidenceMax
	}
	return c
}

// MemoryEntry is one remembered object in an agent's private belief map.
// Exactly one agent owns any given entry; entries are never shared.
type MemoryEntry struct {
	ID         uuid.UUID      `json:"id"`
	Features   ObjectFeatures `json:"features"`
	PStatic    float64        `json:"p_static"`
	Confidence float64        `json:"confidence"`
	FirstSeen  time.Time      `json:"first_seen"`
	LastSeen   time.Time      `json:"last_seen"`
	Visible    bool           `json:"visible"`

	// SourceID optionally links back to the ground-truth obstacle that
	// seeded this entry. Used only to choose the initial prior, never in
	// the belief update itself.
	SourceID *uuid.UUID `json:"source_id,omitempty"`
}
