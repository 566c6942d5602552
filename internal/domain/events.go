package domain

import (
	"time"

	"github.com/google/uuid"
)

// PredictionErrorKind distinguishes surprise from omission.
type PredictionErrorKind string

const (
	// PredictionPositive: something was sensed where the belief map did
	// not expect it (unexpected presence or displacement).
	PredictionPositive PredictionErrorKind = "positive"
	// PredictionNegative: a believed object was not sensed where it was
	// expected (unexpected absence).
	PredictionNegative PredictionErrorKind = "negative"
)

// PredictionError is an ephemeral simulation event, not a fault. It is
// consumed by the rendering layer and discarded after a display window.
type PredictionError struct {
	ID         uuid.UUID           `json:"id"`
	AgentID    uuid.UUID           `json:"agent_id"`
	Kind       PredictionErrorKind `json:"kind"`
	EntryID    uuid.UUID           `json:"entry_id"`
	Magnitude  float64             `json:"magnitude"`
	Confidence float64             `json:"confidence"`
	At         time.Time           `json:"at"`
}
