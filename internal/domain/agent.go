package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Pose is the render-facing snapshot of an agent.
type Pose struct {
	ID       uuid.UUID `json:"id"`
	Position orb.Point `json:"position"`
	Heading  float64   `json:"heading"`
	Speed    float64   `json:"speed"`
}

// Attractor is an optional external point of interest whose pull decays
// with the age of its last update.
type Attractor struct {
	Position  orb.Point `json:"position"`
	UpdatedAt time.Time `json:"updated_at"`
}
