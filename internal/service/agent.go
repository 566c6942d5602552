package service

import (
	"math/rand"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Agent is one autonomous explorer. It exclusively owns its belief map and
// its RNG; the engine only ever drives one goroutine into an agent at a
// time.
type Agent struct {
	ID       uuid.UUID
	Position orb.Point
	Heading  float64
	Speed    float64

	beliefs *BeliefMap
	rng     *rand.Rand

	wander float64
	phase  float64
	boost  float64
}

func NewAgent(pos orb.Point, heading float64, seed int64, beliefCfg BeliefConfig) *Agent {
	rng := rand.New(rand.NewSource(seed))
	return &Agent{
		ID:       uuid.New(),
		Position: pos,
		Heading:  heading,
		beliefs:  NewBeliefMap(beliefCfg),
		rng:      rng,
		phase:    rng.Float64() * 6.283,
	}
}

func (a *Agent) Pose() domain.Pose {
	return domain.Pose{
		ID:       a.ID,
		Position: a.Position,
		Heading:  a.Heading,
		Speed:    a.Speed,
	}
}

// Mind returns a read-only snapshot of the agent's belief map.
func (a *Agent) Mind() []domain.MemoryEntry {
	return a.beliefs.Entries()
}

// Perceive runs the low-frequency cognitive pass: sense, segment, and
// reconcile with the belief map. Returns the prediction errors raised.
func (a *Agent) Perceive(obstacles []domain.Obstacle, bounds orb.Bound, pcfg PerceptionConfig, scfg SegmentationConfig, now time.Time) []domain.PredictionError {
	cells := Sense(a.Position, a.Heading, pcfg, obstacles, bounds)
	detections := Segment(cells, scfg)
	events := a.beliefs.Observe(Observation{
		Detections: detections,
		Position:   a.Position,
		Heading:    a.Heading,
		Perception: pcfg,
		Obstacles:  obstacles,
		Bounds:     bounds,
		Now:        now,
	})
	for i := range events {
		events[i].AgentID = a.ID
	}
	return events
}
