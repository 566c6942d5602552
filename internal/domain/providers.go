package domain

import "github.com/paulmach/orb"

// GeometryProvider supplies the shared read-only world each tick: the
// obstacle snapshot and the world bounds. Implementations must return
// data that stays immutable for the duration of a tick.
type GeometryProvider interface {
	Snapshot() ([]Obstacle, orb.Bound)
}

// EventSink receives prediction-error events as they are produced.
type EventSink interface {
	Publish(PredictionError)
}
