package domain

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

type ObstacleKind string

const (
	ObstacleFixed     ObstacleKind = "fixed"
	ObstacleDraggable ObstacleKind = "draggable"
)

func ValidObstacleKind(k string) bool {
	switch ObstacleKind(k) {
	case ObstacleFixed, ObstacleDraggable:
		return true
	}
	return false
}

// Obstacle is read-only ground truth supplied by the geometry provider.
// The simulation never mutates it; agents only ever learn about it through
// their own sensing.
type Obstacle struct {
	ID    uuid.UUID    `json:"id"`
	Bound orb.Bound    `json:"bound"`
	Kind  ObstacleKind `json:"kind"`
}

func (o Obstacle) Contains(p orb.Point) bool {
	return o.Bound.Contains(p)
}
