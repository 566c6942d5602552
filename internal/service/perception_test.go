package service

import (
	"math"
	"reflect"
	"testing"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

func testWorld() ([]domain.Obstacle, orb.Bound) {
	obstacles := []domain.Obstacle{
		{ID: uuid.New(), Bound: domain.Rect(160, 130, 40, 40), Kind: domain.ObstacleFixed},
	}
	return obstacles, domain.Rect(0, 0, 400, 300)
}

func TestSenseReturnsOnlyEdgeCells(t *testing.T) {
	obstacles, bounds := testWorld()
	cfg := DefaultPerceptionConfig()

	cells := Sense(orb.Point{100, 150}, 0, cfg, obstacles, bounds)
	if len(cells) == 0 {
		t.Fatal("expected edge cells for obstacle in view")
	}

	// The 40x40 obstacle covers a 4x4 block of 10px cells; the 2x2
	// interior has no free 4-neighbor and must be absent.
	for _, c := range cells {
		if !obstacles[0].Contains(c.Center) {
			t.Errorf("cell %v/%v is not on the obstacle", c.Col, c.Row)
		}
		if (c.Col == 17 || c.Col == 18) && (c.Row == 14 || c.Row == 15) {
			t.Errorf("interior cell %v/%v returned as edge", c.Col, c.Row)
		}
	}
}

func TestSenseRespectsFOVCone(t *testing.T) {
	obstacles, bounds := testWorld()
	cfg := DefaultPerceptionConfig()

	// Facing away from the obstacle: nothing qualifies.
	cells := Sense(orb.Point{100, 150}, math.Pi, cfg, obstacles, bounds)
	for _, c := range cells {
		if obstacles[0].Contains(c.Center) {
			t.Fatalf("obstacle cell %v/%v sensed outside the FOV cone", c.Col, c.Row)
		}
	}
}

func TestSenseRespectsSensorRadius(t *testing.T) {
	obstacles, bounds := testWorld()
	cfg := DefaultPerceptionConfig()
	cfg.SensorRadius = 40

	cells := Sense(orb.Point{20, 150}, 0, cfg, obstacles, bounds)
	for _, c := range cells {
		if obstacles[0].Contains(c.Center) {
			t.Fatalf("obstacle at distance beyond sensor radius was sensed")
		}
	}
}

func TestSenseTreatsOutsideWorldAsBlocked(t *testing.T) {
	_, bounds := testWorld()
	cfg := DefaultPerceptionConfig()

	// Near the left wall, facing it: the boundary reads as blocked cells
	// whose inner neighbor is free.
	cells := Sense(orb.Point{30, 150}, math.Pi, cfg, nil, bounds)
	if len(cells) == 0 {
		t.Fatal("expected edge cells along the world boundary")
	}
	for _, c := range cells {
		if bounds.Contains(c.Center) {
			t.Errorf("cell %v/%v inside bounds flagged as boundary edge", c.Col, c.Row)
		}
	}
}

func TestSenseIsIdempotent(t *testing.T) {
	obstacles, bounds := testWorld()
	cfg := DefaultPerceptionConfig()
	pos := orb.Point{100, 150}

	first := Sense(pos, 0.3, cfg, obstacles, bounds)
	second := Sense(pos, 0.3, cfg, obstacles, bounds)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated scans with identical inputs differ")
	}
}
