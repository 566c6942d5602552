package service

import (
	"math"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// NavigationConfig parameterizes steering and collision handling.
type NavigationConfig struct {
	AvoidDistance float64
	AvoidStrength float64

	WallMargin   float64
	WallStrength float64

	WanderStrength float64
	WanderJitter   float64 // rad/s drift applied to the wander offset

	AttractorStrength float64
	AttractorHalfLife time.Duration

	TurnRate     float64 // rad/s heading integration clamp
	BaseSpeed    float64
	AvoidBoost   float64 // speed multiplier while avoiding
	EscapeBoost  float64 // additive speed after a hard collision
	OscAmplitude float64
	OscRate      float64 // rad/s phase advance for cruise oscillation

	EscapeHeadings  int
	CollisionMargin float64 // belief-box pad when judging "anticipated"
}

func DefaultNavigationConfig() NavigationConfig {
	return NavigationConfig{
		AvoidDistance:     90,
		AvoidStrength:     1.6,
		WallMargin:        40,
		WallStrength:      1.2,
		WanderStrength:    0.35,
		WanderJitter:      2.5,
		AttractorStrength: 1.0,
		AttractorHalfLife: 3 * time.Second,
		TurnRate:          3.0,
		BaseSpeed:         42,
		AvoidBoost:        1.6,
		EscapeBoost:       28,
		OscAmplitude:      0.15,
		OscRate:           1.8,
		EscapeHeadings:    16,
		CollisionMargin:   14,
	}
}

// Advance integrates one navigation frame: blended steering, clamped-rate
// heading update, speed law, then hard-collision resolution against ground
// truth. Returns any prediction errors raised by unexpected collisions.
func (a *Agent) Advance(dt float64, obstacles []domain.Obstacle, bounds orb.Bound, attractor *domain.Attractor, cfg NavigationConfig, now time.Time) []domain.PredictionError {
	if dt <= 0 {
		return nil
	}

	avoid := a.avoidanceVector(cfg)
	steer := avoid
	steer = addVec(steer, a.wallVector(bounds, cfg))
	steer = addVec(steer, a.wanderVector(dt, cfg))
	steer = addVec(steer, attractorVector(a.Position, attractor, cfg, now))

	if mag(steer) > 1e-6 {
		target := math.Atan2(steer[1], steer[0])
		turn := domain.AngleDiff(a.Heading, target)
		maxTurn := cfg.TurnRate * dt
		if turn > maxTurn {
			turn = maxTurn
		} else if turn < -maxTurn {
			turn = -maxTurn
		}
		a.Heading = domain.NormalizeAngle(a.Heading + turn)
	}

	a.phase += cfg.OscRate * dt
	speed := cfg.BaseSpeed * (1 + cfg.OscAmplitude*math.Sin(a.phase))
	if mag(avoid) > 0.3 {
		speed *= cfg.AvoidBoost
	}
	speed += a.boost
	a.boost *= math.Exp(-3 * dt)
	a.Speed = speed

	next := domain.PointAt(a.Position, a.Heading, speed*dt)
	next = domain.ClosestPointOnBound(bounds, next)

	hit, collided := obstacleAt(next, obstacles)
	if !collided {
		a.Position = next
		return nil
	}
	return a.resolveCollision(hit, dt, obstacles, bounds, cfg, now)
}

// avoidanceVector sums per-entry repulsion: direction from the nearest
// point on the remembered box toward the agent, weighted by proximity and
// the entry's static belief.
func (a *Agent) avoidanceVector(cfg NavigationConfig) orb.Point {
	var out orb.Point
	for _, entry := range a.beliefs.Entries() {
		if entry.Confidence < 0.15 {
			continue
		}
		nearest := domain.ClosestPointOnBound(entry.Features.Box, a.Position)
		d := domain.Dist(nearest, a.Position)
		if d >= cfg.AvoidDistance {
			continue
		}

		var dir orb.Point
		if d > 1e-6 {
			dir = orb.Point{(a.Position[0] - nearest[0]) / d, (a.Position[1] - nearest[1]) / d}
		} else {
			// Inside the box: push away from its center.
			away := domain.AngleTo(entry.Features.Box.Center(), a.Position)
			dir = orb.Point{math.Cos(away), math.Sin(away)}
		}

		w := (cfg.AvoidDistance - d) / cfg.AvoidDistance * entry.PStatic * cfg.AvoidStrength
		out = addVec(out, orb.Point{dir[0] * w, dir[1] * w})
	}
	return out
}

func (a *Agent) wallVector(bounds orb.Bound, cfg NavigationConfig) orb.Point {
	var out orb.Point
	push := func(d float64) float64 {
		if d >= cfg.WallMargin {
			return 0
		}
		if d < 0 {
			d = 0
		}
		return (cfg.WallMargin - d) / cfg.WallMargin * cfg.WallStrength
	}
	out[0] += push(a.Position[0] - bounds.Min[0])
	out[0] -= push(bounds.Max[0] - a.Position[0])
	out[1] += push(a.Position[1] - bounds.Min[1])
	out[1] -= push(bounds.Max[1] - a.Position[1])
	return out
}

// wanderVector drifts a persistent heading offset, giving organic motion
// without snapping.
func (a *Agent) wanderVector(dt float64, cfg NavigationConfig) orb.Point {
	a.wander += (a.rng.Float64()*2 - 1) * cfg.WanderJitter * dt
	a.wander = domain.NormalizeAngle(a.wander) * 0.98
	angle := a.Heading + a.wander
	return orb.Point{math.Cos(angle) * cfg.WanderStrength, math.Sin(angle) * cfg.WanderStrength}
}

func attractorVector(pos orb.Point, attractor *domain.Attractor, cfg NavigationConfig, now time.Time) orb.Point {
	if attractor == nil {
		return orb.Point{}
	}
	age := now.Sub(attractor.UpdatedAt)
	if age < 0 {
		age = 0
	}
	w := cfg.AttractorStrength * math.Exp(-math.Ln2*age.Seconds()/cfg.AttractorHalfLife.Seconds())
	if w < 0.01 {
		return orb.Point{}
	}
	d := domain.Dist(pos, attractor.Position)
	if d < 1e-6 {
		return orb.Point{}
	}
	return orb.Point{
		(attractor.Position[0] - pos[0]) / d * w,
		(attractor.Position[1] - pos[1]) / d * w,
	}
}

// resolveCollision redirects the agent along the first collision-free
// heading from a fixed ring of candidates and boosts its speed. A
// collision the belief map did not predict forces an immediate belief
// update and raises a positive prediction error; an anticipated collision
// raises nothing.
func (a *Agent) resolveCollision(hit domain.Obstacle, dt float64, obstacles []domain.Obstacle, bounds orb.Bound, cfg NavigationConfig, now time.Time) []domain.PredictionError {
	impact := domain.ClosestPointOnBound(hit.Bound, a.Position)
	expected := a.beliefs.PredictsObstacleAt(impact, cfg.CollisionMargin)

	// If the obstacle appeared on top of the agent, step out first.
	if hit.Contains(a.Position) {
		away := domain.AngleTo(hit.Bound.Center(), a.Position)
		exit := domain.ClosestPointOnBound(hit.Bound, a.Position)
		a.Position = domain.ClosestPointOnBound(bounds, domain.PointAt(exit, away, cfg.CollisionMargin/2))
	}

	step := math.Max(a.Speed*dt, 1)
	n := cfg.EscapeHeadings
	for k := 1; k <= n; k++ {
		// Alternate left/right around the current heading.
		offset := float64((k+1)/2) * 2 * math.Pi / float64(n)
		if k%2 == 0 {
			offset = -offset
		}
		cand := domain.NormalizeAngle(a.Heading + offset)
		pos := domain.ClosestPointOnBound(bounds, domain.PointAt(a.Position, cand, step))
		if _, blocked := obstacleAt(pos, obstacles); blocked {
			continue
		}
		a.Heading = cand
		a.Position = pos
		a.boost = cfg.EscapeBoost
		break
	}

	if expected {
		return nil
	}
	entryID := a.beliefs.ForceBelieve(hit, now)
	return []domain.PredictionError{{
		ID:         uuid.New(),
		AgentID:    a.ID,
		Kind:       domain.PredictionPositive,
		EntryID:    entryID,
		Magnitude:  step,
		Confidence: 1,
		At:         now,
	}}
}

func obstacleAt(p orb.Point, obstacles []domain.Obstacle) (domain.Obstacle, bool) {
	for _, o := range obstacles {
		if o.Contains(p) {
			return o, true
		}
	}
	return domain.Obstacle{}, false
}

func addVec(a, b orb.Point) orb.Point {
	return orb.Point{a[0] + b[0], a[1] + b[1]}
}

func mag(p orb.Point) float64 {
	return math.Hypot(p[0], p[1])
}
