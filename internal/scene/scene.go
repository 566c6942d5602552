// Package scene ingests world geometry from a YAML scene document and
// publishes immutable obstacle snapshots to the simulation. It stands in
// for the layout sampler that feeds the agents in the rendered page.
package scene

import (
	"errors"
	"fmt"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

var (
	ErrWorldBounds  = errors.New("scene: world bounds must be finite and positive")
	ErrObstacleRect = errors.New("scene: obstacle rectangle must be finite with positive extent")
	ErrObstacleKind = errors.New("scene: obstacle kind must be fixed or draggable")
)

// Document is the YAML shape of a scene file.
type Document struct {
	World         WorldSpec      `yaml:"world"`
	ObstacleSpecs []ObstacleSpec `yaml:"obstacles"`
}

type WorldSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ObstacleSpec struct {
	ID     string  `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Kind   string  `yaml:"kind"`
}

// Validate rejects malformed geometry at ingestion so it never reaches
// perception.
func (d *Document) Validate() error {
	world := domain.Rect(0, 0, d.World.Width, d.World.Height)
	if !domain.ValidRect(world) {
		return ErrWorldBounds
	}
	for i, o := range d.ObstacleSpecs {
		if !domain.ValidRect(domain.Rect(o.X, o.Y, o.Width, o.Height)) {
			return fmt.Errorf("%w (obstacle %d)", ErrObstacleRect, i)
		}
		if o.Kind != "" && !domain.ValidObstacleKind(o.Kind) {
			return fmt.Errorf("%w (obstacle %d: %q)", ErrObstacleKind, i, o.Kind)
		}
	}
	return nil
}

// Obstacles converts a validated document into domain obstacles and world
// bounds. Obstacle identity is stable across reloads: a named spec maps to
// the same UUID every time, so a moved rectangle keeps its id.
func (d *Document) Obstacles() ([]domain.Obstacle, orb.Bound, error) {
	if err := d.Validate(); err != nil {
		return nil, orb.Bound{}, err
	}

	bounds := domain.Rect(0, 0, d.World.Width, d.World.Height)
	obstacles := make([]domain.Obstacle, 0, len(d.ObstacleSpecs))
	for i, spec := range d.ObstacleSpecs {
		kind := domain.ObstacleKind(spec.Kind)
		if kind == "" {
			kind = domain.ObstacleFixed
		}
		obstacles = append(obstacles, domain.Obstacle{
			ID:    specID(spec, i),
			Bound: domain.Rect(spec.X, spec.Y, spec.Width, spec.Height),
			Kind:  kind,
		})
	}
	return obstacles, bounds, nil
}

func specID(spec ObstacleSpec, index int) uuid.UUID {
	if spec.ID == "" {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("obstacle-%d", index)))
	}
	if id, err := uuid.Parse(spec.ID); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(spec.ID))
}
