package service

import (
	"math"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/paulmach/orb"
)

// PerceptionConfig parameterizes the field-of-view occupancy scan.
type PerceptionConfig struct {
	SensorRadius float64
	FOVHalfAngle float64
	CellSize     float64
}

func DefaultPerceptionConfig() PerceptionConfig {
	return PerceptionConfig{
		SensorRadius: 140,
		FOVHalfAngle: 70 * math.Pi / 180,
		CellSize:     10,
	}
}

// Sense scans the occupancy grid inside the agent's sensing cone and
// returns the blocked cells that border free space. Pure function of its
// inputs: same pose and geometry always yield the same cells, in the same
// order. Cost is bounded by the scan square, O((R/g)^2).
func Sense(pos orb.Point, heading float64, cfg PerceptionConfig, obstacles []domain.Obstacle, bounds orb.Bound) []domain.EdgeCell {
	g := cfg.CellSize
	r := cfg.SensorRadius

	minCol := int(math.Floor((pos[0] - r) / g))
	maxCol := int(math.Floor((pos[0] + r) / g))
	minRow := int(math.Floor((pos[1] - r) / g))
	maxRow := int(math.Floor((pos[1] + r) / g))

	// Memoized occupancy test; neighbor checks revisit cells.
	occupied := make(map[[2]int]bool)
	blocked := func(col, row int) bool {
		key := [2]int{col, row}
		if v, ok := occupied[key]; ok {
			return v
		}
		center := cellCenter(col, row, g)
		v := !bounds.Contains(center)
		if !v {
			for _, o := range obstacles {
				if o.Contains(center) {
					v = true
					break
				}
			}
		}
		occupied[key] = v
		return v
	}

	var cells []domain.EdgeCell
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			center := cellCenter(col, row, g)

			if domain.Dist(pos, center) > r {
				continue
			}
			bearing := domain.AngleTo(pos, center)
			if math.Abs(domain.AngleDiff(heading, bearing)) > cfg.FOVHalfAngle {
				continue
			}
			if !blocked(col, row) {
				continue
			}
			// Edge criterion: at least one free 4-connected neighbor.
			if blocked(col-1, row) && blocked(col+1, row) && blocked(col, row-1) && blocked(col, row+1) {
				continue
			}

			cells = append(cells, domain.EdgeCell{Col: col, Row: row, Center: center})
		}
	}
	return cells
}

func cellCenter(col, row int, g float64) orb.Point {
	return orb.Point{(float64(col) + 0.5) * g, (float64(row) + 0.5) * g}
}
