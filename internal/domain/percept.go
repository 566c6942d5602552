package domain

import "github.com/paulmach/orb"

// EdgeCell is a blocked occupancy cell with at least one free 4-connected
// neighbor. Produced and consumed within a single perception pass.
type EdgeCell struct {
	Col    int
	Row    int
	Center orb.Point
}

// ObjectFeatures is a transient per-tick detection: one connected cluster
// of edge cells reduced to its geometric signature.
type ObjectFeatures struct {
	Centroid  orb.Point  `json:"centroid"`
	Box       orb.Bound  `json:"box"`
	CellCount int        `json:"cell_count"`
	Aspect    float64    `json:"aspect"`
	Cells     []EdgeCell `json:"-"`
}
