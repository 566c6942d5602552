package service

import (
	"testing"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func cellAt(col, row int, g float64) domain.EdgeCell {
	return domain.EdgeCell{
		Col:    col,
		Row:    row,
		Center: orb.Point{(float64(col) + 0.5) * g, (float64(row) + 0.5) * g},
	}
}

func TestSegmentPartitionsInputExactly(t *testing.T) {
	g := 10.0
	// Two separated blobs plus an isolated cell.
	var cells []domain.EdgeCell
	for c := 0; c < 3; c++ {
		for r := 0; r < 2; r++ {
			cells = append(cells, cellAt(c, r, g))
		}
	}
	for c := 20; c < 22; c++ {
		cells = append(cells, cellAt(c, 20, g))
	}
	cells = append(cells, cellAt(40, 40, g))

	cfg := SegmentationConfig{CellSize: g, MinCellCount: 1, MergeDistance: 0}
	clusters := Segment(cells, cfg)

	seen := make(map[[2]int]int)
	total := 0
	for _, cl := range clusters {
		total += len(cl.Cells)
		for _, c := range cl.Cells {
			seen[[2]int{c.Col, c.Row}]++
		}
	}

	assert.Equal(t, len(cells), total, "union of clusters must equal input size")
	for _, c := range cells {
		assert.Equal(t, 1, seen[[2]int{c.Col, c.Row}], "cell %v visited exactly once", c)
	}
	assert.Len(t, clusters, 3)
}

func TestSegmentEightConnectivity(t *testing.T) {
	g := 10.0
	// Diagonal chain: 4-connectivity would split it, 8 keeps it whole.
	cells := []domain.EdgeCell{cellAt(0, 0, g), cellAt(1, 1, g), cellAt(2, 2, g)}

	clusters := Segment(cells, SegmentationConfig{CellSize: g, MinCellCount: 1})
	assert.Len(t, clusters, 1)
	assert.Equal(t, 3, clusters[0].CellCount)
}

func TestSegmentRejectsNoise(t *testing.T) {
	g := 10.0
	var cells []domain.EdgeCell
	for c := 0; c < 5; c++ {
		cells = append(cells, cellAt(c, 0, g))
	}
	cells = append(cells, cellAt(30, 30, g)) // lone speck

	clusters := Segment(cells, SegmentationConfig{CellSize: g, MinCellCount: 3})
	assert.Len(t, clusters, 1)
	assert.Equal(t, 5, clusters[0].CellCount)
}

func TestSegmentMergesNearbyClusters(t *testing.T) {
	g := 10.0
	// Two blobs two cells apart: separate components, centroids within
	// the merge distance.
	cells := []domain.EdgeCell{
		cellAt(0, 0, g), cellAt(1, 0, g),
		cellAt(4, 0, g), cellAt(5, 0, g),
	}

	cfg := SegmentationConfig{CellSize: g, MinCellCount: 1, MergeDistance: 45}
	clusters := Segment(cells, cfg)

	assert.Len(t, clusters, 1)
	assert.Equal(t, 4, clusters[0].CellCount)
}

func TestSegmentFeatures(t *testing.T) {
	g := 10.0
	var cells []domain.EdgeCell
	for c := 0; c < 4; c++ {
		for r := 0; r < 2; r++ {
			cells = append(cells, cellAt(c, r, g))
		}
	}

	clusters := Segment(cells, SegmentationConfig{CellSize: g, MinCellCount: 1})
	assert.Len(t, clusters, 1)

	f := clusters[0]
	assert.InDelta(t, 20.0, f.Centroid[0], 1e-9)
	assert.InDelta(t, 10.0, f.Centroid[1], 1e-9)
	// Box spans the full cell extents: 40x20.
	assert.InDelta(t, 0.0, f.Box.Min[0], 1e-9)
	assert.InDelta(t, 40.0, f.Box.Max[0], 1e-9)
	assert.InDelta(t, 2.0, f.Aspect, 1e-9)
}
