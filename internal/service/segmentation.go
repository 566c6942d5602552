package service

import (
	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/paulmach/orb"
)

// SegmentationConfig parameterizes edge-cell clustering.
type SegmentationConfig struct {
	CellSize      float64
	MinCellCount  int
	MergeDistance float64
}

func DefaultSegmentationConfig() SegmentationConfig {
	return SegmentationConfig{
		CellSize:      10,
		MinCellCount:  3,
		MergeDistance: 25,
	}
}

// Segment clusters edge cells into candidate objects: 8-connected flood
// fill, then noise rejection, then a centroid-distance merge that counters
// fragmentation across small gaps. Before rejection and merging, the
// clusters partition the input exactly.
func Segment(cells []domain.EdgeCell, cfg SegmentationConfig) []domain.ObjectFeatures {
	clusters := floodClusters(cells)

	kept := clusters[:0]
	for _, c := range clusters {
		if len(c) >= cfg.MinCellCount {
			kept = append(kept, c)
		}
	}

	features := make([]domain.ObjectFeatures, 0, len(kept))
	for _, c := range kept {
		features = append(features, clusterFeatures(c, cfg.CellSize))
	}

	if cfg.MergeDistance > 0 {
		features = mergeNearby(features, cfg)
	}
	return features
}

// floodClusters partitions the cells into 8-connected components. Visit
// order follows the input slice so the result is deterministic.
func floodClusters(cells []domain.EdgeCell) [][]domain.EdgeCell {
	index := make(map[[2]int]domain.EdgeCell, len(cells))
	for _, c := range cells {
		index[[2]int{c.Col, c.Row}] = c
	}

	visited := make(map[[2]int]bool, len(cells))
	var clusters [][]domain.EdgeCell

	for _, seed := range cells {
		seedKey := [2]int{seed.Col, seed.Row}
		if visited[seedKey] {
			continue
		}

		var cluster []domain.EdgeCell
		stack := [][2]int{seedKey}
		visited[seedKey] = true

		for len(stack) > 0 {
			key := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cluster = append(cluster, index[key])

			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					nb := [2]int{key[0] + dc, key[1] + dr}
					if _, ok := index[nb]; ok && !visited[nb] {
						visited[nb] = true
						stack = append(stack, nb)
					}
				}
			}
		}

		clusters = append(clusters, cluster)
	}
	return clusters
}

func clusterFeatures(cluster []domain.EdgeCell, cellSize float64) domain.ObjectFeatures {
	box := orb.Bound{Min: cluster[0].Center, Max: cluster[0].Center}
	var sumX, sumY float64
	for _, c := range cluster {
		box = box.Extend(c.Center)
		sumX += c.Center[0]
		sumY += c.Center[1]
	}
	// Cell centers underestimate the true extent by half a cell per side.
	box = box.Pad(cellSize / 2)

	n := float64(len(cluster))
	return domain.ObjectFeatures{
		Centroid:  orb.Point{sumX / n, sumY / n},
		Box:       box,
		CellCount: len(cluster),
		Aspect:    domain.BoundAspect(box),
		Cells:     cluster,
	}
}

// mergeNearby repeatedly folds together features whose centroids lie
// within the merge distance, unioning their cell sets.
func mergeNearby(features []domain.ObjectFeatures, cfg SegmentationConfig) []domain.ObjectFeatures {
	for {
		merged := false
		for i := 0; i < len(features) && !merged; i++ {
			for j := i + 1; j < len(features); j++ {
				if domain.Dist(features[i].Centroid, features[j].Centroid) > cfg.MergeDistance {
					continue
				}
				union := append(append([]domain.EdgeCell{}, features[i].Cells...), features[j].Cells...)
				features[i] = clusterFeatures(union, cfg.CellSize)
				features = append(features[:j], features[j+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			return features
		}
	}
}
