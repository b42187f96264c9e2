package cluster

import "github.com/mpetrik/photo-people/internal/database"

// Cluster labels assigned by dbscan. Non-negative labels are cluster
// ordinals; Noise marks points not reachable from any dense region.
const (
	Noise        = -1
	unclassified = -2
)

// dbscan groups points by density over cosine distance. A point whose
// eps-neighborhood (itself included) holds at least minSamples points is a
// core point; clusters grow outward from core points, border points join
// the first cluster that reaches them, and the rest is noise.
//
// The scan order is the input order and neighborhoods are exact linear
// scans, so membership is deterministic for a fixed input snapshot.
func dbscan(points [][]float32, eps float64, minSamples int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unclassified
	}

	cluster := 0
	for i := range points {
		if labels[i] != unclassified {
			continue
		}

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minSamples {
			labels[i] = Noise
			continue
		}

		labels[i] = cluster
		for qi := 0; qi < len(neighbors); qi++ {
			j := neighbors[qi]
			if labels[j] == Noise {
				labels[j] = cluster // border point
			}
			if labels[j] != unclassified {
				continue
			}
			labels[j] = cluster

			expansion := regionQuery(points, j, eps)
			if len(expansion) >= minSamples {
				neighbors = append(neighbors, expansion...)
			}
		}
		cluster++
	}
	return labels
}

func regionQuery(points [][]float32, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if database.CosineDistance(points[i], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// groupByLabel collects point indexes per cluster label, ordered by label.
func groupByLabel(labels []int) [][]int {
	max := -1
	for _, l := range labels {
		if l > max {
			max = l
		}
	}
	if max < 0 {
		return nil
	}
	groups := make([][]int, max+1)
	for i, l := range labels {
		if l >= 0 {
			groups[l] = append(groups[l], i)
		}
	}
	return groups
}
