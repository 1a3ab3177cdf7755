package utils

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ServiceSite is one well participating in a service-area partition.
// Weight is the well's capacity; broken wells participate with weight 0
// so their neighbors absorb their territory.
type ServiceSite struct {
	ID       uuid.UUID
	Location orb.Point
	Weight   float64
}

const (
	partitionMaxIterations = 60
	partitionTolerance     = 0.005
	partitionDamping       = 0.2
)

// PartitionServiceAreas splits the area boundary among the sites in
// proportion to their weights. It samples a grid inside the boundary,
// assigns each cell to the site minimizing distance/weight, and nudges
// the weights until each site's cell share matches its weight share.
// The returned polygon per site is the hull of its cells; sites that won
// no cells (zero weight, or crowded out) map to nil.
func PartitionServiceAreas(boundary orb.Polygon, sites []ServiceSite, resolution int) map[uuid.UUID]orb.Polygon {
	out := make(map[uuid.UUID]orb.Polygon, len(sites))
	for _, s := range sites {
		out[s.ID] = nil
	}
	if len(sites) == 0 || len(boundary) == 0 {
		return out
	}
	if resolution <= 0 {
		resolution = 100
	}

	bound := boundary.Bound()
	padX := (bound.Max[0] - bound.Min[0]) * 0.05
	padY := (bound.Max[1] - bound.Min[1]) * 0.05
	minX, maxX := bound.Min[0]-padX, bound.Max[0]+padX
	minY, maxY := bound.Min[1]-padY, bound.Max[1]+padY

	var cells []orb.Point
	for i := 0; i < resolution; i++ {
		for j := 0; j < resolution; j++ {
			pt := orb.Point{
				minX + (maxX-minX)*float64(i)/float64(resolution-1),
				minY + (maxY-minY)*float64(j)/float64(resolution-1),
			}
			if planar.PolygonContains(boundary, pt) {
				cells = append(cells, pt)
			}
		}
	}
	if len(cells) == 0 {
		return out
	}

	totalWeight := 0.0
	for _, s := range sites {
		if s.Weight > 0 {
			totalWeight += s.Weight
		}
	}
	if totalWeight == 0 {
		return out
	}

	targets := make([]float64, len(sites))
	current := make([]float64, len(sites))
	for i, s := range sites {
		if s.Weight > 0 {
			targets[i] = s.Weight / totalWeight * float64(len(cells))
			current[i] = 1
		} else {
			current[i] = 1e-9
		}
	}

	assignments := make([]int, len(cells))
	for iter := 0; iter < partitionMaxIterations; iter++ {
		counts := make([]float64, len(sites))
		for ci, cell := range cells {
			best, bestDist := 0, math.Inf(1)
			for si, s := range sites {
				d := planar.Distance(s.Location, cell) / current[si]
				if d < bestDist {
					best, bestDist = si, d
				}
			}
			assignments[ci] = best
			counts[best]++
		}

		maxErr := 0.0
		for i := range sites {
			e := math.Abs(counts[i]-targets[i]) / float64(len(cells))
			if e > maxErr {
				maxErr = e
			}
		}
		if maxErr < partitionTolerance {
			break
		}
		for i := range sites {
			if sites[i].Weight <= 0 {
				current[i] = 1e-9
				continue
			}
			actual := math.Max(counts[i], 1)
			current[i] *= math.Pow(targets[i]/actual, partitionDamping)
		}
	}

	grouped := make(map[int][]orb.Point)
	for ci, si := range assignments {
		grouped[si] = append(grouped[si], cells[ci])
	}
	for si, s := range sites {
		pts := grouped[si]
		if len(pts) < 3 || s.Weight <= 0 {
			continue
		}
		hull := convexHull(append(pts, s.Location))
		if len(hull) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(hull)+1)
		ring = append(ring, hull...)
		ring = append(ring, hull[0])
		out[s.ID] = orb.Polygon{ring}
	}
	return out
}

// convexHull computes the monotone-chain hull of a point set. Orb has no
// hull primitive, so this stays hand-rolled.
func convexHull(pts []orb.Point) []orb.Point {
	if len(pts) < 3 {
		return pts
	}
	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	cross := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	var lower []orb.Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []orb.Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}
