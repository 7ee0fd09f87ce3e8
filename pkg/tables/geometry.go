package tables

import "math"

// Coord is a single 2D vertex.
type Coord struct {
	X float64
	Y float64
}

// DedupCoords removes repeated vertices while preserving order, including a
// polygon's closing vertex. Repeated vertices produce zero-length segments
// that break the solver's line-segment algorithms.
func DedupCoords(coords []Coord) []Coord {
	seen := make(map[Coord]struct{}, len(coords))
	out := make([]Coord, 0, len(coords))
	for _, c := range coords {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Distance returns the Euclidean distance between two vertices.
func Distance(a, b Coord) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Centroid computes the area centroid of a polygon ring. The ring may be open
// or closed; degenerate (zero-area) rings fall back to the vertex mean.
func Centroid(ring []Coord) Coord {
	if len(ring) == 0 {
		return Coord{}
	}
	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = append(append([]Coord{}, ring...), ring[0])
	}
	var area, cx, cy float64
	for i := 0; i < len(closed)-1; i++ {
		a, b := closed[i], closed[i+1]
		cross := a.X*b.Y - b.X*a.Y
		area += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	if area == 0 {
		var sx, sy float64
		for _, c := range ring {
			sx += c.X
			sy += c.Y
		}
		n := float64(len(ring))
		return Coord{X: sx / n, Y: sy / n}
	}
	area /= 2
	return Coord{X: cx / (6 * area), Y: cy / (6 * area)}
}
