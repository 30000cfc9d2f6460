// Package triangulate converts polygons with optional holes into triangle
// index lists. Input is a flat [x0 y0 x1 y1 ...] vertex array; holeIndices
// holds the vertex index where each hole ring starts. The first ring is the
// outer boundary. Output indices reference the input vertices.
package triangulate

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDegenerate is wrapped by errors returned for rings that cannot form
// any triangle.
var ErrDegenerate = errors.New("degenerate polygon")

type vertex struct {
	idx  int // index into the caller's vertex array
	x, y float64
}

// Triangulate ear-clips the polygon described by vertices and holeIndices.
// Hole rings are bridged into the outer ring first, then ears are clipped
// off one by one. Degenerate (zero area) triangles are dropped, not
// reported. A ring with fewer than 3 distinct points is an error.
func Triangulate(vertices []float64, holeIndices []int) ([]uint32, error) {
	if len(vertices)%2 != 0 {
		return nil, errors.New("odd number of coordinate values")
	}
	nPts := len(vertices) / 2
	if nPts < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrDegenerate, nPts)
	}
	for _, hi := range holeIndices {
		if hi <= 0 || hi >= nPts {
			return nil, fmt.Errorf("hole start index %d out of range", hi)
		}
	}

	rings := splitRings(vertices, holeIndices)

	outer := dedup(rings[0])
	if len(outer) < 3 {
		return nil, fmt.Errorf("%w: outer ring has %d distinct points", ErrDegenerate, len(outer))
	}
	// outer ring must wind counter-clockwise
	if signedArea(outer) < 0 {
		reverse(outer)
	}

	holes := make([][]vertex, 0, len(rings)-1)
	for _, r := range rings[1:] {
		h := dedup(r)
		if len(h) < 3 {
			// unusable hole, skip it
			continue
		}
		// holes wind clockwise
		if signedArea(h) > 0 {
			reverse(h)
		}
		holes = append(holes, h)
	}

	// bridge holes leftmost-first so earlier bridges cannot occlude later ones
	sort.Slice(holes, func(i, j int) bool {
		return leftmost(holes[i]).x < leftmost(holes[j]).x
	})
	poly := outer
	for _, h := range holes {
		poly = bridgeHole(poly, h)
	}

	return clipEars(poly)
}

func splitRings(vertices []float64, holeIndices []int) [][]vertex {
	nPts := len(vertices) / 2
	starts := append([]int{0}, holeIndices...)
	rings := make([][]vertex, 0, len(starts))
	for k, s := range starts {
		e := nPts
		if k+1 < len(starts) {
			e = starts[k+1]
		}
		ring := make([]vertex, 0, e-s)
		for i := s; i < e; i++ {
			ring = append(ring, vertex{i, vertices[2*i], vertices[2*i+1]})
		}
		rings = append(rings, ring)
	}
	return rings
}

// dedup removes consecutive duplicate points, including a duplicated
// closing point.
func dedup(ring []vertex) []vertex {
	out := ring[:0:0]
	for _, v := range ring {
		if len(out) > 0 && samePoint(out[len(out)-1], v) {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func samePoint(a, b vertex) bool {
	return a.x == b.x && a.y == b.y
}

func reverse(ring []vertex) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

func signedArea(ring []vertex) float64 {
	area := 0.0
	for i := range ring {
		j := (i + 1) % len(ring)
		area += ring[i].x*ring[j].y - ring[j].x*ring[i].y
	}
	return area / 2
}

func leftmost(ring []vertex) vertex {
	m := ring[0]
	for _, v := range ring[1:] {
		if v.x < m.x || (v.x == m.x && v.y < m.y) {
			m = v
		}
	}
	return m
}

// cross of (b-a) x (c-a)
func cross(a, b, c vertex) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

func pointInTriangle(a, b, c, p vertex) bool {
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// bridgeHole splices a hole ring into the polygon by connecting the hole's
// leftmost vertex to a visible polygon vertex with two coincident bridge
// edges.
func bridgeHole(poly, hole []vertex) []vertex {
	hIdx := 0
	for i := range hole {
		if hole[i].x < hole[hIdx].x || (hole[i].x == hole[hIdx].x && hole[i].y < hole[hIdx].y) {
			hIdx = i
		}
	}
	h := hole[hIdx]

	bIdx := findBridgeVertex(poly, h)
	if bIdx < 0 {
		// hole is not inside the polygon, drop it
		return poly
	}

	// poly[0..bIdx], hole[hIdx..], hole[..hIdx], hole[hIdx], poly[bIdx..]
	merged := make([]vertex, 0, len(poly)+len(hole)+2)
	merged = append(merged, poly[:bIdx+1]...)
	for i := 0; i < len(hole); i++ {
		merged = append(merged, hole[(hIdx+i)%len(hole)])
	}
	merged = append(merged, hole[hIdx])
	merged = append(merged, poly[bIdx:]...)
	return merged
}

// findBridgeVertex locates a polygon vertex visible from h by casting a ray
// towards negative x. The edge hit closest to h supplies the candidate;
// if other polygon vertices fall inside the sighting triangle the reflex
// one closest in angle wins.
func findBridgeVertex(poly []vertex, h vertex) int {
	qx := math.Inf(-1)
	best := -1
	var bx, by float64

	for i := range poly {
		j := (i + 1) % len(poly)
		a, b := poly[i], poly[j]
		if (a.y <= h.y && h.y <= b.y || b.y <= h.y && h.y <= a.y) && a.y != b.y {
			x := a.x + (h.y-a.y)*(b.x-a.x)/(b.y-a.y)
			if x <= h.x && x > qx {
				qx = x
				if a.x < b.x {
					best, bx, by = i, a.x, a.y
				} else {
					best, bx, by = j, b.x, b.y
				}
				if x == h.x {
					// ray touches a vertex directly
					return best
				}
			}
		}
	}
	if best == -1 {
		return -1
	}

	// look for reflex vertices inside the triangle (intersection, h, candidate);
	// the one minimizing the angle to the ray is the safe bridge
	ip := vertex{-1, qx, h.y}
	cand := vertex{-1, bx, by}
	minTan := math.Inf(1)
	for i := range poly {
		p := poly[i]
		if samePoint(p, cand) || p.x > h.x || samePoint(p, h) {
			continue
		}
		var inside bool
		if h.y < cand.y {
			inside = pointInTriangle(ip, h, cand, p)
		} else {
			inside = pointInTriangle(h, ip, cand, p)
		}
		if !inside {
			continue
		}
		prev := poly[(i-1+len(poly))%len(poly)]
		next := poly[(i+1)%len(poly)]
		if cross(prev, p, next) >= 0 {
			continue // not reflex
		}
		dx := h.x - p.x
		if dx == 0 {
			continue
		}
		t := math.Abs(h.y-p.y) / dx
		if t < minTan || (t == minTan && p.x > poly[best].x) {
			minTan = t
			best = i
		}
	}
	return best
}

const areaEps = 1e-12

func clipEars(poly []vertex) ([]uint32, error) {
	indices := make([]uint32, 0, (len(poly)-2)*3)
	work := make([]vertex, len(poly))
	copy(work, poly)

	emit := func(a, b, c vertex) {
		if math.Abs(cross(a, b, c)) <= areaEps {
			return // degenerate, drop
		}
		indices = append(indices, uint32(a.idx), uint32(b.idx), uint32(c.idx))
	}

	for len(work) > 3 {
		clipped := false
		for i := 0; i < len(work); i++ {
			prev := work[(i-1+len(work))%len(work)]
			cur := work[i]
			next := work[(i+1)%len(work)]
			if !isEar(work, prev, cur, next) {
				continue
			}
			emit(prev, cur, next)
			work = append(work[:i], work[i+1:]...)
			clipped = true
			break
		}
		if clipped {
			continue
		}
		// no ear found: drop the flattest vertex so the clip can proceed
		flat := 0
		flatVal := math.Inf(1)
		for i := 0; i < len(work); i++ {
			prev := work[(i-1+len(work))%len(work)]
			next := work[(i+1)%len(work)]
			v := math.Abs(cross(prev, work[i], next))
			if v < flatVal {
				flatVal = v
				flat = i
			}
		}
		work = append(work[:flat], work[flat+1:]...)
	}
	if len(work) == 3 {
		emit(work[0], work[1], work[2])
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no triangles produced", ErrDegenerate)
	}
	return indices, nil
}

func isEar(poly []vertex, a, b, c vertex) bool {
	area := cross(a, b, c)
	if area <= areaEps {
		return false // reflex or collinear
	}
	for _, p := range poly {
		if samePoint(p, a) || samePoint(p, b) || samePoint(p, c) {
			continue
		}
		if pointInTriangle(a, b, c, p) {
			return false
		}
	}
	return true
}
