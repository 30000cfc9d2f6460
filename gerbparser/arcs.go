package gerbparser

import (
	"errors"
	"fmt"
	"math"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
)

// sweepSlack widens the quarter-turn limit slightly so arcs that land
// exactly on an axis are not rejected by rounding.
const sweepSlack = 0.001

type resolvedArc struct {
	CenterX    float64
	CenterY    float64
	Radius     float64
	StartAngle float64
	Sweep      float64 // signed, negative for clockwise
}

// resolveArc determines center, radius and sweep of an arc draw from
// (sx, sy) to (ex, ey) with offsets (i, j).
//
// In multi-quadrant mode the offsets are signed and point at the center
// directly. In single-quadrant mode only their magnitudes are
// meaningful, so the four sign combinations are tried: a candidate
// center is valid when its distances to both endpoints agree within
// radiusTol and the sweep in the commanded direction stays within a
// quarter turn. Among valid candidates the smaller radius wins, ties
// broken by the smaller absolute sweep. No valid candidate is an error,
// never a guess.
func resolveArc(sx, sy, ex, ey, i, j float64, clockwise bool, quad gbt.QuadMode, radiusTol float64) (resolvedArc, error) {
	if quad == gbt.QuadModeMulti {
		cx := sx + i
		cy := sy + j
		sa, sweep := arcAngles(sx, sy, ex, ey, cx, cy, clockwise)
		return resolvedArc{
			CenterX:    cx,
			CenterY:    cy,
			Radius:     math.Hypot(sx-cx, sy-cy),
			StartAngle: sa,
			Sweep:      sweep,
		}, nil
	}

	ai := math.Abs(i)
	aj := math.Abs(j)
	candidates := [4][2]float64{
		{sx + ai, sy + aj},
		{sx - ai, sy + aj},
		{sx + ai, sy - aj},
		{sx - ai, sy - aj},
	}
	best := resolvedArc{}
	found := false
	for _, cand := range candidates {
		cx, cy := cand[0], cand[1]
		r1 := math.Hypot(sx-cx, sy-cy)
		r2 := math.Hypot(ex-cx, ey-cy)
		if math.Abs(r1-r2) >= radiusTol {
			continue
		}
		sa, sweep := arcAngles(sx, sy, ex, ey, cx, cy, clockwise)
		if math.Abs(sweep) > math.Pi/2+sweepSlack {
			continue
		}
		cur := resolvedArc{CenterX: cx, CenterY: cy, Radius: r1, StartAngle: sa, Sweep: sweep}
		if !found || betterCandidate(cur, best) {
			best = cur
			found = true
		}
	}
	if !found {
		return resolvedArc{}, errors.New(
			"no candidate center satisfies the radius and quarter-turn constraints " +
				fmt.Sprintf("(start %.6f,%.6f end %.6f,%.6f I%.6f J%.6f)", sx, sy, ex, ey, ai, aj))
	}
	return best, nil
}

// betterCandidate prefers the smaller radius, then the smaller sweep.
func betterCandidate(a, b resolvedArc) bool {
	if a.Radius != b.Radius {
		return a.Radius < b.Radius
	}
	return math.Abs(a.Sweep) < math.Abs(b.Sweep)
}

// arcAngles returns the start angle and the sweep normalized into the
// commanded direction: nonpositive for clockwise, nonnegative for
// counterclockwise.
func arcAngles(sx, sy, ex, ey, cx, cy float64, clockwise bool) (startAngle, sweep float64) {
	startAngle = math.Atan2(sy-cy, sx-cx)
	endAngle := math.Atan2(ey-cy, ex-cx)
	sweep = endAngle - startAngle
	if clockwise && sweep > 0 {
		sweep -= 2 * math.Pi
	} else if !clockwise && sweep < 0 {
		sweep += 2 * math.Pi
	}
	return startAngle, sweep
}
