package geometry

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/go-gl/mathgl/mgl64"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	"github.com/dsafdsaf132/gerber2gpu/triangulate"
)

// CombineByExposure resolves an aperture whose primitive list mixes dark
// and clear exposures. Dark primitives are unioned onto the running shape,
// clear ones are subtracted, in statement order. The resulting contour set
// is triangulated; every output triangle carries pol. Returns nil when the
// clear primitives erase everything.
func CombineByExposure(prims []Primitive, segments int, pol gbt.PolType) ([]Primitive, error) {
	var result polyclip.Polygon
	for i := range prims {
		clip := polyclip.Polygon{prims[i].Contour(segments)}
		if prims[i].Polarity() == gbt.PolTypeDark {
			if len(result) == 0 {
				result = clip
				continue
			}
			result = result.Construct(polyclip.UNION, clip)
			continue
		}
		// a clear statement erases only what earlier statements have drawn
		if len(result) == 0 {
			continue
		}
		result = result.Construct(polyclip.DIFFERENCE, clip)
	}
	if len(result) == 0 {
		return nil, nil
	}

	out := make([]Primitive, 0, len(result)*2)
	for _, shape := range splitIntoShapes(result) {
		tris, err := TriangulateContours(shape, pol)
		if err != nil {
			// an unusable fragment of the clipped shape, skip it
			continue
		}
		out = append(out, tris...)
	}
	return out, nil
}

// splitIntoShapes groups a clipper result into outer-plus-holes shapes.
// Containment depth decides the role of each contour: even depth is an
// outer boundary, odd depth is a hole of the deepest outer enclosing it.
func splitIntoShapes(poly polyclip.Polygon) [][]polyclip.Contour {
	depth := make([]int, len(poly))
	for i := range poly {
		if len(poly[i]) == 0 {
			continue
		}
		probe := poly[i][0]
		for j := range poly {
			if i == j {
				continue
			}
			if poly[j].Contains(probe) {
				depth[i]++
			}
		}
	}

	shapes := make([][]polyclip.Contour, 0, len(poly))
	shapeOf := make(map[int]int, len(poly))
	for i := range poly {
		if depth[i]%2 == 0 {
			shapeOf[i] = len(shapes)
			shapes = append(shapes, []polyclip.Contour{poly[i]})
		}
	}
	for i := range poly {
		if depth[i]%2 == 0 || len(poly[i]) == 0 {
			continue
		}
		owner := -1
		for j := range poly {
			if depth[j]%2 != 0 || j == i {
				continue
			}
			if depth[j] == depth[i]-1 && poly[j].Contains(poly[i][0]) {
				owner = j
				break
			}
		}
		if owner == -1 {
			continue
		}
		s := shapeOf[owner]
		shapes[s] = append(shapes[s], poly[i])
	}
	return shapes
}

// TriangulateContours triangulates one outer contour plus holes into
// Triangle primitives. The first contour is the outer boundary.
func TriangulateContours(contours []polyclip.Contour, pol gbt.PolType) ([]Primitive, error) {
	flat := make([]float64, 0, 64)
	holeIndices := make([]int, 0, len(contours)-1)
	for k, c := range contours {
		if k > 0 {
			holeIndices = append(holeIndices, len(flat)/2)
		}
		for _, p := range c {
			flat = append(flat, p.X, p.Y)
		}
	}
	indices, err := triangulate.Triangulate(flat, holeIndices)
	if err != nil {
		return nil, err
	}
	out := make([]Primitive, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		out = append(out, Triangle{
			Vertices: [3]mgl64.Vec2{
				{flat[2*indices[i]], flat[2*indices[i]+1]},
				{flat[2*indices[i+1]], flat[2*indices[i+1]+1]},
				{flat[2*indices[i+2]], flat[2*indices[i+2]+1]},
			},
			Pol: pol,
		})
	}
	return out, nil
}

// ShoelaceArea returns the absolute area enclosed by a contour.
func ShoelaceArea(c polyclip.Contour) float64 {
	area := 0.0
	for i := range c {
		j := (i + 1) % len(c)
		area += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(area) / 2
}
