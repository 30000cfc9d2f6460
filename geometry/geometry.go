// Package geometry holds the resolved primitive types produced by the
// parser and the flat buffer collector handed to the renderer.
package geometry

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/go-gl/mathgl/mgl64"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
)

// DefaultCircleSegments is the chord count used when a circle or arc has
// to be approximated by a polygon for boolean operations.
const DefaultCircleSegments = 36

/*
############################ primitives #####################
*/

// Primitive is one resolved geometric unit. Primitives are values; OffsetBy
// and ScaleBy return transformed copies and never mutate the receiver.
type Primitive interface {
	OffsetBy(dx, dy float64) Primitive
	// ScaleBy scales every coordinate and dimension by factor about the
	// origin. Used for unit conversion, so factor is always positive.
	ScaleBy(factor float64) Primitive
	Polarity() gbt.PolType
	// Contour approximates the primitive's outer boundary as a closed
	// polygon with the given number of segments per full circle.
	Contour(segments int) polyclip.Contour
}

// RotatePoint rotates p by angle radians around center.
func RotatePoint(p mgl64.Vec2, angle float64, center mgl64.Vec2) mgl64.Vec2 {
	cosA := math.Cos(angle)
	sinA := math.Sin(angle)
	x := p.X() - center.X()
	y := p.Y() - center.Y()
	return mgl64.Vec2{
		center.X() + x*cosA - y*sinA,
		center.Y() + x*sinA + y*cosA,
	}
}

type Triangle struct {
	Vertices   [3]mgl64.Vec2
	Pol        gbt.PolType
	HoleCenter mgl64.Vec2
	HoleRadius float64
}

func (t Triangle) OffsetBy(dx, dy float64) Primitive {
	d := mgl64.Vec2{dx, dy}
	t.Vertices[0] = t.Vertices[0].Add(d)
	t.Vertices[1] = t.Vertices[1].Add(d)
	t.Vertices[2] = t.Vertices[2].Add(d)
	t.HoleCenter = t.HoleCenter.Add(d)
	return t
}

func (t Triangle) ScaleBy(factor float64) Primitive {
	t.Vertices[0] = t.Vertices[0].Mul(factor)
	t.Vertices[1] = t.Vertices[1].Mul(factor)
	t.Vertices[2] = t.Vertices[2].Mul(factor)
	t.HoleCenter = t.HoleCenter.Mul(factor)
	t.HoleRadius *= factor
	return t
}

func (t Triangle) Polarity() gbt.PolType {
	return t.Pol
}

func (t Triangle) Contour(int) polyclip.Contour {
	return polyclip.Contour{
		{X: t.Vertices[0].X(), Y: t.Vertices[0].Y()},
		{X: t.Vertices[1].X(), Y: t.Vertices[1].Y()},
		{X: t.Vertices[2].X(), Y: t.Vertices[2].Y()},
	}
}

// Rotate returns the triangle rotated by angle radians around center.
func (t Triangle) Rotate(angle float64, center mgl64.Vec2) Triangle {
	if angle == 0 {
		return t
	}
	for i := range t.Vertices {
		t.Vertices[i] = RotatePoint(t.Vertices[i], angle, center)
	}
	return t
}

type Circle struct {
	Center     mgl64.Vec2
	Radius     float64
	Pol        gbt.PolType
	HoleCenter mgl64.Vec2
	HoleRadius float64
}

func (c Circle) OffsetBy(dx, dy float64) Primitive {
	d := mgl64.Vec2{dx, dy}
	c.Center = c.Center.Add(d)
	c.HoleCenter = c.HoleCenter.Add(d)
	return c
}

func (c Circle) ScaleBy(factor float64) Primitive {
	c.Center = c.Center.Mul(factor)
	c.Radius *= factor
	c.HoleCenter = c.HoleCenter.Mul(factor)
	c.HoleRadius *= factor
	return c
}

func (c Circle) Polarity() gbt.PolType {
	return c.Pol
}

func (c Circle) Contour(segments int) polyclip.Contour {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	out := make(polyclip.Contour, 0, segments)
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		a := float64(i) * step
		out = append(out, polyclip.Point{
			X: c.Center.X() + c.Radius*math.Cos(a),
			Y: c.Center.Y() + c.Radius*math.Sin(a),
		})
	}
	return out
}

// Arc is a stroked circular arc. StartAngle is measured from the positive
// x axis; Sweep is signed, negative for clockwise travel.
type Arc struct {
	Center     mgl64.Vec2
	Radius     float64
	StartAngle float64
	Sweep      float64
	Thickness  float64
	Pol        gbt.PolType
}

func (a Arc) OffsetBy(dx, dy float64) Primitive {
	a.Center = a.Center.Add(mgl64.Vec2{dx, dy})
	return a
}

func (a Arc) ScaleBy(factor float64) Primitive {
	a.Center = a.Center.Mul(factor)
	a.Radius *= factor
	a.Thickness *= factor
	return a
}

func (a Arc) Polarity() gbt.PolType {
	return a.Pol
}

func (a Arc) Contour(segments int) polyclip.Contour {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	segAngle := 2 * math.Pi / float64(segments)
	n := int(math.Ceil(math.Abs(a.Sweep) / segAngle))
	if n < 1 {
		n = 1
	}
	out := make(polyclip.Contour, 0, n+1)
	for i := 0; i <= n; i++ {
		ang := a.StartAngle + a.Sweep*float64(i)/float64(n)
		out = append(out, polyclip.Point{
			X: a.Center.X() + a.Radius*math.Cos(ang),
			Y: a.Center.Y() + a.Radius*math.Sin(ang),
		})
	}
	return out
}

type Thermal struct {
	Center        mgl64.Vec2
	OuterDiameter float64
	InnerDiameter float64
	GapThickness  float64
	Rotation      float64
	Pol           gbt.PolType
}

func (th Thermal) OffsetBy(dx, dy float64) Primitive {
	th.Center = th.Center.Add(mgl64.Vec2{dx, dy})
	return th
}

func (th Thermal) ScaleBy(factor float64) Primitive {
	th.Center = th.Center.Mul(factor)
	th.OuterDiameter *= factor
	th.InnerDiameter *= factor
	th.GapThickness *= factor
	return th
}

func (th Thermal) Polarity() gbt.PolType {
	return th.Pol
}

func (th Thermal) Contour(segments int) polyclip.Contour {
	outer := Circle{Center: th.Center, Radius: th.OuterDiameter / 2, Pol: th.Pol}
	return outer.Contour(segments)
}

/*
############################ construction helpers #####################
*/

// LineToTriangles strokes the segment from start to end with the given
// width, returning the two covering triangles. A zero-length segment
// yields nothing.
func LineToTriangles(start, end mgl64.Vec2, width float64, pol gbt.PolType) []Triangle {
	dir := end.Sub(start)
	length := dir.Len()
	if length == 0 {
		return nil
	}
	halfWidth := width / 2
	perp := mgl64.Vec2{-dir.Y() / length * halfWidth, dir.X() / length * halfWidth}

	v1 := start.Add(perp)
	v2 := start.Sub(perp)
	v3 := end.Add(perp)
	v4 := end.Sub(perp)

	return []Triangle{
		{Vertices: [3]mgl64.Vec2{v1, v2, v3}, Pol: pol},
		{Vertices: [3]mgl64.Vec2{v2, v4, v3}, Pol: pol},
	}
}

// RegularPolygonTriangles fans a regular polygon with the given vertex
// count, outer diameter and rotation into triangles around center.
func RegularPolygonTriangles(center mgl64.Vec2, diameter float64, vertices int, rotation float64, pol gbt.PolType) []Triangle {
	if vertices < 3 {
		return nil
	}
	radius := diameter / 2
	step := 2 * math.Pi / float64(vertices)
	corners := make([]mgl64.Vec2, vertices)
	for i := 0; i < vertices; i++ {
		a := rotation + step*float64(i)
		corners[i] = mgl64.Vec2{
			center.X() + radius*math.Cos(a),
			center.Y() + radius*math.Sin(a),
		}
	}
	out := make([]Triangle, 0, vertices)
	for i := 0; i < vertices; i++ {
		next := (i + 1) % vertices
		out = append(out, Triangle{
			Vertices: [3]mgl64.Vec2{center, corners[i], corners[next]},
			Pol:      pol,
		})
	}
	return out
}

// RectangleTriangles splits an axis-aligned rectangle centered at center
// into two triangles, rotated by rotation radians around center.
func RectangleTriangles(center mgl64.Vec2, width, height, rotation float64, pol gbt.PolType) []Triangle {
	halfW := width / 2
	halfH := height / 2
	v1 := mgl64.Vec2{center.X() - halfW, center.Y() - halfH}
	v2 := mgl64.Vec2{center.X() + halfW, center.Y() - halfH}
	v3 := mgl64.Vec2{center.X() + halfW, center.Y() + halfH}
	v4 := mgl64.Vec2{center.X() - halfW, center.Y() + halfH}
	t1 := Triangle{Vertices: [3]mgl64.Vec2{v1, v2, v3}, Pol: pol}.Rotate(rotation, center)
	t2 := Triangle{Vertices: [3]mgl64.Vec2{v1, v3, v4}, Pol: pol}.Rotate(rotation, center)
	return []Triangle{t1, t2}
}
