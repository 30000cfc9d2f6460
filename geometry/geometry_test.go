package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
)

func TestLineToTriangles(t *testing.T) {
	tris := LineToTriangles(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0}, 2, gbt.PolTypeDark)
	if len(tris) != 2 {
		t.Fatal("expected 2 triangles, got", len(tris))
	}
	// the stroke of a horizontal line covers [0,10] x [-1,1]
	area := 0.0
	for _, tr := range tris {
		a, b, c := tr.Vertices[0], tr.Vertices[1], tr.Vertices[2]
		area += math.Abs((b.X()-a.X())*(c.Y()-a.Y())-(b.Y()-a.Y())*(c.X()-a.X())) / 2
	}
	if math.Abs(area-20) > 1e-9 {
		t.Fatal("stroke area: want 20, got", area)
	}
	for _, tr := range tris {
		for _, v := range tr.Vertices {
			if v.X() < -1e-9 || v.X() > 10+1e-9 || math.Abs(v.Y()) > 1+1e-9 {
				t.Fatal("vertex outside stroke bounds:", v)
			}
		}
	}
	if got := LineToTriangles(mgl64.Vec2{3, 3}, mgl64.Vec2{3, 3}, 2, gbt.PolTypeDark); got != nil {
		t.Fatal("zero-length line must produce no triangles")
	}
}

func TestRotatePoint(t *testing.T) {
	p := RotatePoint(mgl64.Vec2{1, 0}, math.Pi/2, mgl64.Vec2{0, 0})
	if math.Abs(p.X()) > 1e-12 || math.Abs(p.Y()-1) > 1e-12 {
		t.Fatal("rotate (1,0) by 90 degrees: got", p)
	}
	p = RotatePoint(mgl64.Vec2{2, 1}, math.Pi, mgl64.Vec2{1, 1})
	if math.Abs(p.X()) > 1e-12 || math.Abs(p.Y()-1) > 1e-12 {
		t.Fatal("rotate (2,1) by 180 degrees around (1,1): got", p)
	}
}

func TestRectangleTriangles(t *testing.T) {
	tris := RectangleTriangles(mgl64.Vec2{0, 0}, 4, 2, 0, gbt.PolTypeDark)
	if len(tris) != 2 {
		t.Fatal("expected 2 triangles")
	}
	area := 0.0
	for _, tr := range tris {
		a, b, c := tr.Vertices[0], tr.Vertices[1], tr.Vertices[2]
		area += math.Abs((b.X()-a.X())*(c.Y()-a.Y())-(b.Y()-a.Y())*(c.X()-a.X())) / 2
	}
	if math.Abs(area-8) > 1e-9 {
		t.Fatal("rectangle area: want 8, got", area)
	}
	for _, tr := range tris {
		for _, v := range tr.Vertices {
			if math.Abs(v.X()) > 2+1e-9 || math.Abs(v.Y()) > 1+1e-9 {
				t.Fatal("vertex outside rectangle:", v)
			}
		}
	}
}

func TestRegularPolygonTriangles(t *testing.T) {
	tris := RegularPolygonTriangles(mgl64.Vec2{1, 1}, 2, 6, 0, gbt.PolTypeDark)
	if len(tris) != 6 {
		t.Fatal("hexagon: expected 6 fan triangles, got", len(tris))
	}
	// area of a regular hexagon with circumradius 1
	want := 3 * math.Sqrt(3) / 2
	area := 0.0
	for _, tr := range tris {
		a, b, c := tr.Vertices[0], tr.Vertices[1], tr.Vertices[2]
		area += math.Abs((b.X()-a.X())*(c.Y()-a.Y())-(b.Y()-a.Y())*(c.X()-a.X())) / 2
	}
	if math.Abs(area-want) > 1e-9 {
		t.Fatal("hexagon area: want", want, "got", area)
	}
	if RegularPolygonTriangles(mgl64.Vec2{}, 2, 2, 0, gbt.PolTypeDark) != nil {
		t.Fatal("2-gon must produce nothing")
	}
}

func TestCollector_boundary(t *testing.T) {
	c := NewCollector()
	c.Add(Circle{Center: mgl64.Vec2{10, 10}, Radius: 2, Pol: gbt.PolTypeDark})
	data := c.Seal()
	b := data.Boundary
	if b.MinX != 8 || b.MaxX != 12 || b.MinY != 8 || b.MaxY != 12 {
		t.Fatal("circle boundary: want {8 12 8 12}, got", b)
	}
}

func TestCollector_boundaryArc(t *testing.T) {
	c := NewCollector()
	c.Add(Arc{Center: mgl64.Vec2{0, 0}, Radius: 5, StartAngle: 0, Sweep: math.Pi / 2, Thickness: 2, Pol: gbt.PolTypeDark})
	b := c.Seal().Boundary
	// arcs widen by radius plus half the stroke
	if b.MinX != -6 || b.MaxX != 6 || b.MinY != -6 || b.MaxY != 6 {
		t.Fatal("arc boundary: want {-6 6 -6 6}, got", b)
	}
}

func TestCollector_empty(t *testing.T) {
	c := NewCollector()
	b := c.Seal().Boundary
	if b.MinX != 0 || b.MaxX != 0 || b.MinY != 0 || b.MaxY != 0 {
		t.Fatal("empty layer boundary must be all zeros, got", b)
	}
}

func TestCollector_sealedRejectsAdds(t *testing.T) {
	c := NewCollector()
	c.Add(Circle{Center: mgl64.Vec2{1, 1}, Radius: 1, Pol: gbt.PolTypeDark})
	data := c.Seal()
	c.Add(Circle{Center: mgl64.Vec2{100, 100}, Radius: 50, Pol: gbt.PolTypeDark})
	if len(data.Circles.X) != 1 {
		t.Fatal("seal must freeze the buffers")
	}
	if data.Boundary.MaxX != 2 {
		t.Fatal("boundary changed after seal:", data.Boundary)
	}
}

func TestCollector_buffers(t *testing.T) {
	c := NewCollector()
	c.Add(Triangle{Vertices: [3]mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}}, Pol: gbt.PolTypeDark})
	c.Add(Triangle{Vertices: [3]mgl64.Vec2{{2, 2}, {3, 2}, {2, 3}}, Pol: gbt.PolTypeClear})
	c.Add(Thermal{Center: mgl64.Vec2{5, 5}, OuterDiameter: 4, InnerDiameter: 2, GapThickness: 0.5, Pol: gbt.PolTypeDark})
	data := c.Seal()

	if len(data.Triangles.Vertices) != 12 {
		t.Fatal("expected 12 vertex floats, got", len(data.Triangles.Vertices))
	}
	if len(data.Triangles.Indices) != 6 {
		t.Fatal("expected 6 indices, got", len(data.Triangles.Indices))
	}
	if data.Triangles.Indices[3] != 3 || data.Triangles.Indices[5] != 5 {
		t.Fatal("indices must be sequential per triangle:", data.Triangles.Indices)
	}
	if data.Triangles.Polarity[0] != gbt.PolTypeDark || data.Triangles.Polarity[1] != gbt.PolTypeClear {
		t.Fatal("per-triangle polarity lost")
	}
	if len(data.Thermals.X) != 1 || data.Thermals.OuterDiameter[0] != 4 {
		t.Fatal("thermal buffer wrong")
	}
	// thermal widens by outer diameter / 2
	if data.Boundary.MaxX != 7 || data.Boundary.MaxY != 7 {
		t.Fatal("thermal boundary: want max 7, got", data.Boundary)
	}
}

func TestCombineByExposure_annulus(t *testing.T) {
	segs := 64
	prims := []Primitive{
		Circle{Center: mgl64.Vec2{0, 0}, Radius: 4, Pol: gbt.PolTypeDark},
		Circle{Center: mgl64.Vec2{0, 0}, Radius: 2, Pol: gbt.PolTypeClear},
	}
	out, err := CombineByExposure(prims, segs, gbt.PolTypeDark)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 {
		t.Fatal("annulus produced no triangles")
	}
	area := 0.0
	for _, p := range out {
		tr, ok := p.(Triangle)
		if !ok {
			t.Fatal("boolean result must be triangles only")
		}
		if tr.Pol != gbt.PolTypeDark {
			t.Fatal("result polarity must follow the caller")
		}
		a, b, c := tr.Vertices[0], tr.Vertices[1], tr.Vertices[2]
		area += math.Abs((b.X()-a.X())*(c.Y()-a.Y())-(b.Y()-a.Y())*(c.X()-a.X())) / 2
	}
	// polygonal approximations of the two circles, not ideal circles
	want := math.Pi*16 - math.Pi*4
	if math.Abs(area-want)/want > 0.05 {
		t.Fatal("annulus area: want about", want, "got", area)
	}
}

func TestCombineByExposure_erasedToNothing(t *testing.T) {
	prims := []Primitive{
		Circle{Center: mgl64.Vec2{0, 0}, Radius: 1, Pol: gbt.PolTypeDark},
		Circle{Center: mgl64.Vec2{0, 0}, Radius: 3, Pol: gbt.PolTypeClear},
	}
	out, err := CombineByExposure(prims, 32, gbt.PolTypeDark)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatal("fully erased shape must produce nothing, got", len(out), "triangles")
	}
}

func TestCombineByExposure_leadingClear(t *testing.T) {
	// a clear statement ahead of the first dark one erases nothing
	prims := []Primitive{
		Circle{Center: mgl64.Vec2{0, 0}, Radius: 2, Pol: gbt.PolTypeClear},
		Circle{Center: mgl64.Vec2{0, 0}, Radius: 2, Pol: gbt.PolTypeDark},
	}
	out, err := CombineByExposure(prims, 64, gbt.PolTypeDark)
	if err != nil {
		t.Fatal(err)
	}
	area := 0.0
	for _, p := range out {
		tr := p.(Triangle)
		a, b, c := tr.Vertices[0], tr.Vertices[1], tr.Vertices[2]
		area += math.Abs((b.X()-a.X())*(c.Y()-a.Y())-(b.Y()-a.Y())*(c.X()-a.X())) / 2
	}
	want := math.Pi * 4
	if math.Abs(area-want)/want > 0.05 {
		t.Fatal("leading clear must not subtract, want area about", want, "got", area)
	}
}

func TestCombineByExposure_noDark(t *testing.T) {
	prims := []Primitive{
		Circle{Center: mgl64.Vec2{0, 0}, Radius: 1, Pol: gbt.PolTypeClear},
	}
	out, err := CombineByExposure(prims, 32, gbt.PolTypeDark)
	if err != nil || out != nil {
		t.Fatal("clear-only list must produce nothing:", out, err)
	}
}

func TestScaleBy(t *testing.T) {
	c := Circle{Center: mgl64.Vec2{1, 2}, Radius: 3, HoleRadius: 0.5, Pol: gbt.PolTypeDark}
	s := c.ScaleBy(25.4).(Circle)
	if s.Center.X() != 25.4 || s.Center.Y() != 50.8 || s.Radius != 76.2 || s.HoleRadius != 12.7 {
		t.Fatal("scaled circle: got", s)
	}
	if c.Radius != 3 {
		t.Fatal("ScaleBy must not mutate the receiver")
	}
	a := Arc{Center: mgl64.Vec2{1, 0}, Radius: 2, StartAngle: 1, Sweep: -1, Thickness: 0.2, Pol: gbt.PolTypeDark}
	sa := a.ScaleBy(2).(Arc)
	if sa.Radius != 4 || sa.Thickness != 0.4 || sa.Center.X() != 2 {
		t.Fatal("scaled arc: got", sa)
	}
	if sa.StartAngle != 1 || sa.Sweep != -1 {
		t.Fatal("scaling must leave angles alone:", sa)
	}
}

func TestOffsetBy(t *testing.T) {
	orig := Circle{Center: mgl64.Vec2{1, 1}, Radius: 2, Pol: gbt.PolTypeDark}
	moved := orig.OffsetBy(3, 4).(Circle)
	if moved.Center.X() != 4 || moved.Center.Y() != 5 {
		t.Fatal("offset circle: got", moved.Center)
	}
	if orig.Center.X() != 1 {
		t.Fatal("OffsetBy must not mutate the receiver")
	}
}
