package geometry

import (
	"math"
	"strconv"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
)

/*
############################ boundary #####################
*/

// Boundary is the running axis-aligned bounding box of everything
// collected so far. It only ever widens.
type Boundary struct {
	MinX float32
	MaxX float32
	MinY float32
	MaxY float32
}

func newBoundary() Boundary {
	inf := float32(math.Inf(1))
	return Boundary{MinX: inf, MaxX: -inf, MinY: inf, MaxY: -inf}
}

func (b *Boundary) widen(minX, maxX, minY, maxY float64) {
	if float32(minX) < b.MinX {
		b.MinX = float32(minX)
	}
	if float32(maxX) > b.MaxX {
		b.MaxX = float32(maxX)
	}
	if float32(minY) < b.MinY {
		b.MinY = float32(minY)
	}
	if float32(maxY) > b.MaxY {
		b.MaxY = float32(maxY)
	}
}

func (b Boundary) empty() bool {
	return b.MinX > b.MaxX
}

func (b Boundary) String() string {
	return "Boundary{" +
		strconv.FormatFloat(float64(b.MinX), 'f', 5, 32) + ", " +
		strconv.FormatFloat(float64(b.MaxX), 'f', 5, 32) + ", " +
		strconv.FormatFloat(float64(b.MinY), 'f', 5, 32) + ", " +
		strconv.FormatFloat(float64(b.MaxY), 'f', 5, 32) + "}"
}

/*
############################ sealed buffers #####################
*/

// Triangles is the flat triangle mesh: six floats per triangle in
// Vertices, three sequential entries per triangle in Indices, one
// polarity entry per triangle. The hole arrays repeat the aperture hole
// per vertex so a renderer can discard fragments inside it; all zeros
// when the aperture had no hole.
type Triangles struct {
	Vertices   []float32
	Indices    []uint32
	HoleX      []float32
	HoleY      []float32
	HoleRadius []float32
	Polarity   []gbt.PolType
}

// Circles holds per-instance flashed circles. The hole fields are zero
// when the aperture had no hole.
type Circles struct {
	X          []float32
	Y          []float32
	Radius     []float32
	HoleX      []float32
	HoleY      []float32
	HoleRadius []float32
	Polarity   []gbt.PolType
}

// Arcs holds per-instance stroked arcs. Sweep angles are signed, negative
// for clockwise.
type Arcs struct {
	X          []float32
	Y          []float32
	Radius     []float32
	StartAngle []float32
	SweepAngle []float32
	Thickness  []float32
	Polarity   []gbt.PolType
}

type Thermals struct {
	X             []float32
	Y             []float32
	OuterDiameter []float32
	InnerDiameter []float32
	GapThickness  []float32
	Rotation      []float32
	Polarity      []gbt.PolType
}

// GerberData is the terminal parse artifact: four sealed primitive
// collections plus the layer boundary. It is never mutated after Seal.
type GerberData struct {
	Triangles Triangles
	Circles   Circles
	Arcs      Arcs
	Thermals  Thermals
	Boundary  Boundary
}

/*
############################ collector #####################
*/

// Collector is the append-only primitive sink. Add pushes a primitive
// into the type-appropriate buffer and widens the boundary; Seal freezes
// everything into a GerberData.
type Collector struct {
	triangles Triangles
	circles   Circles
	arcs      Arcs
	thermals  Thermals
	boundary  Boundary
	sealed    bool
}

func NewCollector() *Collector {
	return &Collector{boundary: newBoundary()}
}

func (c *Collector) Add(p Primitive) {
	if c.sealed {
		return
	}
	switch v := p.(type) {
	case Triangle:
		c.addTriangle(v)
	case Circle:
		c.addCircle(v)
	case Arc:
		c.addArc(v)
	case Thermal:
		c.addThermal(v)
	}
}

func (c *Collector) AddAll(prims []Primitive) {
	for i := range prims {
		c.Add(prims[i])
	}
}

func (c *Collector) addTriangle(t Triangle) {
	base := uint32(len(c.triangles.Vertices) / 2)
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range t.Vertices {
		x := t.Vertices[i].X()
		y := t.Vertices[i].Y()
		c.triangles.Vertices = append(c.triangles.Vertices, float32(x), float32(y))
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	c.triangles.Indices = append(c.triangles.Indices, base, base+1, base+2)
	for i := 0; i < 3; i++ {
		c.triangles.HoleX = append(c.triangles.HoleX, float32(t.HoleCenter.X()))
		c.triangles.HoleY = append(c.triangles.HoleY, float32(t.HoleCenter.Y()))
		c.triangles.HoleRadius = append(c.triangles.HoleRadius, float32(t.HoleRadius))
	}
	c.triangles.Polarity = append(c.triangles.Polarity, t.Pol)
	c.boundary.widen(minX, maxX, minY, maxY)
}

func (c *Collector) addCircle(cir Circle) {
	c.circles.X = append(c.circles.X, float32(cir.Center.X()))
	c.circles.Y = append(c.circles.Y, float32(cir.Center.Y()))
	c.circles.Radius = append(c.circles.Radius, float32(cir.Radius))
	c.circles.HoleX = append(c.circles.HoleX, float32(cir.HoleCenter.X()))
	c.circles.HoleY = append(c.circles.HoleY, float32(cir.HoleCenter.Y()))
	c.circles.HoleRadius = append(c.circles.HoleRadius, float32(cir.HoleRadius))
	c.circles.Polarity = append(c.circles.Polarity, cir.Pol)
	c.boundary.widen(
		cir.Center.X()-cir.Radius, cir.Center.X()+cir.Radius,
		cir.Center.Y()-cir.Radius, cir.Center.Y()+cir.Radius)
}

func (c *Collector) addArc(a Arc) {
	c.arcs.X = append(c.arcs.X, float32(a.Center.X()))
	c.arcs.Y = append(c.arcs.Y, float32(a.Center.Y()))
	c.arcs.Radius = append(c.arcs.Radius, float32(a.Radius))
	c.arcs.StartAngle = append(c.arcs.StartAngle, float32(a.StartAngle))
	c.arcs.SweepAngle = append(c.arcs.SweepAngle, float32(a.Sweep))
	c.arcs.Thickness = append(c.arcs.Thickness, float32(a.Thickness))
	c.arcs.Polarity = append(c.arcs.Polarity, a.Pol)
	outer := a.Radius + a.Thickness/2
	c.boundary.widen(
		a.Center.X()-outer, a.Center.X()+outer,
		a.Center.Y()-outer, a.Center.Y()+outer)
}

func (c *Collector) addThermal(th Thermal) {
	c.thermals.X = append(c.thermals.X, float32(th.Center.X()))
	c.thermals.Y = append(c.thermals.Y, float32(th.Center.Y()))
	c.thermals.OuterDiameter = append(c.thermals.OuterDiameter, float32(th.OuterDiameter))
	c.thermals.InnerDiameter = append(c.thermals.InnerDiameter, float32(th.InnerDiameter))
	c.thermals.GapThickness = append(c.thermals.GapThickness, float32(th.GapThickness))
	c.thermals.Rotation = append(c.thermals.Rotation, float32(th.Rotation))
	c.thermals.Polarity = append(c.thermals.Polarity, th.Pol)
	r := th.OuterDiameter / 2
	c.boundary.widen(
		th.Center.X()-r, th.Center.X()+r,
		th.Center.Y()-r, th.Center.Y()+r)
}

// Seal hands the buffers off. The collector rejects further Adds and the
// returned value owns the data exclusively.
func (c *Collector) Seal() *GerberData {
	c.sealed = true
	b := c.boundary
	if b.empty() {
		b = Boundary{}
	}
	return &GerberData{
		Triangles: c.triangles,
		Circles:   c.circles,
		Arcs:      c.arcs,
		Thermals:  c.thermals,
		Boundary:  b,
	}
}

// PrimitiveCount is the total number of collected primitives.
func (c *Collector) PrimitiveCount() int {
	return len(c.triangles.Polarity) + len(c.circles.X) + len(c.arcs.X) + len(c.thermals.X)
}
