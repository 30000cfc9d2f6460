package apertures

import (
	"math"
	"testing"

	"github.com/dsafdsaf132/gerber2gpu/amprocessor"
	"github.com/dsafdsaf132/gerber2gpu/geometry"
	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	"github.com/dsafdsaf132/gerber2gpu/xy"
)

func mmFormat(t *testing.T) *xy.FormatSpec {
	t.Helper()
	fs := xy.NewFormatSpec()
	if err := fs.Init("%FSLAX24Y24*%"); err != nil {
		t.Fatal(err)
	}
	if err := fs.SetUnits("%MOMM*%"); err != nil {
		t.Fatal(err)
	}
	return fs
}

func triangleArea(prims []geometry.Primitive) float64 {
	area := 0.0
	for _, p := range prims {
		tr, ok := p.(geometry.Triangle)
		if !ok {
			continue
		}
		a, b, c := tr.Vertices[0], tr.Vertices[1], tr.Vertices[2]
		area += math.Abs((b.X()-a.X())*(c.Y()-a.Y())-(b.Y()-a.Y())*(c.X()-a.X())) / 2
	}
	return area
}

func TestAperture_Init_circle(t *testing.T) {
	fs := mmFormat(t)
	var ap Aperture
	if err := ap.Init("10C,0.25X0.1", fs, nil, 36); err != nil {
		t.Fatal(err)
	}
	if ap.Code != 10 || ap.Type != gbt.AptypeCircle {
		t.Fatal("code/type: got", ap.Code, ap.Type)
	}
	if len(ap.Primitives) != 1 {
		t.Fatal("expected 1 primitive")
	}
	c := ap.Primitives[0].(geometry.Circle)
	if c.Radius != 0.125 || c.HoleRadius != 0.05 {
		t.Fatal("circle: got", c)
	}
	if ap.StrokeRadius != 0.125 {
		t.Fatal("stroke radius: got", ap.StrokeRadius)
	}
	if ap.HasNegative {
		t.Fatal("plain circle must not be negative")
	}
}

func TestAperture_Init_inches(t *testing.T) {
	fs := mmFormat(t)
	if err := fs.SetUnits("%MOIN*%"); err != nil {
		t.Fatal(err)
	}
	var ap Aperture
	if err := ap.Init("10C,1", fs, nil, 36); err != nil {
		t.Fatal(err)
	}
	c := ap.Primitives[0].(geometry.Circle)
	if math.Abs(c.Radius-12.7) > 1e-9 {
		t.Fatal("inch circle must convert to mm, got radius", c.Radius)
	}
}

func TestAperture_Init_rectangle(t *testing.T) {
	fs := mmFormat(t)
	var ap Aperture
	if err := ap.Init("20R,0.5X0.3", fs, nil, 36); err != nil {
		t.Fatal(err)
	}
	if len(ap.Primitives) != 2 {
		t.Fatal("expected 2 triangles, got", len(ap.Primitives))
	}
	if a := triangleArea(ap.Primitives); math.Abs(a-0.15) > 1e-9 {
		t.Fatal("rectangle area: want 0.15, got", a)
	}
	if ap.StrokeRadius != 0.25 {
		t.Fatal("stroke radius must be half the longer side, got", ap.StrokeRadius)
	}
}

func TestAperture_Init_obround(t *testing.T) {
	fs := mmFormat(t)
	var ap Aperture
	if err := ap.Init("30O,2X1", fs, nil, 36); err != nil {
		t.Fatal(err)
	}
	circles := 0
	for _, p := range ap.Primitives {
		if c, ok := p.(geometry.Circle); ok {
			circles++
			if c.Radius != 0.5 || math.Abs(c.Center.X()) != 0.5 || c.Center.Y() != 0 {
				t.Fatal("end circle: got", c)
			}
		}
	}
	if circles != 2 {
		t.Fatal("expected 2 end circles, got", circles)
	}
	if a := triangleArea(ap.Primitives); math.Abs(a-1.0) > 1e-9 {
		t.Fatal("central rectangle area: want 1, got", a)
	}
	if ap.StrokeRadius != 0.5 {
		t.Fatal("stroke radius must be half the shorter side, got", ap.StrokeRadius)
	}
}

func TestAperture_Init_polygon(t *testing.T) {
	fs := mmFormat(t)
	var ap Aperture
	if err := ap.Init("40P,2X6X30", fs, nil, 36); err != nil {
		t.Fatal(err)
	}
	if len(ap.Primitives) != 6 {
		t.Fatal("hexagon must fan into 6 triangles, got", len(ap.Primitives))
	}
	// regular hexagon with circumradius 1
	want := 3 * math.Sqrt(3) / 2
	if a := triangleArea(ap.Primitives); math.Abs(a-want) > 1e-9 {
		t.Fatal("hexagon area: want", want, "got", a)
	}
	first := ap.Primitives[0].(geometry.Triangle)
	v := first.Vertices[1]
	if math.Abs(v.X()-math.Cos(math.Pi/6)) > 1e-9 || math.Abs(v.Y()-math.Sin(math.Pi/6)) > 1e-9 {
		t.Fatal("rotation not applied, first rim vertex at", v)
	}
}

func TestAperture_Init_macro(t *testing.T) {
	am, err := amprocessor.NewApertureMacro("%AMDONUT*1,1,$1,0,0*1,0,$2,0,0*%")
	if err != nil {
		t.Fatal(err)
	}
	macros := map[string]*amprocessor.ApertureMacro{am.Name: am}

	fs := mmFormat(t)
	var ap Aperture
	if err := ap.Init("50DONUT,2X1", fs, macros, 36); err != nil {
		t.Fatal(err)
	}
	if ap.Type != gbt.AptypeMacro || ap.MacroName != "DONUT" {
		t.Fatal("macro reference: got", ap.Type, ap.MacroName)
	}
	if !ap.HasNegative {
		t.Fatal("exposure-0 circle must mark the aperture negative")
	}
	if len(ap.Primitives) != 2 {
		t.Fatal("expected 2 circles, got", len(ap.Primitives))
	}
}

func TestAperture_Init_macroParamsInInches(t *testing.T) {
	am, err := amprocessor.NewApertureMacro("%AMDOT*1,1,$1,0,0*%")
	if err != nil {
		t.Fatal(err)
	}
	macros := map[string]*amprocessor.ApertureMacro{am.Name: am}

	fs := mmFormat(t)
	if err := fs.SetUnits("%MOIN*%"); err != nil {
		t.Fatal(err)
	}
	var ap Aperture
	if err := ap.Init("50DOT,1", fs, macros, 36); err != nil {
		t.Fatal(err)
	}
	c := ap.Primitives[0].(geometry.Circle)
	if math.Abs(c.Radius-12.7) > 1e-9 {
		t.Fatal("macro parameters must convert to mm, got radius", c.Radius)
	}
}

func TestAperture_Init_errors(t *testing.T) {
	fs := mmFormat(t)
	bad := []string{
		"10C",           // circle without diameter
		"11R,1",         // rectangle with one size
		"12O,1",         // obround with one size
		"13P,1",         // polygon without vertex count
		"14P,1X2",       // 2-gon
		"15C,1X2X3",     // too many circle parameters
		"5C,1",          // reserved code
		"16NOSUCH,1",    // undefined macro
		"C,1",           // missing code
		"17C,abc",       // unparsable parameter
	}
	for _, s := range bad {
		var ap Aperture
		if err := ap.Init(s, fs, nil, 36); err == nil {
			t.Error("expected error for " + s)
		}
	}
}

func TestAperture_Flash(t *testing.T) {
	fs := mmFormat(t)
	var ap Aperture
	if err := ap.Init("10C,2X0.5", fs, nil, 36); err != nil {
		t.Fatal(err)
	}
	prims, err := ap.Flash(3, 4, gbt.PolTypeClear, 36)
	if err != nil {
		t.Fatal(err)
	}
	c := prims[0].(geometry.Circle)
	if c.Center.X() != 3 || c.Center.Y() != 4 {
		t.Fatal("flash must offset the template, got", c.Center)
	}
	if c.HoleCenter.X() != 3 || c.HoleCenter.Y() != 4 {
		t.Fatal("hole must follow the flash, got", c.HoleCenter)
	}
	if c.Pol != gbt.PolTypeClear {
		t.Fatal("layer polarity must be applied")
	}
	// the template itself stays at the origin
	if ap.Primitives[0].(geometry.Circle).Center.X() != 0 {
		t.Fatal("flash mutated the template")
	}
}

func TestAperture_Flash_negative(t *testing.T) {
	am, err := amprocessor.NewApertureMacro("%AMDONUT*1,1,4,0,0*1,0,2,0,0*%")
	if err != nil {
		t.Fatal(err)
	}
	macros := map[string]*amprocessor.ApertureMacro{am.Name: am}

	fs := mmFormat(t)
	var ap Aperture
	if err := ap.Init("50DONUT", fs, macros, 64); err != nil {
		t.Fatal(err)
	}
	prims, err := ap.Flash(10, 0, gbt.PolTypeDark, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(prims) == 0 {
		t.Fatal("annulus flash produced nothing")
	}
	for _, p := range prims {
		tr, ok := p.(geometry.Triangle)
		if !ok {
			t.Fatal("boolean flash must yield a pure triangle mesh")
		}
		if tr.Pol != gbt.PolTypeDark {
			t.Fatal("boolean flash must carry the layer polarity")
		}
		// nothing may cover the erased middle
		cx := (tr.Vertices[0].X() + tr.Vertices[1].X() + tr.Vertices[2].X()) / 3
		cy := (tr.Vertices[0].Y() + tr.Vertices[1].Y() + tr.Vertices[2].Y()) / 3
		if math.Hypot(cx-10, cy) < 0.9 {
			t.Fatal("triangle centroid inside the hole:", cx, cy)
		}
	}
	area := triangleArea(prims)
	want := math.Pi * (4 - 1) // R=2, r=1
	if math.Abs(area-want) > 0.05*want {
		t.Fatal("annulus area: want about", want, "got", area)
	}
}
