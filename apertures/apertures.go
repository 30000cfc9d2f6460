// Package apertures decodes %AD% extended commands into flash-ready
// primitive templates.
//
// Standard apertures (C, R, O, P) are decomposed once at definition time
// into circles and triangles centered at the aperture origin; macro
// references are instantiated through their ApertureMacro. Flashing then
// reduces to offsetting the template.
package apertures

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dsafdsaf132/gerber2gpu/amprocessor"
	"github.com/dsafdsaf132/gerber2gpu/geometry"
	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	"github.com/dsafdsaf132/gerber2gpu/xy"

	"github.com/go-gl/mathgl/mgl64"
)

type Aperture struct {
	Code         int
	SourceString string
	Type         gbt.GerberApType
	XSize        float64
	YSize        float64
	Diameter     float64
	HoleDiameter float64
	Vertices     int
	RotAngle     float64
	MacroName    string

	// StrokeRadius is half the pen width used when this aperture draws
	// lines and arcs. Zero for macro apertures.
	StrokeRadius float64

	// Primitives is the flash template, centered at the origin.
	Primitives []geometry.Primitive

	// HasNegative is true when the template contains clear-exposure
	// primitives, which forces the boolean path on every flash.
	HasNegative bool
}

func (apert *Aperture) GetCode() int {
	return apert.Code
}

// Init decodes the body of an %AD% command, everything between "%ADD"
// and the closing "*%". Dimensions are scaled by the unit multiplier of
// fs. Macro references are resolved against macros and instantiated
// immediately, circular contours using the given segment count.
func (apert *Aperture) Init(sourceString string, fs *xy.FormatSpec,
	macros map[string]*amprocessor.ApertureMacro, segments int) error {

	sourceString = strings.TrimSpace(sourceString)
	apert.SourceString = sourceString

	codeEnd := 0
	for codeEnd < len(sourceString) && sourceString[codeEnd] >= '0' && sourceString[codeEnd] <= '9' {
		codeEnd++
	}
	if codeEnd == 0 {
		return errors.New("bad aperture number")
	}
	var err error
	apert.Code, err = strconv.Atoi(sourceString[:codeEnd])
	if err != nil {
		return errors.New("bad aperture number")
	}
	if apert.Code < 10 {
		return fmt.Errorf("aperture code D%d is reserved", apert.Code)
	}

	rest := sourceString[codeEnd:]
	shape := rest
	paramString := ""
	if comma := strings.IndexByte(rest, ','); comma >= 0 {
		shape = rest[:comma]
		paramString = rest[comma+1:]
	}
	shape = strings.TrimSpace(shape)
	if shape == "" {
		return errors.New("aperture without a shape")
	}

	params, err := splitParams(paramString)
	if err != nil {
		return err
	}
	mu := fs.ReadMU()

	switch shape {
	case "C":
		apert.Type = gbt.AptypeCircle
		if len(params) < 1 || len(params) > 2 {
			return errors.New("bad number of parameters for circle aperture")
		}
		apert.Diameter = params[0] * mu
		if len(params) == 2 {
			apert.HoleDiameter = params[1] * mu
		}
		apert.StrokeRadius = apert.Diameter / 2
		apert.Primitives = []geometry.Primitive{geometry.Circle{
			Radius:     apert.Diameter / 2,
			Pol:        gbt.PolTypeDark,
			HoleRadius: apert.HoleDiameter / 2,
		}}
	case "R":
		apert.Type = gbt.AptypeRectangle
		if len(params) < 2 || len(params) > 3 {
			return errors.New("bad number of parameters for rectangle aperture")
		}
		apert.XSize = params[0] * mu
		apert.YSize = params[1] * mu
		if len(params) == 3 {
			apert.HoleDiameter = params[2] * mu
		}
		apert.StrokeRadius = math.Max(apert.XSize, apert.YSize) / 2
		apert.Primitives = rectangleTemplate(apert.XSize, apert.YSize, apert.HoleDiameter/2)
	case "O":
		apert.Type = gbt.AptypeObround
		if len(params) < 2 || len(params) > 3 {
			return errors.New("bad number of parameters for obround aperture")
		}
		apert.XSize = params[0] * mu
		apert.YSize = params[1] * mu
		if len(params) == 3 {
			apert.HoleDiameter = params[2] * mu
		}
		apert.StrokeRadius = math.Min(apert.XSize, apert.YSize) / 2
		apert.Primitives = obroundTemplate(apert.XSize, apert.YSize, apert.HoleDiameter/2)
	case "P":
		apert.Type = gbt.AptypePoly
		if len(params) < 2 || len(params) > 4 {
			return errors.New("bad number of parameters for polygon aperture")
		}
		apert.Diameter = params[0] * mu
		apert.Vertices = int(params[1])
		if apert.Vertices < 3 {
			return errors.New("polygon aperture needs at least 3 vertices")
		}
		if len(params) > 2 {
			apert.RotAngle = params[2]
		}
		if len(params) > 3 {
			apert.HoleDiameter = params[3] * mu
		}
		apert.StrokeRadius = apert.Diameter / 2
		tris := geometry.RegularPolygonTriangles(mgl64.Vec2{}, apert.Diameter,
			apert.Vertices, mgl64.DegToRad(apert.RotAngle), gbt.PolTypeDark)
		apert.Primitives = make([]geometry.Primitive, 0, len(tris))
		for _, tr := range tris {
			tr.HoleRadius = apert.HoleDiameter / 2
			apert.Primitives = append(apert.Primitives, tr)
		}
	default:
		apert.Type = gbt.AptypeMacro
		apert.MacroName = shape
		macro, ok := macros[shape]
		if !ok {
			return fmt.Errorf("reference to undefined aperture macro %q", shape)
		}
		// the macro body mixes parameters with literal dimensions, so the
		// whole instantiated template is converted to millimeters at once
		apert.Primitives, err = macro.Instantiate(params, segments)
		if err != nil {
			return fmt.Errorf("macro %q: %v", shape, err)
		}
		if mu != 1 {
			for i := range apert.Primitives {
				apert.Primitives[i] = apert.Primitives[i].ScaleBy(mu)
			}
		}
	}

	for _, p := range apert.Primitives {
		if p.Polarity() == gbt.PolTypeClear {
			apert.HasNegative = true
			break
		}
	}
	return nil
}

// Flash places the template at (x, y) with the layer polarity applied.
// Templates holding clear-exposure primitives are collapsed through
// boolean operations into a plain triangle mesh first.
func (apert *Aperture) Flash(x, y float64, pol gbt.PolType, segments int) ([]geometry.Primitive, error) {
	if apert.HasNegative {
		offset := make([]geometry.Primitive, len(apert.Primitives))
		for i, p := range apert.Primitives {
			offset[i] = p.OffsetBy(x, y)
		}
		return geometry.CombineByExposure(offset, segments, pol)
	}
	out := make([]geometry.Primitive, 0, len(apert.Primitives))
	for _, p := range apert.Primitives {
		switch v := p.OffsetBy(x, y).(type) {
		case geometry.Triangle:
			v.Pol = pol
			out = append(out, v)
		case geometry.Circle:
			v.Pol = pol
			out = append(out, v)
		case geometry.Arc:
			v.Pol = pol
			out = append(out, v)
		case geometry.Thermal:
			v.Pol = pol
			out = append(out, v)
		}
	}
	return out, nil
}

func splitParams(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "X")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad aperture parameter %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func rectangleTemplate(width, height, holeRadius float64) []geometry.Primitive {
	hw, hh := width/2, height/2
	v1 := mgl64.Vec2{-hw, -hh}
	v2 := mgl64.Vec2{hw, -hh}
	v3 := mgl64.Vec2{hw, hh}
	v4 := mgl64.Vec2{-hw, hh}
	return []geometry.Primitive{
		geometry.Triangle{Vertices: [3]mgl64.Vec2{v1, v2, v3}, Pol: gbt.PolTypeDark, HoleRadius: holeRadius},
		geometry.Triangle{Vertices: [3]mgl64.Vec2{v1, v3, v4}, Pol: gbt.PolTypeDark, HoleRadius: holeRadius},
	}
}

// obroundTemplate splits a stadium shape into two end circles and a
// central rectangle. The circles sit on the long axis.
func obroundTemplate(width, height, holeRadius float64) []geometry.Primitive {
	short := math.Min(width, height)
	long := math.Max(width, height)
	radius := short / 2
	halfSpan := (long - short) / 2

	var c1, c2 mgl64.Vec2
	var rectW, rectH float64
	if width > height {
		c1 = mgl64.Vec2{-halfSpan, 0}
		c2 = mgl64.Vec2{halfSpan, 0}
		rectW, rectH = long-short, height
	} else {
		c1 = mgl64.Vec2{0, -halfSpan}
		c2 = mgl64.Vec2{0, halfSpan}
		rectW, rectH = width, long-short
	}

	out := []geometry.Primitive{
		geometry.Circle{Center: c1, Radius: radius, Pol: gbt.PolTypeDark, HoleRadius: holeRadius},
		geometry.Circle{Center: c2, Radius: radius, Pol: gbt.PolTypeDark, HoleRadius: holeRadius},
	}
	if rectW > 0 && rectH > 0 {
		out = append(out, rectangleTemplate(rectW, rectH, holeRadius)...)
	}
	return out
}
