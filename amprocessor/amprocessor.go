//Aperture Macros support
package amprocessor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/dsafdsaf132/gerber2gpu/calculator"
	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	"github.com/dsafdsaf132/gerber2gpu/geometry"
	"github.com/dsafdsaf132/gerber2gpu/triangulate"
)

type AMPrimitiveType int

const (
	AMPrimitive_Comment    AMPrimitiveType = 0
	AMPrimitive_Circle     AMPrimitiveType = 1
	AMPrimitive_VectLine   AMPrimitiveType = 20
	AMPrimitive_CenterLine AMPrimitiveType = 21
	AMPrimitive_OutLine    AMPrimitiveType = 4
	AMPrimitive_Polygon    AMPrimitiveType = 5
	AMPrimitive_Moire      AMPrimitiveType = 6
	AMPrimitive_Thermal    AMPrimitiveType = 7
)

func (amp AMPrimitiveType) String() string {
	var retVal string
	switch amp {
	case AMPrimitive_Comment:
		retVal = "comment"
	case AMPrimitive_Circle:
		retVal = "circle"
	case AMPrimitive_VectLine:
		retVal = "vector line"
	case AMPrimitive_CenterLine:
		retVal = "center line"
	case AMPrimitive_OutLine:
		retVal = "outline"
	case AMPrimitive_Polygon:
		retVal = "polygon"
	case AMPrimitive_Moire:
		retVal = "moire"
	case AMPrimitive_Thermal:
		retVal = "thermal"
	default:
		retVal = "unknown"
	}
	return retVal
}

// ApertureMacro keeps the %AM% body as raw statements; expressions stay
// unevaluated until an aperture definition supplies actual parameters.
type ApertureMacro struct {
	Name        string
	Statements  []string
	HasNegative bool // any primitive statement with exposure 0
}

func (am *ApertureMacro) String() string {
	retVal := "Aperture macro " + am.Name + ":\n"
	for i := range am.Statements {
		retVal = retVal + "\t" + am.Statements[i] + "\n"
	}
	return retVal
}

// NewApertureMacro parses a %AMname*statement*statement*...*% block.
func NewApertureMacro(src string) (*ApertureMacro, error) {
	content := strings.TrimSpace(src)
	if !strings.HasPrefix(content, gbt.GerberApertureMacroDef) {
		return nil, errors.New("aperture macro definition must start with " + gbt.GerberApertureMacroDef)
	}
	content = strings.TrimPrefix(content, gbt.GerberApertureMacroDef)
	content = strings.TrimSuffix(content, "%")

	parts := strings.Split(content, "*")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return nil, errors.New("aperture macro has no name")
	}

	retVal := new(ApertureMacro)
	retVal.Name = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}
		retVal.Statements = append(retVal.Statements, stmt)
	}
	retVal.HasNegative = checkHasNegative(retVal.Statements)
	return retVal, nil
}

// a statement opens a negative primitive when its exposure modifier is a
// literal zero
func checkHasNegative(statements []string) bool {
	for _, stmt := range statements {
		if isComment(stmt) || isAssignment(stmt) {
			continue
		}
		parts := strings.Split(stmt, ",")
		if len(parts) >= 2 {
			exposure := strings.TrimSpace(parts[1])
			if exposure == "0" || exposure == "0.0" {
				return true
			}
		}
	}
	return false
}

func isComment(stmt string) bool {
	return stmt == "0" || strings.HasPrefix(stmt, "0 ")
}

func isAssignment(stmt string) bool {
	return strings.HasPrefix(stmt, "$") && strings.ContainsRune(stmt, '=')
}

// Instantiate evaluates the macro body against the supplied positional
// parameters ($1, $2, ...) and returns the concrete primitives. Statements
// run strictly in order; assignments feed later statements. segments sets
// the polygonization density used for outline work.
func (am *ApertureMacro) Instantiate(params []float64, segments int) ([]geometry.Primitive, error) {
	variables := make(map[string]float64, len(params))
	for i, p := range params {
		variables["$"+strconv.Itoa(i+1)] = p
	}

	primitives := make([]geometry.Primitive, 0)
	for _, stmt := range am.Statements {
		if isComment(stmt) {
			continue
		}
		if isAssignment(stmt) {
			eqIdx := strings.IndexByte(stmt, '=')
			varName := strings.TrimSpace(stmt[:eqIdx])
			value, err := calculator.CalcExpression(stmt[eqIdx+1:], variables)
			if err != nil {
				return nil, fmt.Errorf("macro %s, statement %q: %w", am.Name, stmt, err)
			}
			variables[varName] = value
			continue
		}
		prims, err := instantiateStatement(stmt, variables, segments)
		if err != nil {
			return nil, fmt.Errorf("macro %s, statement %q: %w", am.Name, stmt, err)
		}
		primitives = append(primitives, prims...)
	}
	return primitives, nil
}

func evalModifiers(parts []string, variables map[string]float64) ([]float64, error) {
	out := make([]float64, len(parts))
	for i, part := range parts {
		v, err := calculator.CalcExpression(part, variables)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func polarityOf(exposure float64) gbt.PolType {
	if exposure < 0.5 {
		return gbt.PolTypeClear
	}
	return gbt.PolTypeDark
}

func instantiateStatement(stmt string, variables map[string]float64, segments int) ([]geometry.Primitive, error) {
	parts := strings.Split(stmt, ",")
	code, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, errors.New("unreadable primitive code")
	}

	switch AMPrimitiveType(code) {
	case AMPrimitive_Circle:
		// 1,exposure,diameter,centerX,centerY[,rotation]
		if len(parts) < 5 {
			return nil, errors.New("circle primitive needs at least 4 modifiers")
		}
		m, err := evalModifiers(parts[1:5], variables)
		if err != nil {
			return nil, err
		}
		return []geometry.Primitive{geometry.Circle{
			Center: mgl64.Vec2{m[2], m[3]},
			Radius: m[1] / 2,
			Pol:    polarityOf(m[0]),
		}}, nil

	case AMPrimitive_OutLine:
		// 4,exposure,vertices,x1,y1,...,xn,yn[,rotation]
		if len(parts) < 4 {
			return nil, errors.New("outline primitive needs at least 3 modifiers")
		}
		head, err := evalModifiers(parts[1:3], variables)
		if err != nil {
			return nil, err
		}
		pol := polarityOf(head[0])
		nVerts := int(head[1])
		if nVerts < 3 {
			return nil, errors.New("outline primitive needs at least 3 vertices")
		}
		if len(parts) < 3+nVerts*2 {
			return nil, errors.New("outline primitive is short of vertex modifiers")
		}
		coords, err := evalModifiers(parts[3:3+nVerts*2], variables)
		if err != nil {
			return nil, err
		}
		rotation := 0.0
		if len(parts) > 3+nVerts*2 {
			deg, err := calculator.CalcExpression(parts[3+nVerts*2], variables)
			if err != nil {
				return nil, err
			}
			rotation = mgl64.DegToRad(deg)
		}
		indices, err := triangulate.Triangulate(coords, nil)
		if err != nil {
			return nil, err
		}
		out := make([]geometry.Primitive, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			tri := geometry.Triangle{
				Vertices: [3]mgl64.Vec2{
					{coords[2*indices[i]], coords[2*indices[i]+1]},
					{coords[2*indices[i+1]], coords[2*indices[i+1]+1]},
					{coords[2*indices[i+2]], coords[2*indices[i+2]+1]},
				},
				Pol: pol,
			}
			out = append(out, tri.Rotate(rotation, mgl64.Vec2{}))
		}
		return out, nil

	case AMPrimitive_Polygon:
		// 5,exposure,vertices,centerX,centerY,diameter[,rotation]
		if len(parts) < 6 {
			return nil, errors.New("polygon primitive needs at least 5 modifiers")
		}
		m, err := evalModifiers(parts[1:6], variables)
		if err != nil {
			return nil, err
		}
		rotation := 0.0
		if len(parts) > 6 {
			deg, err := calculator.CalcExpression(parts[6], variables)
			if err != nil {
				return nil, err
			}
			rotation = mgl64.DegToRad(deg)
		}
		nVerts := int(m[1])
		if nVerts < 3 {
			return nil, errors.New("polygon primitive needs at least 3 vertices")
		}
		tris := geometry.RegularPolygonTriangles(
			mgl64.Vec2{m[2], m[3]}, m[4], nVerts, 0, polarityOf(m[0]))
		out := make([]geometry.Primitive, 0, len(tris))
		for _, tri := range tris {
			// rotation is about the macro origin, not the polygon center
			out = append(out, tri.Rotate(rotation, mgl64.Vec2{}))
		}
		return out, nil

	case AMPrimitive_Thermal:
		// 7,centerX,centerY,outerDiameter,innerDiameter,gapThickness[,rotation]
		// thermals carry no exposure modifier, they are always dark
		if len(parts) < 6 {
			return nil, errors.New("thermal primitive needs at least 5 modifiers")
		}
		m, err := evalModifiers(parts[1:6], variables)
		if err != nil {
			return nil, err
		}
		rotation := 0.0
		if len(parts) > 6 {
			deg, err := calculator.CalcExpression(parts[6], variables)
			if err != nil {
				return nil, err
			}
			rotation = mgl64.DegToRad(deg)
		}
		return []geometry.Primitive{geometry.Thermal{
			Center:        mgl64.Vec2{m[0], m[1]},
			OuterDiameter: m[2],
			InnerDiameter: m[3],
			GapThickness:  m[4],
			Rotation:      rotation,
			Pol:           gbt.PolTypeDark,
		}}, nil

	case AMPrimitive_VectLine:
		// 20,exposure,width,startX,startY,endX,endY[,rotation]
		if len(parts) < 7 {
			return nil, errors.New("vector line primitive needs at least 6 modifiers")
		}
		m, err := evalModifiers(parts[1:7], variables)
		if err != nil {
			return nil, err
		}
		rotation := 0.0
		if len(parts) > 7 {
			deg, err := calculator.CalcExpression(parts[7], variables)
			if err != nil {
				return nil, err
			}
			rotation = mgl64.DegToRad(deg)
		}
		tris := geometry.LineToTriangles(
			mgl64.Vec2{m[2], m[3]}, mgl64.Vec2{m[4], m[5]}, m[1], polarityOf(m[0]))
		out := make([]geometry.Primitive, 0, len(tris))
		for _, tri := range tris {
			out = append(out, tri.Rotate(rotation, mgl64.Vec2{}))
		}
		return out, nil

	case AMPrimitive_CenterLine:
		// 21,exposure,width,height,centerX,centerY[,rotation]
		if len(parts) < 6 {
			return nil, errors.New("center line primitive needs at least 5 modifiers")
		}
		m, err := evalModifiers(parts[1:6], variables)
		if err != nil {
			return nil, err
		}
		rotation := 0.0
		if len(parts) > 6 {
			deg, err := calculator.CalcExpression(parts[6], variables)
			if err != nil {
				return nil, err
			}
			rotation = mgl64.DegToRad(deg)
		}
		center := mgl64.Vec2{m[3], m[4]}
		tris := geometry.RectangleTriangles(center, m[1], m[2], rotation, polarityOf(m[0]))
		out := make([]geometry.Primitive, 0, len(tris))
		for _, tri := range tris {
			out = append(out, tri)
		}
		return out, nil

	default:
		// moire and the other exotic codes draw nothing
		return nil, nil
	}
}
