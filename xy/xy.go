package xy

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
)

const GerberFormatSpec string = "%FS"
const GerberMOIN string = "%MOIN*%"
const GerberMOMM string = "%MOMM*%"

const InchesToMM float64 = gbt.MMPerInch

// Function checks against non-number characters in the string
func isNumString(ins string) bool {
	v := []byte(ins)
	for _, c := range v {
		if (c < 0x30) || (c > 0x39) {
			return false
		}
	}
	return true
}

/*
############################ format specification #####################
*/

// Format specification object
type FormatSpec struct {
	Head      string
	MUString  string
	XI        int // digits in the integer part
	XD        int // digits in the fractional part
	YI        int
	YD        int
	MU        float64
	CoordMode gbt.CoordMode
}

func NewFormatSpec() *FormatSpec {
	return &FormatSpec{MU: 1.0, CoordMode: gbt.CoordModeAbsolute}
}

// Init parses a %FS...*% extended command. Units stay at their current
// value; set them separately with SetUnits or SetUnitsMode.
func (fs *FormatSpec) Init(ins string) error {
	fs.XI = 0
	fs.XD = 0
	fs.YI = 0
	fs.YD = 0
	if fs.MU == 0 {
		fs.MU = 1.0
	}
	fs.Head = strings.ToUpper(ins)

	if !strings.HasPrefix(fs.Head, GerberFormatSpec) || !strings.HasSuffix(fs.Head, "*%") {
		return fmt.Errorf("bad format specification %q", ins)
	}
	body := fs.Head[len(GerberFormatSpec):]
	if len(body) < 2 {
		return fmt.Errorf("truncated format specification %q", ins)
	}
	switch body[0] {
	case 'L':
		// leading zeros omitted, the only supported suppression
	case 'T':
		return fmt.Errorf("trailing zero suppression is not supported: %q", ins)
	default:
		return fmt.Errorf("bad zero suppression flag in %q", ins)
	}
	switch body[1] {
	case 'A':
		fs.CoordMode = gbt.CoordModeAbsolute
	case 'I':
		fs.CoordMode = gbt.CoordModeIncremental
	default:
		return fmt.Errorf("bad coordinate mode flag in %q", ins)
	}

	xPos := strings.IndexByte(fs.Head, 'X')
	yPos := strings.LastIndexByte(fs.Head, 'Y')
	suffPos := strings.LastIndexByte(fs.Head, '*')
	if xPos == -1 || yPos == -1 || xPos >= yPos || yPos >= suffPos {
		return fmt.Errorf("bad format specification %q", ins)
	}
	tmpxi, err := strconv.Atoi(fs.Head[xPos+1 : xPos+2])
	if err != nil {
		return fmt.Errorf("bad X digits in %q", ins)
	}
	tmpxd, err := strconv.Atoi(fs.Head[xPos+2 : yPos])
	if err != nil {
		return fmt.Errorf("bad X digits in %q", ins)
	}
	tmpyi, err := strconv.Atoi(fs.Head[yPos+1 : yPos+2])
	if err != nil {
		return fmt.Errorf("bad Y digits in %q", ins)
	}
	tmpyd, err := strconv.Atoi(fs.Head[yPos+2 : suffPos])
	if err != nil {
		return fmt.Errorf("bad Y digits in %q", ins)
	}
	if tmpxi != tmpyi || tmpxd != tmpyd {
		return fmt.Errorf("X and Y formats differ in %q", ins)
	}
	// 4.1.1 gerber format conformance test
	if tmpxi > 6 {
		return fmt.Errorf("too many integer digits in %q", ins)
	}
	if tmpxd > 7 || tmpxd < 3 {
		return fmt.Errorf("fractional digits out of range in %q", ins)
	}
	fs.XI = tmpxi
	fs.XD = tmpxd
	fs.YI = tmpyi
	fs.YD = tmpyd
	return nil
}

// SetUnits parses a %MOIN*% or %MOMM*% extended command.
func (fs *FormatSpec) SetUnits(mu string) error {
	fs.MUString = strings.ToUpper(mu)
	switch fs.MUString {
	case GerberMOIN:
		fs.MU = InchesToMM
	case GerberMOMM:
		fs.MU = 1.0
	default:
		return fmt.Errorf("bad units specification %q", mu)
	}
	return nil
}

// SetUnitsMode sets the units directly, for legacy G70/G71 commands.
func (fs *FormatSpec) SetUnitsMode(u gbt.Units) {
	fs.MU = u.Multiplier()
}

func (fs *FormatSpec) ReadXI() int {
	return fs.XI
}
func (fs *FormatSpec) ReadXD() int {
	return fs.XD
}
func (fs *FormatSpec) ReadYI() int {
	return fs.YI
}
func (fs *FormatSpec) ReadYD() int {
	return fs.YD
}
func (fs *FormatSpec) ReadMU() float64 {
	return fs.MU
}

// Valid reports whether a %FS command has been seen.
func (fs *FormatSpec) Valid() bool {
	return fs.XD != 0
}

/*
######################### coordinates #########################################
*/
/*
 Coordinates base type
*/
type axisPoint struct {
	valFloat float64
}

func (ap *axisPoint) clear() {
	ap.valFloat = 0.0
}

// initializes the point on the axis
// n is the number of places for int part
// m is the number of places for frac part
// s is the scale factor 1.0 or 25.4 (mm/inches)
func (ap *axisPoint) init(ins string, n, m int, s float64) error {
	var neg = false
	var ws string

	if strings.HasPrefix(ins, "-") {
		neg = true
		ws = strings.TrimPrefix(ins, "-")
	} else {
		ws = strings.TrimPrefix(ins, "+")
	}
	if len(ws) > (n + m) {
		return fmt.Errorf("coordinate %q longer than %d.%d format", ins, n, m)
	}
	if !isNumString(ws) {
		return fmt.Errorf("non-numeric coordinate %q", ins)
	}
	// left-pad with zeros: leading zero suppression
	ps := make([]byte, n+m)
	var inso = len(ps) - len(ws)
	for i := 0; i < inso; i++ {
		ps[i] = '0'
	}
	for i := inso; i < len(ps); i++ {
		ps[i] = ws[i-inso]
	}

	ipart, err := strconv.Atoi(string(ps[0:n]))
	if err != nil {
		return err
	}
	fpart, err := strconv.Atoi(string(ps[n : m+n]))
	if err != nil {
		return err
	}
	tmpfloat := float64(fpart) / math.Pow10(m)
	tmpfloat += float64(ipart)
	if neg {
		tmpfloat *= -1.0
	}
	ap.valFloat = tmpfloat * s
	return nil
}

// returns axis point as float64 value
func (ap *axisPoint) getfval() float64 {
	return ap.valFloat
}

// XY is one decoded coordinate block. X and Y are modal: absent axes keep
// the previous node's value. I and J are not modal and reset each block.
type XY struct {
	nodeNumber  uint32
	coordString string // string representation
	x           axisPoint
	y           axisPoint
	// offsets
	i axisPoint
	j axisPoint
	// which words were present in the source block
	hasX bool
	hasY bool
	hasI bool
	hasJ bool
}

func NewXY() *XY {
	retVal := new(XY)
	retVal.SetX(0)
	retVal.SetY(0)
	return retVal
}

func (xy *XY) String() string {
	retVal := "XY object #" +
		strconv.Itoa(int(xy.nodeNumber)) +
		": x,y=(" +
		strconv.FormatFloat(xy.x.getfval(), 'f', 5, 64) +
		"," +
		strconv.FormatFloat(xy.y.getfval(), 'f', 5, 64) +
		") " +
		"i,j=(" +
		strconv.FormatFloat(xy.i.getfval(), 'f', 5, 64) +
		"," +
		strconv.FormatFloat(xy.j.getfval(), 'f', 5, 64) +
		")"
	return retVal
}

// tolerance is the radius of the circle around first point
// inisde of which another point will be treated as equal to the first one
func (xy *XY) Equals(another *XY, tolerance float64) bool {
	return (math.Hypot(xy.GetX()-another.GetX(), xy.GetY()-another.GetY())) < tolerance
}

func (xy *XY) GetX() float64 {
	return xy.x.valFloat
}

func (xy *XY) SetX(x float64) {
	xy.x.valFloat = x
}

func (xy *XY) GetY() float64 {
	return xy.y.valFloat
}

func (xy *XY) SetY(y float64) {
	xy.y.valFloat = y
}

func (xy *XY) GetI() float64 {
	return xy.i.valFloat
}

func (xy *XY) SetI(i float64) {
	xy.i.valFloat = i
}

func (xy *XY) GetJ() float64 {
	return xy.j.valFloat
}

func (xy *XY) SetJ(j float64) {
	xy.j.valFloat = j
}

func (xy *XY) HasX() bool { return xy.hasX }
func (xy *XY) HasY() bool { return xy.hasY }
func (xy *XY) HasI() bool { return xy.hasI }
func (xy *XY) HasJ() bool { return xy.hasJ }

// Init decodes a coordinate block like X100Y-200I30J40D01. The trailing
// D must be the last character; the opcode digits are the caller's
// business. prev supplies modal values, nil means the origin.
func (xy *XY) Init(sc string, fs *FormatSpec, prev *XY) error {
	if prev == nil { // first node
		xy.nodeNumber = 0
		xy.x.clear()
		xy.y.clear()
	} else {
		*xy = *prev
		xy.nodeNumber = prev.nodeNumber + 1
	}
	// offsets are not modal
	xy.i.clear()
	xy.j.clear()
	xy.hasX = false
	xy.hasY = false
	xy.hasI = false
	xy.hasJ = false
	xy.coordString = strings.ToUpper(sc)
	if !fs.Valid() {
		return errors.New("coordinate data before format specification")
	}
	xi := fs.ReadXI()
	xd := fs.ReadXD()
	masks := []byte{'X', 'Y', 'I', 'J', 'D'}
	mpos := []int{-1, -1, -1, -1, -1}
	var found int = 0 // found signatures
	for i := range masks {
		mpos[i] = strings.IndexByte(xy.coordString, masks[i])
		if mpos[i] != -1 {
			found++
		}
	}
	var retErr error
	if mpos[len(mpos)-1] == -1 {
		retErr = fmt.Errorf("no trailing D in coordinate block %q", sc)
		goto fExit
	}
	if mpos[len(mpos)-1] != (len(xy.coordString) - 1) {
		retErr = fmt.Errorf("trailing D is not last in coordinate block %q", sc)
		goto fExit
	}
	{
		m2 := make([]byte, found) // mask array contains only found LETTERS
		p2 := make([]int, found)  // and their positions
		j := 0
		for i := range masks {
			if mpos[i] != -1 {
				p2[j] = mpos[i]
				m2[j] = masks[i]
				j++
			}
		}
		// sort by position
		i := 0
		for {
			if i < j-1 {
				if p2[i] > p2[i+1] {
					p2[i], p2[i+1] = p2[i+1], p2[i]
					m2[i], m2[i+1] = m2[i+1], m2[i]
					if i != 0 {
						i--
					}
				} else {
					i++
				}
			} else {
				break
			}
		}

		sf := fs.ReadMU()
		var tmp axisPoint
	L1:
		for i := range m2 {
			switch m2[i] {
			case 'X':
				if retErr = tmp.init(xy.coordString[p2[i]+1:p2[i+1]], xi, xd, sf); retErr != nil {
					break L1
				}
				if fs.CoordMode == gbt.CoordModeIncremental && prev != nil {
					xy.x.valFloat = prev.GetX() + tmp.getfval()
				} else {
					xy.x.valFloat = tmp.getfval()
				}
				xy.hasX = true
			case 'Y':
				if retErr = tmp.init(xy.coordString[p2[i]+1:p2[i+1]], xi, xd, sf); retErr != nil {
					break L1
				}
				if fs.CoordMode == gbt.CoordModeIncremental && prev != nil {
					xy.y.valFloat = prev.GetY() + tmp.getfval()
				} else {
					xy.y.valFloat = tmp.getfval()
				}
				xy.hasY = true
			case 'I':
				// offsets are always relative, never unit-converted twice
				if retErr = xy.i.init(xy.coordString[p2[i]+1:p2[i+1]], xi, xd, sf); retErr != nil {
					break L1
				}
				xy.hasI = true
			case 'J':
				if retErr = xy.j.init(xy.coordString[p2[i]+1:p2[i+1]], xi, xd, sf); retErr != nil {
					break L1
				}
				xy.hasJ = true
			case 'D':
				break L1
			}
		}
	}
fExit:
	if retErr != nil {
		// clear all fields and links
		xy.x.clear()
		xy.y.clear()
		xy.i.clear()
		xy.j.clear()
		xy.coordString = ""
	}
	return retErr
}
