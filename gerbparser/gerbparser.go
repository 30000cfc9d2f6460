/*
Package gerbparser converts RS-274X gerber source text into flat,
GPU-renderable primitive buffers.

The pipeline is: splitCommands cuts the raw bytes into command strings,
classify tags each one, and the Parser state machine consumes the tagged
stream in order, driving the aperture registry, the interpolation engine
and the region builder. The result of one parse is a sealed
geometry.GerberData plus the warnings collected along the way; on error
no partial data is returned.
*/
package gerbparser

import (
	"strings"

	"github.com/dsafdsaf132/gerber2gpu/amprocessor"
	"github.com/dsafdsaf132/gerber2gpu/apertures"
	"github.com/dsafdsaf132/gerber2gpu/geometry"
	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	"github.com/dsafdsaf132/gerber2gpu/regions"
	stor "github.com/dsafdsaf132/gerber2gpu/stringsstorage"
	"github.com/dsafdsaf132/gerber2gpu/xy"

	"github.com/go-gl/mathgl/mgl64"
)

// Config tunes one parse. The zero value is usable; NewParser fills in
// the defaults.
type Config struct {
	// ArcRadiusTolerance is the maximum start/end radius disagreement
	// accepted for a single-quadrant arc center candidate.
	ArcRadiusTolerance float64
	// CircleSegments is the contour resolution used when circles enter
	// boolean operations.
	CircleSegments int
}

func DefaultConfig() Config {
	return Config{
		ArcRadiusTolerance: 0.001,
		CircleSegments:     geometry.DefaultCircleSegments,
	}
}

// ParserContext is the whole mutable state of one parse: registries,
// graphics state and the primitive sink. Every parse owns a fresh one,
// nothing is shared between parses.
type ParserContext struct {
	fs        *xy.FormatSpec
	unitsSet  bool
	macros    map[string]*amprocessor.ApertureMacro
	apertures map[int]*apertures.Aperture
	current   *apertures.Aperture
	coord     *xy.XY
	ipMode    gbt.IPmode
	quadMode  gbt.QuadMode
	polarity  gbt.PolType
	penDown   bool
	region    *regions.Region
	collector *geometry.Collector
	warnings  []Warning
}

func newParserContext() *ParserContext {
	return &ParserContext{
		fs:        xy.NewFormatSpec(),
		macros:    make(map[string]*amprocessor.ApertureMacro),
		apertures: make(map[int]*apertures.Aperture),
		coord:     xy.NewXY(),
		ipMode:    gbt.IPModeLinear,
		quadMode:  gbt.QuadModeSingle,
		polarity:  gbt.PolTypeDark,
		collector: geometry.NewCollector(),
	}
}

func (ctx *ParserContext) warn(line int, command, reason string) {
	ctx.warnings = append(ctx.warnings, Warning{Line: line, Command: command, Reason: reason})
}

type Parser struct {
	cfg Config
}

func NewParser(cfg Config) *Parser {
	def := DefaultConfig()
	if cfg.ArcRadiusTolerance <= 0 {
		cfg.ArcRadiusTolerance = def.ArcRadiusTolerance
	}
	if cfg.CircleSegments < 3 {
		cfg.CircleSegments = def.CircleSegments
	}
	return &Parser{cfg: cfg}
}

// Parse processes one complete gerber file. It returns the sealed
// primitive buffers and all warnings; on a structural error the buffers
// are nil and only the warnings gathered so far accompany the error.
func (p *Parser) Parse(src []byte) (*geometry.GerberData, []Warning, error) {
	ctx := newParserContext()
	storage := stor.NewStorage()
	splitCommands(src, storage)

	stopped := false
	for !stopped {
		line, ok := storage.Next()
		if !ok {
			break
		}
		for _, cmd := range classify(line) {
			stop, err := p.apply(ctx, cmd)
			if err != nil {
				return nil, ctx.warnings, err
			}
			if stop {
				stopped = true
				break
			}
		}
	}
	if opened, _ := ctx.region.IsRegionOpened(); ctx.region != nil && opened {
		ctx.warn(ctx.region.G36StringNumber, "G36", "region was never closed, its outline is dropped")
	}
	return ctx.collector.Seal(), ctx.warnings, nil
}

// apply executes one command. The first return value is true on M02.
func (p *Parser) apply(ctx *ParserContext, cmd Command) (bool, error) {
	switch cmd.Kind {
	case CmdSetFormat:
		if err := ctx.fs.Init(cmd.Text); err != nil {
			return false, &FormatError{Line: cmd.Line, Command: cmd.Text, Reason: err.Error()}
		}
	case CmdSetUnits:
		if cmd.Units != 0 {
			ctx.fs.SetUnitsMode(cmd.Units)
		} else if err := ctx.fs.SetUnits(cmd.Text); err != nil {
			return false, &FormatError{Line: cmd.Line, Command: cmd.Text, Reason: err.Error()}
		}
		ctx.unitsSet = true
	case CmdSetCoordinateMode:
		ctx.fs.CoordMode = cmd.CoordMode
	case CmdDefineMacro:
		am, err := amprocessor.NewApertureMacro(cmd.Text)
		if err != nil {
			return false, &MacroEvaluationError{Line: cmd.Line, Command: cmd.Text, Err: err}
		}
		ctx.macros[am.Name] = am
	case CmdDefineAperture:
		ap := new(apertures.Aperture)
		if err := ap.Init(cmd.Body, ctx.fs, ctx.macros, p.cfg.CircleSegments); err != nil {
			if ap.Type == gbt.AptypeMacro {
				return false, &MacroEvaluationError{Line: cmd.Line, Command: cmd.Text, Err: err}
			}
			return false, &FormatError{Line: cmd.Line, Command: cmd.Text, Reason: err.Error()}
		}
		if _, exists := ctx.apertures[ap.Code]; exists {
			ctx.warn(cmd.Line, cmd.Text, "aperture redefined")
		}
		ctx.apertures[ap.Code] = ap
	case CmdSelectAperture:
		ap, ok := ctx.apertures[cmd.Aperture]
		if !ok {
			return false, &UnknownApertureError{Line: cmd.Line, Code: cmd.Aperture}
		}
		ctx.current = ap
	case CmdSetInterpolationMode:
		ctx.ipMode = cmd.Mode
	case CmdSetQuadrantMode:
		ctx.quadMode = cmd.Quadrant
	case CmdSetPolarity:
		ctx.polarity = cmd.Polarity
	case CmdRegionStart:
		if ctx.region != nil {
			if opened, _ := ctx.region.IsRegionOpened(); opened {
				ctx.warn(cmd.Line, cmd.Text, "G36 inside an open region, previous outline is dropped")
			}
		}
		ctx.region = regions.NewRegion(cmd.Line)
	case CmdRegionEnd:
		return false, p.closeRegion(ctx, cmd)
	case CmdCoordinate:
		return false, p.applyCoordinate(ctx, cmd)
	case CmdEndOfFile:
		return true, nil
	default:
		ctx.warn(cmd.Line, cmd.Text, unknownReason(cmd.Text))
	}
	return false, nil
}

// unknownReason names the two extensions that are recognized but
// deliberately unsupported; everything else is just unknown.
func unknownReason(text string) string {
	switch {
	case strings.HasPrefix(text, gbt.GerberApertureBlockDef):
		return "aperture blocks are not supported, command skipped"
	case strings.HasPrefix(text, "%SR"):
		return "step and repeat is not supported, command skipped"
	case strings.HasPrefix(text, "%LR"):
		return "layer rotation is not supported, command skipped"
	default:
		return "unknown command skipped"
	}
}

func (p *Parser) closeRegion(ctx *ParserContext, cmd Command) error {
	if ctx.region == nil {
		ctx.warn(cmd.Line, cmd.Text, "G37 without an open region")
		return nil
	}
	if opened, _ := ctx.region.IsRegionOpened(); !opened {
		ctx.warn(cmd.Line, cmd.Text, "G37 without an open region")
		return nil
	}
	if err := ctx.region.Close(cmd.Line); err != nil {
		return &TriangulationError{Line: cmd.Line, Err: err}
	}
	prims, err := ctx.region.Triangulate(ctx.polarity)
	if err != nil {
		return &TriangulationError{Line: cmd.Line, Err: err}
	}
	ctx.collector.AddAll(prims)
	ctx.region = nil
	return nil
}

func (p *Parser) applyCoordinate(ctx *ParserContext, cmd Command) error {
	if !ctx.fs.Valid() {
		return &FormatError{Line: cmd.Line, Command: cmd.Text,
			Reason: "coordinate data before %FS format specification"}
	}
	if !ctx.unitsSet {
		return &FormatError{Line: cmd.Line, Command: cmd.Text,
			Reason: "coordinate data before %MO unit specification"}
	}

	next := new(xy.XY)
	if err := next.Init(cmd.Body+"D", ctx.fs, ctx.coord); err != nil {
		return &FormatError{Line: cmd.Line, Command: cmd.Text, Reason: err.Error()}
	}

	op := cmd.Op
	if op == 0 {
		// legacy modal operation: the last D-code stays in effect
		if ctx.penDown {
			op = gbt.OpcodeD01_DRAW
		} else {
			op = gbt.OpcodeD02_MOVE
		}
	}

	inRegion := false
	if ctx.region != nil {
		if opened, _ := ctx.region.IsRegionOpened(); opened {
			inRegion = true
		}
	}

	switch op {
	case gbt.OpcodeD02_MOVE:
		ctx.penDown = false
		if inRegion {
			ctx.region.StartRing()
		}
	case gbt.OpcodeD01_DRAW:
		ctx.penDown = true
		if inRegion {
			ctx.region.AddVertex(next.GetX(), next.GetY())
		} else if err := p.draw(ctx, cmd, next); err != nil {
			return err
		}
	case gbt.OpcodeD03_FLASH:
		if inRegion {
			ctx.warn(cmd.Line, cmd.Text, "flash inside a region skipped")
		} else if err := p.flash(ctx, cmd.Line, next.GetX(), next.GetY()); err != nil {
			return err
		}
	}
	ctx.coord = next
	return nil
}

// draw strokes from the current point to next with the active aperture.
// Both endpoints are flashed so the stroke gets round or shaped caps,
// then the connecting geometry is emitted.
func (p *Parser) draw(ctx *ParserContext, cmd Command, next *xy.XY) error {
	if ctx.current == nil {
		return &UnknownApertureError{Line: cmd.Line}
	}
	sx, sy := ctx.coord.GetX(), ctx.coord.GetY()
	ex, ey := next.GetX(), next.GetY()
	width := ctx.current.StrokeRadius * 2

	if err := p.flash(ctx, cmd.Line, sx, sy); err != nil {
		return err
	}
	switch ctx.ipMode {
	case gbt.IPModeLinear:
		if width > 0 {
			tris := geometry.LineToTriangles(
				mgl64.Vec2{sx, sy}, mgl64.Vec2{ex, ey}, width, ctx.polarity)
			for _, tr := range tris {
				ctx.collector.Add(tr)
			}
		}
	case gbt.IPModeCwC, gbt.IPModeCCwC:
		arc, err := resolveArc(sx, sy, ex, ey, next.GetI(), next.GetJ(),
			ctx.ipMode == gbt.IPModeCwC, ctx.quadMode, p.cfg.ArcRadiusTolerance)
		if err != nil {
			return &ArcResolutionError{Line: cmd.Line, Command: cmd.Text, Reason: err.Error()}
		}
		ctx.collector.Add(geometry.Arc{
			Center:     mgl64.Vec2{arc.CenterX, arc.CenterY},
			Radius:     arc.Radius,
			StartAngle: arc.StartAngle,
			Sweep:      arc.Sweep,
			Thickness:  width,
			Pol:        ctx.polarity,
		})
	}
	return p.flash(ctx, cmd.Line, ex, ey)
}

func (p *Parser) flash(ctx *ParserContext, line int, x, y float64) error {
	if ctx.current == nil {
		return &UnknownApertureError{Line: line}
	}
	prims, err := ctx.current.Flash(x, y, ctx.polarity, p.cfg.CircleSegments)
	if err != nil {
		return &TriangulationError{Line: line, Err: err}
	}
	ctx.collector.AddAll(prims)
	return nil
}
