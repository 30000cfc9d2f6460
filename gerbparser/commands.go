package gerbparser

import (
	"strconv"
	"strings"
	"unicode"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	stor "github.com/dsafdsaf132/gerber2gpu/stringsstorage"
	"github.com/dsafdsaf132/gerber2gpu/xy"
)

/* ----- gerber string tokenizer ------------------------------------ */

// CommandKind tags one parsed instruction. Classification happens once,
// at tokenization; the state machine dispatches on the tag only.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdSetFormat
	CmdSetUnits
	CmdDefineAperture
	CmdDefineMacro
	CmdSelectAperture
	CmdSetInterpolationMode
	CmdSetQuadrantMode
	CmdSetCoordinateMode
	CmdSetPolarity
	CmdCoordinate
	CmdRegionStart
	CmdRegionEnd
	CmdEndOfFile
)

func (k CommandKind) String() string {
	switch k {
	case CmdSetFormat:
		return "SetFormat"
	case CmdSetUnits:
		return "SetUnits"
	case CmdDefineAperture:
		return "DefineAperture"
	case CmdDefineMacro:
		return "DefineMacro"
	case CmdSelectAperture:
		return "SelectAperture"
	case CmdSetInterpolationMode:
		return "SetInterpolationMode"
	case CmdSetQuadrantMode:
		return "SetQuadrantMode"
	case CmdSetCoordinateMode:
		return "SetCoordinateMode"
	case CmdSetPolarity:
		return "SetPolarity"
	case CmdCoordinate:
		return "Coordinate"
	case CmdRegionStart:
		return "RegionStart"
	case CmdRegionEnd:
		return "RegionEnd"
	case CmdEndOfFile:
		return "EndOfFile"
	default:
		return "Unknown"
	}
}

// Command is one immutable instruction produced by the tokenizer and
// consumed exactly once by the state machine. Only the fields relevant
// to Kind are populated.
type Command struct {
	Kind CommandKind
	Line int
	Text string

	Mode      gbt.IPmode    // SetInterpolationMode
	Quadrant  gbt.QuadMode  // SetQuadrantMode
	CoordMode gbt.CoordMode // SetCoordinateMode
	Units     gbt.Units     // SetUnits issued by legacy G70/G71
	Polarity  gbt.PolType   // SetPolarity
	Aperture  int           // SelectAperture
	Op        gbt.ActType   // Coordinate; zero when the D-code is implicit
	Body      string        // Coordinate X/Y/I/J text, or %AD body after "%ADD"
}

// splitCommands cuts the raw file into command strings.
//
// Everything between a '%' and the next '%' is one extended command,
// newlines removed, both percent signs kept. Outside extended commands
// each '*'-terminated word is one command, the '*' dropped. Comments
// (G04/G4) are discarded here; every surviving command is uppercased
// and remembers the line it started on.
func splitCommands(buf []byte, dst *stor.Storage) {
	line := 1
	a := 0
	b := len(buf)
	for a < b {
		c := buf[a]
		if c == '\n' {
			line++
			a++
			continue
		}
		if unicode.IsSpace(rune(c)) {
			a++
			continue
		}
		startLine := line
		if c == '%' {
			start := a
			a++
			for a < b && buf[a] != '%' {
				if buf[a] == '\n' {
					line++
				}
				a++
			}
			if a < b {
				a++
			}
			token := filterNewLines(string(buf[start:a]))
			dst.Accept(strings.ToUpper(strings.TrimSpace(token)), startLine)
			continue
		}
		if c == '*' {
			a++
			continue
		}
		start := a
		for a < b && buf[a] != '*' {
			if buf[a] == '\n' {
				line++
			}
			a++
		}
		if a < b {
			a++ // consume the '*'
		}
		token := squeezeWord(filterNewLines(string(buf[start:a])))
		if isComment(token) {
			continue
		}
		dst.Accept(token, startLine)
	}
}

// filterNewLines drops \n and \r from the string.
func filterNewLines(inString string) string {
	retVal := strings.Replace(inString, "\n", "", -1)
	return strings.Replace(retVal, "\r", "", -1)
}

// squeezeWord uppercases a word command and removes interior whitespace
// and the trailing '*'.
func squeezeWord(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '*' {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

func isComment(token string) bool {
	if strings.HasPrefix(token, "G04") {
		return true
	}
	// "G4" comment, but not G40..G49 codes
	if strings.HasPrefix(token, "G4") &&
		(len(token) == 2 || token[2] < '0' || token[2] > '9') {
		return true
	}
	return false
}

// classify turns one command string into tagged commands. A composite
// token like "G01X100Y100D01" yields two: the mode switch and the
// coordinate operation.
func classify(line stor.Line) []Command {
	text := line.Text
	if strings.HasPrefix(text, "%") {
		return []Command{classifyExtended(line)}
	}
	out := make([]Command, 0, 2)
	rest := text
	for len(rest) > 0 {
		if rest[0] == 'G' {
			digits := leadingDigits(rest[1:])
			if digits == "" {
				out = append(out, Command{Kind: CmdUnknown, Line: line.Num, Text: text})
				return out
			}
			code, _ := strconv.Atoi(digits)
			cmd, keep := classifyGCode(code, line.Num, text)
			if keep {
				out = append(out, cmd)
				if cmd.Kind == CmdUnknown {
					return out
				}
			}
			rest = rest[1+len(digits):]
			continue
		}
		if rest[0] == 'M' {
			digits := leadingDigits(rest[1:])
			code, err := strconv.Atoi(digits)
			if digits != "" && err == nil && (code == 0 || code == 2) {
				out = append(out, Command{Kind: CmdEndOfFile, Line: line.Num, Text: text})
			} else {
				out = append(out, Command{Kind: CmdUnknown, Line: line.Num, Text: text})
			}
			return out
		}
		if strings.IndexByte("XYIJD", rest[0]) >= 0 {
			out = append(out, classifyCoordinate(rest, line.Num, text))
			return out
		}
		out = append(out, Command{Kind: CmdUnknown, Line: line.Num, Text: text})
		return out
	}
	return out
}

func classifyExtended(line stor.Line) Command {
	cmd := Command{Kind: CmdUnknown, Line: line.Num, Text: line.Text}
	switch {
	case strings.HasPrefix(line.Text, xy.GerberFormatSpec):
		cmd.Kind = CmdSetFormat
	case strings.HasPrefix(line.Text, "%MO"):
		cmd.Kind = CmdSetUnits
	case strings.HasPrefix(line.Text, gbt.GerberApertureDef):
		cmd.Kind = CmdDefineAperture
		cmd.Body = strings.TrimSuffix(line.Text[len(gbt.GerberApertureDef):], "*%")
	case strings.HasPrefix(line.Text, gbt.GerberApertureMacroDef):
		cmd.Kind = CmdDefineMacro
	case strings.HasPrefix(line.Text, "%LPD"):
		cmd.Kind = CmdSetPolarity
		cmd.Polarity = gbt.PolTypeDark
	case strings.HasPrefix(line.Text, "%LPC"):
		cmd.Kind = CmdSetPolarity
		cmd.Polarity = gbt.PolTypeClear
	}
	return cmd
}

// classifyGCode maps one G number. The second return value is false for
// codes that are silently swallowed (deprecated prefixes).
func classifyGCode(code, lineNum int, text string) (Command, bool) {
	cmd := Command{Line: lineNum, Text: text}
	switch code {
	case 1:
		cmd.Kind = CmdSetInterpolationMode
		cmd.Mode = gbt.IPModeLinear
	case 2:
		cmd.Kind = CmdSetInterpolationMode
		cmd.Mode = gbt.IPModeCwC
	case 3:
		cmd.Kind = CmdSetInterpolationMode
		cmd.Mode = gbt.IPModeCCwC
	case 36:
		cmd.Kind = CmdRegionStart
	case 37:
		cmd.Kind = CmdRegionEnd
	case 54, 55:
		// deprecated select/flash prefixes, the payload follows
		return cmd, false
	case 70:
		cmd.Kind = CmdSetUnits
		cmd.Units = gbt.UnitsIN
	case 71:
		cmd.Kind = CmdSetUnits
		cmd.Units = gbt.UnitsMM
	case 74:
		cmd.Kind = CmdSetQuadrantMode
		cmd.Quadrant = gbt.QuadModeSingle
	case 75:
		cmd.Kind = CmdSetQuadrantMode
		cmd.Quadrant = gbt.QuadModeMulti
	case 90:
		cmd.Kind = CmdSetCoordinateMode
		cmd.CoordMode = gbt.CoordModeAbsolute
	case 91:
		cmd.Kind = CmdSetCoordinateMode
		cmd.CoordMode = gbt.CoordModeIncremental
	default:
		cmd.Kind = CmdUnknown
	}
	return cmd, true
}

func classifyCoordinate(rest string, lineNum int, text string) Command {
	cmd := Command{Line: lineNum, Text: text}
	dPos := strings.IndexByte(rest, 'D')
	if dPos < 0 {
		// bare coordinates, legacy modal operation
		cmd.Kind = CmdCoordinate
		cmd.Body = rest
		return cmd
	}
	body := rest[:dPos]
	digits := leadingDigits(rest[dPos+1:])
	code, err := strconv.Atoi(digits)
	if digits == "" || err != nil || len(digits) != len(rest[dPos+1:]) {
		cmd.Kind = CmdUnknown
		return cmd
	}
	switch {
	case code >= 10:
		if body != "" {
			cmd.Kind = CmdUnknown
			return cmd
		}
		cmd.Kind = CmdSelectAperture
		cmd.Aperture = code
	case code == 1:
		cmd.Kind = CmdCoordinate
		cmd.Body = body
		cmd.Op = gbt.OpcodeD01_DRAW
	case code == 2:
		cmd.Kind = CmdCoordinate
		cmd.Body = body
		cmd.Op = gbt.OpcodeD02_MOVE
	case code == 3:
		cmd.Kind = CmdCoordinate
		cmd.Body = body
		cmd.Op = gbt.OpcodeD03_FLASH
	default:
		cmd.Kind = CmdUnknown
	}
	return cmd
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
