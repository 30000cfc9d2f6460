package gerbparser

import (
	"testing"

	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	stor "github.com/dsafdsaf132/gerber2gpu/stringsstorage"
)

func splitSource(src string) *stor.Storage {
	dst := stor.NewStorage()
	splitCommands([]byte(src), dst)
	return dst
}

func TestSplitCommands(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\nG04 a comment*\nD10*\nX100Y200D03*\nM02*\n"
	st := splitSource(src)
	want := []string{"%FSLAX24Y24*%", "%MOMM*%", "D10", "X100Y200D03", "M02"}
	if st.Len() != len(want) {
		t.Fatal("expected", len(want), "lines, got", st.Len())
	}
	for i := 0; i < len(want); i++ {
		line, ok := st.Next()
		if !ok {
			t.Fatal("storage exhausted at", i)
		}
		if line.Text != want[i] {
			t.Error("line", i, ": got", line.Text, "want", want[i])
		}
	}
	st.ResetPos()
	line, _ := st.Next()
	if line.Num != 1 {
		t.Error("format spec must sit on line 1, got", line.Num)
	}
	st.Next()
	st.Next() // D10, the comment on line 3 is dropped
	line, _ = st.Next()
	if line.Num != 5 {
		t.Error("coordinate must sit on line 5, got", line.Num)
	}
}

func TestSplitCommands_multilineMacro(t *testing.T) {
	src := "%AMDONUT*\n1,1,$1,$2,$3*\n1,0,$4,$2,$3*%\nM02*"
	st := splitSource(src)
	line, ok := st.Next()
	if !ok {
		t.Fatal("no lines")
	}
	if line.Text != "%AMDONUT*1,1,$1,$2,$3*1,0,$4,$2,$3*%" {
		t.Fatal("macro block must be glued into one line, got", line.Text)
	}
	if line.Num != 1 {
		t.Error("macro block reports line", line.Num)
	}
}

func TestSplitCommands_whitespaceAndCase(t *testing.T) {
	st := splitSource(" x1 y2 d03 *m02*")
	line, _ := st.Next()
	if line.Text != "X1Y2D03" {
		t.Fatal("got", line.Text)
	}
}

func TestClassify_compositeToken(t *testing.T) {
	cmds := classify(stor.Line{Text: "G01X100Y100D01", Num: 3})
	if len(cmds) != 2 {
		t.Fatal("expected mode change plus coordinate, got", len(cmds))
	}
	if cmds[0].Kind != CmdSetInterpolationMode {
		t.Fatal("first command:", cmds[0].Kind)
	}
	if cmds[1].Kind != CmdCoordinate || cmds[1].Op != gbt.OpcodeD01_DRAW || cmds[1].Body != "X100Y100" {
		t.Fatal("second command:", cmds[1].Kind, cmds[1].Op, cmds[1].Body)
	}
	if cmds[1].Line != 3 {
		t.Error("line number lost:", cmds[1].Line)
	}
}

func TestClassify_deprecatedPrefixSwallowed(t *testing.T) {
	cmds := classify(stor.Line{Text: "G54D12", Num: 1})
	if len(cmds) != 1 || cmds[0].Kind != CmdSelectAperture || cmds[0].Aperture != 12 {
		t.Fatal("G54 prefix must be dropped, aperture kept:", cmds)
	}
}

func TestClassify_table(t *testing.T) {
	cases := []struct {
		in   string
		kind CommandKind
	}{
		{"%FSLAX24Y24*%", CmdSetFormat},
		{"%MOIN*%", CmdSetUnits},
		{"%ADD10C,1.5*%", CmdDefineAperture},
		{"%AMBOX*21,1,4,2,0,0,0*%", CmdDefineMacro},
		{"%LPC*%", CmdSetPolarity},
		{"D11", CmdSelectAperture},
		{"G02", CmdSetInterpolationMode},
		{"G74", CmdSetQuadrantMode},
		{"G91", CmdSetCoordinateMode},
		{"G36", CmdRegionStart},
		{"G37", CmdRegionEnd},
		{"X1Y2D02", CmdCoordinate},
		{"X1Y2", CmdCoordinate},
		{"M00", CmdEndOfFile},
		{"M02", CmdEndOfFile},
		{"%SRX2Y2I10J10*%", CmdUnknown},
		{"G22", CmdUnknown},
	}
	for _, c := range cases {
		cmds := classify(stor.Line{Text: c.in, Num: 1})
		if len(cmds) == 0 {
			t.Error(c.in, ": no commands")
			continue
		}
		if cmds[0].Kind != c.kind {
			t.Error(c.in, ": got", cmds[0].Kind, "want", c.kind)
		}
	}
}

func TestClassify_apertureDefinitionBody(t *testing.T) {
	cmds := classify(stor.Line{Text: "%ADD10C,1.5X0.5*%", Num: 2})
	if len(cmds) != 1 || cmds[0].Kind != CmdDefineAperture {
		t.Fatal("got", cmds)
	}
	if cmds[0].Body != "10C,1.5X0.5" {
		t.Fatal("body: got", cmds[0].Body)
	}
}
