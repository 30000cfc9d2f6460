package gerbparser

import (
	"errors"
	"strconv"
	"testing"

	"github.com/dsafdsaf132/gerber2gpu/geometry"
)

func circleLayer(cx, cy, d int) string {
	// one flashed circle, coordinates in whole millimeters
	return header + "%ADD10C," + strconv.Itoa(d) + "*%\nD10*\n" +
		"X" + strconv.Itoa(cx*10000) + "Y" + strconv.Itoa(cy*10000) + "D03*\nM02*\n"
}

func TestProcessor_addRemove(t *testing.T) {
	pr := NewProcessor(Config{})
	id1, warns, err := pr.AddLayer([]byte(circleLayer(10, 10, 4)))
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Fatal("unexpected warnings:", warns)
	}
	id2, _, err := pr.AddLayer([]byte(circleLayer(30, 10, 4)))
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Fatal("layer ids must be distinct")
	}
	if pr.LayerCount() != 2 {
		t.Fatal("expected two layers, got", pr.LayerCount())
	}

	if err := pr.RemoveLayer(id1); err != nil {
		t.Fatal(err)
	}
	if pr.LayerCount() != 1 {
		t.Fatal("expected one layer after removal, got", pr.LayerCount())
	}
	if err := pr.RemoveLayer(id1); err == nil {
		t.Fatal("removing a removed layer must fail")
	}

	pr.Clear()
	if pr.LayerCount() != 0 {
		t.Fatal("clear must drop everything")
	}
}

func TestProcessor_boundaryUnion(t *testing.T) {
	pr := NewProcessor(Config{})
	if pr.Boundary() != (geometry.Boundary{}) {
		t.Fatal("no layers means a zero boundary")
	}
	pr.AddLayer([]byte(circleLayer(10, 10, 4)))
	pr.AddLayer([]byte(circleLayer(30, 10, 4)))
	b := pr.Boundary()
	want := geometry.Boundary{MinX: 8, MaxX: 32, MinY: 8, MaxY: 12}
	if b != want {
		t.Fatal("boundary: got", b, "want", want)
	}
}

func TestProcessor_failedParseLeavesStateIntact(t *testing.T) {
	pr := NewProcessor(Config{})
	pr.AddLayer([]byte(circleLayer(10, 10, 4)))
	_, _, err := pr.AddLayer([]byte(header + "D99*\nM02*\n"))
	var apErr *UnknownApertureError
	if !errors.As(err, &apErr) {
		t.Fatal("expected UnknownApertureError, got", err)
	}
	if pr.LayerCount() != 1 {
		t.Fatal("failed parse must not register a layer, got", pr.LayerCount())
	}
	if pr.Boundary() != (geometry.Boundary{MinX: 8, MaxX: 12, MinY: 8, MaxY: 12}) {
		t.Fatal("boundary changed after a failed parse:", pr.Boundary())
	}
}
