package gerbparser

import (
	"fmt"

	"github.com/dsafdsaf132/gerber2gpu/geometry"
)

// Layer is one parsed gerber file held by a Processor.
type Layer struct {
	ID       int
	Data     *geometry.GerberData
	Warnings []Warning
}

// Processor accumulates parsed layers, one per gerber file. A failed
// parse leaves the layer set untouched, so one bad file never disturbs
// its siblings. Calls must be serialized by the caller; the Processor
// does no internal locking.
type Processor struct {
	parser *Parser
	layers []*Layer
	nextID int
}

func NewProcessor(cfg Config) *Processor {
	return &Processor{parser: NewParser(cfg), nextID: 1}
}

// AddLayer parses one gerber source and appends it as a new layer,
// returning its id.
func (proc *Processor) AddLayer(src []byte) (int, []Warning, error) {
	data, warnings, err := proc.parser.Parse(src)
	if err != nil {
		return 0, warnings, err
	}
	layer := &Layer{ID: proc.nextID, Data: data, Warnings: warnings}
	proc.nextID++
	proc.layers = append(proc.layers, layer)
	return layer.ID, warnings, nil
}

// RemoveLayer drops the layer with the given id.
func (proc *Processor) RemoveLayer(id int) error {
	for i, layer := range proc.layers {
		if layer.ID == id {
			proc.layers = append(proc.layers[:i], proc.layers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no layer with id %d", id)
}

// Clear drops all layers.
func (proc *Processor) Clear() {
	proc.layers = nil
}

func (proc *Processor) LayerCount() int {
	return len(proc.layers)
}

// Layers returns the held layers in insertion order. The slice is a
// copy; the layers themselves are shared and must not be mutated.
func (proc *Processor) Layers() []*Layer {
	out := make([]*Layer, len(proc.layers))
	copy(out, proc.layers)
	return out
}

// Boundary is the union bounding box over all layers, zeros when the
// processor is empty or every layer is empty.
func (proc *Processor) Boundary() geometry.Boundary {
	var b geometry.Boundary
	first := true
	for _, layer := range proc.layers {
		lb := layer.Data.Boundary
		if lb.MinX == 0 && lb.MaxX == 0 && lb.MinY == 0 && lb.MaxY == 0 {
			continue
		}
		if first {
			b = lb
			first = false
			continue
		}
		if lb.MinX < b.MinX {
			b.MinX = lb.MinX
		}
		if lb.MaxX > b.MaxX {
			b.MaxX = lb.MaxX
		}
		if lb.MinY < b.MinY {
			b.MinY = lb.MinY
		}
		if lb.MaxY > b.MaxY {
			b.MaxY = lb.MaxY
		}
	}
	return b
}
