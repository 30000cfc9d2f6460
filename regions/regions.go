// Package regions accumulates G36/G37-bounded outlines into polygon
// rings and fills them with a triangle mesh.
//
// Ring order follows the file: the first ring is the outer boundary,
// every later ring (opened by a D02 move inside the region) is a hole.
package regions

import (
	"errors"
	"strconv"

	"github.com/dsafdsaf132/gerber2gpu/geometry"
	gbt "github.com/dsafdsaf132/gerber2gpu/gerberbasetypes"
	"github.com/dsafdsaf132/gerber2gpu/triangulate"

	polyclip "github.com/akavel/polyclip-go"
)

/*####################  regions ##################################
 */

type Region struct {
	rings           []polyclip.Contour
	G36StringNumber int // number of the line with the G36 cmd
	G37StringNumber int // number of the line with the G37 cmd
}

// NewRegion creates an opened region with one empty ring.
func NewRegion(strNum int) *Region {
	return &Region{
		rings:           []polyclip.Contour{{}},
		G36StringNumber: strNum,
		G37StringNumber: -1,
	}
}

func (region *Region) String() string {
	if region == nil {
		return "<nil>"
	}
	return "Region:\n" +
		"\t\tcontains " + strconv.Itoa(len(region.rings)) + " ring(s), " +
		strconv.Itoa(region.VertexCount()) + " vertices\n" +
		"\t\tG36 command is at line " + strconv.Itoa(region.G36StringNumber) + "\n" +
		"\t\tG37 command is at line " + strconv.Itoa(region.G37StringNumber)
}

// AddVertex appends a point to the ring in progress.
func (region *Region) AddVertex(x, y float64) {
	last := len(region.rings) - 1
	region.rings[last] = append(region.rings[last], polyclip.Point{X: x, Y: y})
}

// StartRing begins a new ring, triggered by a D02 move inside the
// region. A move before any vertex was drawn keeps the current ring.
func (region *Region) StartRing() {
	if len(region.rings[len(region.rings)-1]) > 0 {
		region.rings = append(region.rings, polyclip.Contour{})
	}
}

// Close marks the region finished at the G37 line.
func (region *Region) Close(strnum int) error {
	if region == nil {
		return errors.New("can not close the contour referenced by null pointer")
	}
	region.G37StringNumber = strnum
	return nil
}

// IsRegionOpened reports whether G37 has been seen yet.
func (region *Region) IsRegionOpened() (bool, error) {
	if region == nil {
		return false, errors.New("bad region referenced (by nil ptr)")
	}
	return region.G37StringNumber == -1, nil
}

func (region *Region) RingCount() int {
	return len(region.rings)
}

func (region *Region) VertexCount() int {
	n := 0
	for _, r := range region.rings {
		n += len(r)
	}
	return n
}

// Triangulate fills the collected rings with triangles of the given
// polarity. Rings with fewer than 3 vertices are dropped; a region that
// collapses entirely to degenerate geometry yields no primitives rather
// than an error.
func (region *Region) Triangulate(pol gbt.PolType) ([]geometry.Primitive, error) {
	contours := make([]polyclip.Contour, 0, len(region.rings))
	for _, r := range region.rings {
		if len(r) >= 3 {
			contours = append(contours, r)
		}
	}
	if len(contours) == 0 {
		return nil, nil
	}
	prims, err := geometry.TriangulateContours(contours, pol)
	if errors.Is(err, triangulate.ErrDegenerate) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return prims, nil
}
