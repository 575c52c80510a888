package render

import "fmt"

// GeometryBuffers is the flat attribute data loaders hand to a backend mesh.
// Positions and normals are xyz triples, UVs are pairs; Indices is optional.
type GeometryBuffers struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

func (g GeometryBuffers) VertexCount() int { return len(g.Positions) / 3 }

// Validate checks attribute lengths agree and indices are in range.
func (g GeometryBuffers) Validate() error {
	if len(g.Positions)%3 != 0 {
		return fmt.Errorf("geometry: positions length %d is not a multiple of 3", len(g.Positions))
	}
	n := g.VertexCount()
	if len(g.Normals) != 0 && len(g.Normals) != n*3 {
		return fmt.Errorf("geometry: %d normals for %d vertices", len(g.Normals)/3, n)
	}
	if len(g.UVs) != 0 && len(g.UVs) != n*2 {
		return fmt.Errorf("geometry: %d uvs for %d vertices", len(g.UVs)/2, n)
	}
	for i, idx := range g.Indices {
		if int(idx) >= n {
			return fmt.Errorf("geometry: index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Plane is a width×height quad in the XY plane centred on the origin,
// facing +Z, with uv (0,0) at the bottom-left corner.
func Plane(width, height float32) GeometryBuffers {
	w, h := width/2, height/2
	return GeometryBuffers{
		Positions: []float32{-w, -h, 0, w, -h, 0, w, h, 0, -w, h, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}
