// Package boundary implements the wall-slice boundary-condition
// appliers. Each physical face of a field carries one applier; its
// ImposeBC writes the ghost-layer values of that face from the
// prescribed boundary data and the adjacent interior. Periodic faces
// carry no applier at all, since their pads are filled by the halo
// wrap.
package boundary

import (
	"github.com/roshansamuel/gpu-saras/field"
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
)

// Dirichlet assigns a literal value on the wall slice. The value is
// written at the wall-slice cell centres, which lie half a cell outside
// the domain boundary.
type Dirichlet struct {
	F     *field.Field
	Wall  int
	Value float64
}

func NewDirichlet(f *field.Field, wall int, value float64) *Dirichlet {
	return &Dirichlet{F: f, Wall: wall, Value: value}
}

func (b *Dirichlet) ImposeBC() {
	var (
		w = b.F.Walls[b.Wall]
		a = b.F.F
	)
	for i := w.Lo[0]; i <= w.Hi[0]; i++ {
		for j := w.Lo[1]; j <= w.Hi[1]; j++ {
			id := a.Idx(i, j, w.Lo[2])
			for k := w.Lo[2]; k <= w.Hi[2]; k++ {
				a.Data[id] = b.Value
				id++
			}
		}
	}
}

// Neumann imposes a wall-normal derivative, expressed along the
// coordinate axis of the face, by offsetting the adjacent interior
// value; the zero-gradient case mirrors the interior into the wall
// slice.
type Neumann struct {
	Mesh     *grid.Grid
	F        *field.Field
	Wall     int
	Gradient float64
}

func NewNeumann(mesh *grid.Grid, f *field.Field, wall int, gradient float64) *Neumann {
	return &Neumann{Mesh: mesh, F: f, Wall: wall, Gradient: gradient}
}

func (b *Neumann) ImposeBC() {
	var (
		w  = b.F.Walls[b.Wall]
		a  = b.F.F
		ax = parallel.FaceAxis(b.Wall)

		// interior neighbour sits one cell inward of the wall slice
		di, dj, dk int
	)
	inward := 1
	if b.Wall%2 == 1 {
		inward = -1
	}
	switch ax {
	case 0:
		di = inward
	case 1:
		dj = inward
	case 2:
		dk = inward
	}
	for i := w.Lo[0]; i <= w.Hi[0]; i++ {
		for j := w.Lo[1]; j <= w.Hi[1]; j++ {
			for k := w.Lo[2]; k <= w.Hi[2]; k++ {
				h := b.wallSpacing(ax, i, j, k, di, dj, dk)
				a.Set(i, j, k, a.At(i+di, j+dj, k+dk)+b.Gradient*h)
			}
		}
	}
}

// wallSpacing is the signed coordinate offset from the interior cell
// centre to the wall-slice cell centre, from the physical coordinate
// arrays so that stretched grids keep the prescribed gradient.
func (b *Neumann) wallSpacing(ax, i, j, k, di, dj, dk int) float64 {
	switch ax {
	case 0:
		return b.Mesh.XC[i] - b.Mesh.XC[i+di]
	case 1:
		return b.Mesh.YC[j] - b.Mesh.YC[j+dj]
	default:
		return b.Mesh.ZC[k] - b.Mesh.ZC[k+dk]
	}
}
