// Package field implements the field algebra of the solver: scalar
// and vector fields with ghost pads, wall slices and boundary hooks,
// their bare accumulator variants, and the finite-difference kernels
// operating on them.
package field

import (
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/utils"
)

// BCApplier writes boundary values into a wall slice. Implementations
// live in the boundary package and are attached by the solver setup.
type BCApplier interface {
	ImposeBC()
}

// VForce and SForce are the forcing collaborators of the momentum and
// scalar equations.
type VForce interface {
	AddForcing(rhs *PlainVF)
}

type SForce interface {
	AddForcing(rhs *PlainSF)
}

// Field owns one 3D array over the full (padded) box of a sub-domain,
// the core box where equations are evaluated, and the six wall slices
// one cell outside the core where boundary conditions are written.
type Field struct {
	gridData *grid.Grid
	Name     string

	F    *utils.Array3
	Core utils.Box

	// Walls holds the six degenerate wall-slice boxes; HasWall is
	// false on axes without pads (the y walls of a planar run).
	Walls   [6]utils.Box
	HasWall [6]bool

	// BC holds the wall appliers; entries stay nil on faces that are
	// inter-rank interfaces or periodic.
	BC [6]BCApplier

	halo *parallel.Halo
}

func NewField(gridData *grid.Grid, name string) *Field {
	f := &Field{
		gridData: gridData,
		Name:     name,
		F:        NewArray(gridData),
		Core:     gridData.Core,
	}
	f.setWallSlices()
	f.halo = NewHalo(gridData)
	return f
}

// NewArray allocates a zeroed full-box array for the grid.
func NewArray(g *grid.Grid) *utils.Array3 {
	return utils.NewArray3(g.NFull[0], g.NFull[1], g.NFull[2])
}

// NewHalo builds a halo exchanger for full-box arrays of the grid.
func NewHalo(g *grid.Grid) *parallel.Halo {
	coreUb1 := [3]int{g.Core.Hi[0] + 1, g.Core.Hi[1] + 1, g.Core.Hi[2] + 1}
	return parallel.NewHalo(g.Rank, g.NFull, coreUb1, g.Pads)
}

// The wall slices locate the boundary cells one step outside the core
// along each axis; they are the sole write targets of BC imposition,
// and their positions never move after construction.
func (f *Field) setWallSlices() {
	for face := 0; face < parallel.NumFaces; face++ {
		var (
			ax = parallel.FaceAxis(face)
			w  = utils.Box{Lo: f.gridData.Full.Lo, Hi: f.gridData.Full.Hi}
		)
		if f.gridData.Pads[ax] == 0 {
			continue
		}
		if face%2 == 0 {
			w.Lo[ax] = f.Core.Lo[ax] - 1
			w.Hi[ax] = f.Core.Lo[ax] - 1
		} else {
			w.Lo[ax] = f.Core.Hi[ax] + 1
			w.Hi[ax] = f.Core.Hi[ax] + 1
		}
		f.Walls[face] = w
		f.HasWall[face] = true
	}
}

// SyncData exchanges the pad layers with all neighbours.
func (f *Field) SyncData() {
	f.halo.SyncData(f.F)
}

// FieldMax returns the maximum absolute value of the field, reduced
// across all ranks.
func (f *Field) FieldMax() float64 {
	return f.gridData.Rank.AllReduceMax(f.F.MaxAbs())
}

// ImposeBCs refreshes the pads, then applies the wall appliers: the x
// and y pairs only when that axis is not periodic, top and bottom
// always, since the vertical is treated as a physical boundary.
func (f *Field) ImposeBCs() {
	f.SyncData()

	p := f.gridData.Params
	if !p.XPer {
		f.applyWall(parallel.Left)
		f.applyWall(parallel.Right)
	}
	if !f.gridData.Planar && !p.YPer {
		f.applyWall(parallel.Front)
		f.applyWall(parallel.Back)
	}
	f.applyWall(parallel.Bottom)
	f.applyWall(parallel.Top)
}

func (f *Field) applyWall(face int) {
	if f.BC[face] != nil {
		f.BC[face].ImposeBC()
	}
}
