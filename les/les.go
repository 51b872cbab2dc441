// Package les provides the sub-grid stress collaborator of the
// momentum (and optionally scalar) equations for under-resolved runs.
package les

import (
	"math"

	"github.com/roshansamuel/gpu-saras/field"
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/utils"
)

// Model adds sub-grid stress divergence to the RHS accumulators and
// returns the sub-grid kinetic energy for the time-series output.
type Model interface {
	ComputeSG(nseRHS *field.PlainVF, V *field.VField) float64
	ComputeSGScalar(nseRHS *field.PlainVF, tmpRHS *field.PlainSF, V *field.VField, T *field.SField) float64
}

// EddyViscosity is an eddy-viscosity closure: the strain-rate
// magnitude |S| is evaluated from the resolved velocity gradients,
// the turbulent viscosity is (C*delta)^2 |S| with the local filter
// width delta, and the stress divergence is applied as nuT times the
// Laplacian of the resolved field.
type EddyViscosity struct {
	mesh *grid.Grid

	// C is the model constant; PrT the turbulent Prandtl number used
	// when the scalar equation is closed as well.
	C   float64
	PrT float64

	dVx, dVy, dVz *field.Derivative

	nuT    *utils.Array3
	sMag2  *utils.Array3
	t1, t2 *utils.Array3
	lap    *utils.Array3
}

func NewEddyViscosity(mesh *grid.Grid, V *field.VField) *EddyViscosity {
	return &EddyViscosity{
		mesh:  mesh,
		C:     0.17,
		PrT:   0.9,
		dVx:   field.NewDerivative(mesh, V.Vx.F),
		dVy:   field.NewDerivative(mesh, V.Vy.F),
		dVz:   field.NewDerivative(mesh, V.Vz.F),
		nuT:   field.NewArray(mesh),
		sMag2: field.NewArray(mesh),
		t1:    field.NewArray(mesh),
		t2:    field.NewArray(mesh),
		lap:   field.NewArray(mesh),
	}
}

// ComputeSG adds the momentum sub-grid term and returns the sub-grid
// kinetic energy dissipated by the model.
func (e *EddyViscosity) ComputeSG(nseRHS *field.PlainVF, V *field.VField) float64 {
	e.computeNuT()

	e.addStress(nseRHS.Vx, V.Vx.F, 1)
	if !e.mesh.Planar {
		e.addStress(nseRHS.Vy, V.Vy.F, 1)
	}
	e.addStress(nseRHS.Vz, V.Vz.F, 1)

	return e.subgridEnergy()
}

// ComputeSGScalar also closes the scalar equation with the turbulent
// diffusivity nuT/PrT.
func (e *EddyViscosity) ComputeSGScalar(nseRHS *field.PlainVF, tmpRHS *field.PlainSF, V *field.VField, T *field.SField) float64 {
	ke := e.ComputeSG(nseRHS, V)
	e.addStress(tmpRHS.F, T.F.F, 1/e.PrT)
	return ke
}

// computeNuT evaluates |S|^2 = 2*S_ij*S_ij and the eddy viscosity
// over the core.
func (e *EddyViscosity) computeNuT() {
	c := e.mesh.Core
	e.sMag2.Fill(0)

	// diagonal strain components
	e.dVx.Deriv1X(e.t1)
	e.accumSq(c, 2)
	if !e.mesh.Planar {
		e.dVy.Deriv1Y(e.t1)
		e.accumSq(c, 2)
	}
	e.dVz.Deriv1Z(e.t1)
	e.accumSq(c, 2)

	// off-diagonal pairs: S_ab = (du_a/dx_b + du_b/dx_a)/2, each
	// contributing twice to S_ij*S_ij
	if !e.mesh.Planar {
		e.dVx.Deriv1Y(e.t1)
		e.dVy.Deriv1X(e.t2)
		e.accumSymSq(c)

		e.dVy.Deriv1Z(e.t1)
		e.dVz.Deriv1Y(e.t2)
		e.accumSymSq(c)
	}
	e.dVx.Deriv1Z(e.t1)
	e.dVz.Deriv1X(e.t2)
	e.accumSymSq(c)

	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			id := e.nuT.Idx(i, j, c.Lo[2])
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				cd := e.C * e.filterWidth(i, j, k)
				e.nuT.Data[id] = cd * cd * math.Sqrt(e.sMag2.Data[id])
				id++
			}
		}
	}
}

// accumSq adds w*t1^2 into sMag2 over the box.
func (e *EddyViscosity) accumSq(c utils.Box, w float64) {
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			id := e.sMag2.Idx(i, j, c.Lo[2])
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				v := e.t1.Data[id]
				e.sMag2.Data[id] += w * v * v
				id++
			}
		}
	}
}

// accumSymSq adds 4*((t1+t2)/2)^2 into sMag2 over the box.
func (e *EddyViscosity) accumSymSq(c utils.Box) {
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			id := e.sMag2.Idx(i, j, c.Lo[2])
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				s := 0.5 * (e.t1.Data[id] + e.t2.Data[id])
				e.sMag2.Data[id] += 4 * s * s
				id++
			}
		}
	}
}

// addStress accumulates fac*nuT*Laplacian(f) into out over the core.
func (e *EddyViscosity) addStress(out, f *utils.Array3, fac float64) {
	var (
		c   = e.mesh.Core
		der = field.NewDerivative(e.mesh, f)
	)
	e.lap.Fill(0)
	e.t1.Fill(0)
	der.Deriv2XX(e.t1)
	e.lap.AddBox(c, e.t1)
	if !e.mesh.Planar {
		e.t1.Fill(0)
		der.Deriv2YY(e.t1)
		e.lap.AddBox(c, e.t1)
	}
	e.t1.Fill(0)
	der.Deriv2ZZ(e.t1)
	e.lap.AddBox(c, e.t1)

	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			id := out.Idx(i, j, c.Lo[2])
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				out.Data[id] += fac * e.nuT.Data[id] * e.lap.Data[id]
				id++
			}
		}
	}
}

// subgridEnergy returns the volume integral of nuT*|S|^2, the energy
// flux into the unresolved scales, reduced across ranks.
func (e *EddyViscosity) subgridEnergy() float64 {
	var (
		c   = e.mesh.Core
		sum float64
	)
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			id := e.nuT.Idx(i, j, c.Lo[2])
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				sum += e.nuT.Data[id] * e.sMag2.Data[id] * e.mesh.CellVolume(i, j, k)
				id++
			}
		}
	}
	return e.mesh.Rank.AllReduceSum(sum)
}

func (e *EddyViscosity) filterWidth(i, j, k int) float64 {
	if e.mesh.Planar {
		return math.Sqrt(e.mesh.DXi / e.mesh.XiX[i] * e.mesh.DZt / e.mesh.ZtZ[k])
	}
	return math.Cbrt(e.mesh.CellVolume(i, j, k))
}
