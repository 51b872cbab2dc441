// Package forcing provides the force-term collaborators added to the
// momentum and scalar RHS accumulators during assembly.
package forcing

import (
	"github.com/roshansamuel/gpu-saras/field"
	"github.com/roshansamuel/gpu-saras/grid"
)

// ZeroVForce and ZeroSForce are the no-forcing collaborators.
type ZeroVForce struct{}

func (ZeroVForce) AddForcing(rhs *field.PlainVF) {}

type ZeroSForce struct{}

func (ZeroSForce) AddForcing(rhs *field.PlainSF) {}

// Buoyancy couples the temperature field into the vertical momentum
// equation. In the Rayleigh-Benard nondimensionalization used by the
// solver the buoyancy term is simply +T in the z-momentum RHS.
type Buoyancy struct {
	Mesh *grid.Grid
	T    *field.SField
}

func NewBuoyancy(mesh *grid.Grid, T *field.SField) *Buoyancy {
	return &Buoyancy{Mesh: mesh, T: T}
}

func (b *Buoyancy) AddForcing(rhs *field.PlainVF) {
	var (
		c = b.Mesh.Core
		t = b.T.F.F
	)
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			id := t.Idx(i, j, c.Lo[2])
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				rhs.Vz.Data[id] += t.Data[id]
				id++
			}
		}
	}
}
