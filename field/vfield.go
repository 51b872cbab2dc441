package field

import (
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/utils"
)

// VField is the velocity field: three staggered component fields
// aligned to the MAC convention (each face-centred along its own
// axis) plus a forcing collaborator.
type VField struct {
	gridData *grid.Grid
	Name     string

	Vx, Vy, Vz *Field

	// Forcing is the momentum forcing collaborator; nil means none.
	Forcing VForce

	derVx, derVy, derVz *Derivative
	derivTemp           *utils.Array3
	core                utils.Box
}

func NewVField(gridData *grid.Grid, name string) *VField {
	v := &VField{
		gridData:  gridData,
		Name:      name,
		Vx:        NewField(gridData, "Vx"),
		Vy:        NewField(gridData, "Vy"),
		Vz:        NewField(gridData, "Vz"),
		derivTemp: NewArray(gridData),
		core:      gridData.Core,
	}
	v.derVx = NewDerivative(gridData, v.Vx.F)
	v.derVy = NewDerivative(gridData, v.Vy.F)
	v.derVz = NewDerivative(gridData, v.Vz.F)
	return v
}

// ComputeDiff accumulates the Laplacian of every component into H.
func (v *VField) ComputeDiff(H *PlainVF) {
	v.componentDiff(v.derVx, H.Vx)
	if !v.gridData.Planar {
		v.componentDiff(v.derVy, H.Vy)
	}
	v.componentDiff(v.derVz, H.Vz)
}

func (v *VField) componentDiff(der *Derivative, out *utils.Array3) {
	v.derivTemp.Fill(0)
	der.Deriv2XX(v.derivTemp)
	out.AddBox(v.core, v.derivTemp)

	if !v.gridData.Planar {
		v.derivTemp.Fill(0)
		der.Deriv2YY(v.derivTemp)
		out.AddBox(v.core, v.derivTemp)
	}

	v.derivTemp.Fill(0)
	der.Deriv2ZZ(v.derivTemp)
	out.AddBox(v.core, v.derivTemp)
}

// ComputeNLin subtracts the convective term (V.grad)v from H, where V
// is the advecting velocity (the field itself in the momentum
// equation).
func (v *VField) ComputeNLin(V *VField, H *PlainVF) {
	v.componentNLin(v.derVx, V, H.Vx)
	if !v.gridData.Planar {
		v.componentNLin(v.derVy, V, H.Vy)
	}
	v.componentNLin(v.derVz, V, H.Vz)
}

func (v *VField) componentNLin(der *Derivative, V *VField, out *utils.Array3) {
	v.derivTemp.Fill(0)
	der.Deriv1X(v.derivTemp)
	out.SubMulBox(v.core, V.Vx.F, v.derivTemp)

	if !v.gridData.Planar {
		v.derivTemp.Fill(0)
		der.Deriv1Y(v.derivTemp)
		out.SubMulBox(v.core, V.Vy.F, v.derivTemp)
	}

	v.derivTemp.Fill(0)
	der.Deriv1Z(v.derivTemp)
	out.SubMulBox(v.core, V.Vz.F, v.derivTemp)
}

// Divergence writes div(V) into a cell-centred plain scalar field.
func (v *VField) Divergence(div *PlainSF) {
	div.Set(0)

	v.derivTemp.Fill(0)
	v.derVx.Deriv1X(v.derivTemp)
	div.F.AddBox(v.core, v.derivTemp)

	if !v.gridData.Planar {
		v.derivTemp.Fill(0)
		v.derVy.Deriv1Y(v.derivTemp)
		div.F.AddBox(v.core, v.derivTemp)
	}

	v.derivTemp.Fill(0)
	v.derVz.Deriv1Z(v.derivTemp)
	div.F.AddBox(v.core, v.derivTemp)
}

func (v *VField) SyncData() {
	v.Vx.SyncData()
	if !v.gridData.Planar {
		v.Vy.SyncData()
	}
	v.Vz.SyncData()
}

// Per-component BC imposition, called between Jacobi sweeps.
func (v *VField) ImposeVxBC() { v.Vx.ImposeBCs() }
func (v *VField) ImposeVyBC() { v.Vy.ImposeBCs() }
func (v *VField) ImposeVzBC() { v.Vz.ImposeBCs() }

func (v *VField) ImposeBCs() {
	v.ImposeVxBC()
	if !v.gridData.Planar {
		v.ImposeVyBC()
	}
	v.ImposeVzBC()
}

func (v *VField) AddPlain(a *PlainVF) {
	v.Vx.F.Add(a.Vx)
	v.Vy.F.Add(a.Vy)
	v.Vz.F.Add(a.Vz)
}

// SubPlain performs the projection update V -= a, used with the
// dt-scaled pressure-correction gradient.
func (v *VField) SubPlain(a *PlainVF) {
	v.Vx.F.Sub(a.Vx)
	v.Vy.F.Sub(a.Vy)
	v.Vz.F.Sub(a.Vz)
}

// FieldMax returns the largest component maximum across ranks.
func (v *VField) FieldMax() float64 {
	m := v.Vx.F.MaxAbs()
	if !v.gridData.Planar {
		if my := v.Vy.F.MaxAbs(); my > m {
			m = my
		}
	}
	if mz := v.Vz.F.MaxAbs(); mz > m {
		m = mz
	}
	return v.gridData.Rank.AllReduceMax(m)
}
