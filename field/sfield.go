package field

import (
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/utils"
)

// SField is a cell-centred scalar field with wall slices and BC
// hooks: the pressure and, in scalar runs, the temperature.
type SField struct {
	gridData *grid.Grid
	Name     string

	F *Field

	// Forcing is the scalar forcing collaborator; nil means none.
	Forcing SForce

	derS      *Derivative
	derivTemp *utils.Array3
	core      utils.Box
}

func NewSField(gridData *grid.Grid, name string) *SField {
	s := &SField{
		gridData:  gridData,
		Name:      name,
		F:         NewField(gridData, name),
		derivTemp: NewArray(gridData),
		core:      gridData.Core,
	}
	s.derS = NewDerivative(gridData, s.F.F)
	return s
}

// ComputeDiff accumulates the Laplacian of the field into H. The
// diffusion coefficient and the Crank-Nicolson split factor are
// applied by the caller.
func (s *SField) ComputeDiff(H *PlainSF) {
	s.derivTemp.Fill(0)
	s.derS.Deriv2XX(s.derivTemp)
	H.F.AddBox(s.core, s.derivTemp)

	if !s.gridData.Planar {
		s.derivTemp.Fill(0)
		s.derS.Deriv2YY(s.derivTemp)
		H.F.AddBox(s.core, s.derivTemp)
	}

	s.derivTemp.Fill(0)
	s.derS.Deriv2ZZ(s.derivTemp)
	H.F.AddBox(s.core, s.derivTemp)
}

// ComputeNLin subtracts the convective derivative (V.grad)f from H,
// by central differencing of the field multiplied pointwise by the
// advecting velocity components.
func (s *SField) ComputeNLin(V *VField, H *PlainSF) {
	s.derivTemp.Fill(0)
	s.derS.Deriv1X(s.derivTemp)
	H.F.SubMulBox(s.core, V.Vx.F, s.derivTemp)

	if !s.gridData.Planar {
		s.derivTemp.Fill(0)
		s.derS.Deriv1Y(s.derivTemp)
		H.F.SubMulBox(s.core, V.Vy.F, s.derivTemp)
	}

	s.derivTemp.Fill(0)
	s.derS.Deriv1Z(s.derivTemp)
	H.F.SubMulBox(s.core, V.Vz.F, s.derivTemp)
}

// Gradient writes the gradient of the field into a face-centred plain
// vector field.
func (s *SField) Gradient(gradF *PlainVF) {
	s.derivTemp.Fill(0)
	s.derS.Deriv1X(s.derivTemp)
	gradF.Vx.SetBox(s.core, s.derivTemp)

	if !s.gridData.Planar {
		s.derivTemp.Fill(0)
		s.derS.Deriv1Y(s.derivTemp)
		gradF.Vy.SetBox(s.core, s.derivTemp)
	}

	s.derivTemp.Fill(0)
	s.derS.Deriv1Z(s.derivTemp)
	gradF.Vz.SetBox(s.core, s.derivTemp)
}

func (s *SField) SyncData() {
	s.F.SyncData()
}

// ImposeBCs updates the pads and applies the wall boundary conditions
// on the physical faces.
func (s *SField) ImposeBCs() {
	s.F.ImposeBCs()
}

func (s *SField) FieldMax() float64 {
	return s.F.FieldMax()
}

func (s *SField) AddPlain(a *PlainSF) { s.F.F.Add(a.F) }

func (s *SField) SubPlain(a *PlainSF) { s.F.F.Sub(a.F) }

func (s *SField) Set(a float64) { s.F.F.Fill(a) }

func (s *SField) SetPlain(a *PlainSF) { s.F.F.CopyFrom(a.F) }
