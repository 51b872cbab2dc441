package field

import (
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/utils"
)

// PlainSF is a bare cell-centred scalar field without wall slices or
// BC hooks, used as an RHS accumulator and for the pressure
// correction.
type PlainSF struct {
	gridData *grid.Grid

	F *utils.Array3

	derS      *Derivative
	derivTemp *utils.Array3

	halo *parallel.Halo
}

func NewPlainSF(gridData *grid.Grid) *PlainSF {
	p := &PlainSF{
		gridData:  gridData,
		F:         NewArray(gridData),
		derivTemp: NewArray(gridData),
		halo:      NewHalo(gridData),
	}
	p.derS = NewDerivative(gridData, p.F)
	return p
}

func (p *PlainSF) SyncData() {
	p.halo.SyncData(p.F)
}

// Gradient writes the face-centred gradient of the field into a plain
// vector field over the core.
func (p *PlainSF) Gradient(gradF *PlainVF) {
	core := p.gridData.Core

	p.derivTemp.Fill(0)
	p.derS.Deriv1X(p.derivTemp)
	gradF.Vx.SetBox(core, p.derivTemp)

	if !p.gridData.Planar {
		p.derivTemp.Fill(0)
		p.derS.Deriv1Y(p.derivTemp)
		gradF.Vy.SetBox(core, p.derivTemp)
	}

	p.derivTemp.Fill(0)
	p.derS.Deriv1Z(p.derivTemp)
	gradF.Vz.SetBox(core, p.derivTemp)
}

func (p *PlainSF) Set(a float64) { p.F.Fill(a) }

func (p *PlainSF) Scale(a float64) { p.F.Scale(a) }

func (p *PlainSF) AddPlain(a *PlainSF) { p.F.Add(a.F) }

func (p *PlainSF) SubPlain(a *PlainSF) { p.F.Sub(a.F) }

// AddField adds a scalar field, completing the explicit Euler update
// rhs = dt*rhs + T.
func (p *PlainSF) AddField(a *SField) { p.F.Add(a.F.F) }

// MaxAbs returns the global maximum absolute value over the core.
func (p *PlainSF) MaxAbs() float64 {
	return p.gridData.Rank.AllReduceMax(p.F.MaxAbsBox(p.gridData.Core))
}
