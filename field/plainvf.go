package field

import (
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/utils"
)

// PlainVF is a bare three-component vector field without wall slices
// or BC hooks, used as the RHS accumulator of the momentum equation
// and for the pressure gradient.
type PlainVF struct {
	gridData *grid.Grid

	Vx, Vy, Vz *utils.Array3

	hVx, hVy, hVz *parallel.Halo
}

func NewPlainVF(gridData *grid.Grid) *PlainVF {
	return &PlainVF{
		gridData: gridData,
		Vx:       NewArray(gridData),
		Vy:       NewArray(gridData),
		Vz:       NewArray(gridData),
		hVx:      NewHalo(gridData),
		hVy:      NewHalo(gridData),
		hVz:      NewHalo(gridData),
	}
}

func (p *PlainVF) SyncData() {
	p.hVx.SyncData(p.Vx)
	if !p.gridData.Planar {
		p.hVy.SyncData(p.Vy)
	}
	p.hVz.SyncData(p.Vz)
}

// MultAdd performs the fused update p += k*a without temporaries.
func (p *PlainVF) MultAdd(a *PlainVF, k float64) {
	p.Vx.MultAdd(a.Vx, k)
	p.Vy.MultAdd(a.Vy, k)
	p.Vz.MultAdd(a.Vz, k)
}

func (p *PlainVF) AddPlain(a *PlainVF) {
	p.Vx.Add(a.Vx)
	p.Vy.Add(a.Vy)
	p.Vz.Add(a.Vz)
}

func (p *PlainVF) SubPlain(a *PlainVF) {
	p.Vx.Sub(a.Vx)
	p.Vy.Sub(a.Vy)
	p.Vz.Sub(a.Vz)
}

// AddVField adds a vector field, completing the explicit Euler update
// rhs = dt*rhs + V.
func (p *PlainVF) AddVField(a *VField) {
	p.Vx.Add(a.Vx.F)
	p.Vy.Add(a.Vy.F)
	p.Vz.Add(a.Vz.F)
}

func (p *PlainVF) Scale(a float64) {
	p.Vx.Scale(a)
	p.Vy.Scale(a)
	p.Vz.Scale(a)
}

func (p *PlainVF) Set(a float64) {
	p.Vx.Fill(a)
	p.Vy.Fill(a)
	p.Vz.Fill(a)
}
