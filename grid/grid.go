// Package grid describes one rank's rectangular sub-domain: the core
// and padded index boxes, the computational-coordinate spacings, and
// the metric terms of the coordinate stretching maps.
package grid

import (
	"fmt"
	"math"

	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/params"
	"github.com/roshansamuel/gpu-saras/utils"
)

type Grid struct {
	Params *params.Parameters
	Rank   *parallel.Rank

	Planar bool

	NCore [3]int // core cells of this sub-domain
	Pads  [3]int // pad width on each side, per axis
	NFull [3]int // NCore + 2*Pads

	Core utils.Box
	Full utils.Box

	// Uniform spacings of the computational coordinates xi, eta, zeta.
	DXi, DEt, DZt float64

	// Metric terms of the stretching maps, evaluated at the local
	// cell centres over the full box. XiX is the first derivative of
	// the map, Xix2 its square, Xixx the second derivative; likewise
	// for eta(y) and zeta(z).
	XiX, Xix2, Xixx []float64
	EtY, Ety2, Etyy []float64
	ZtZ, Ztz2, Ztzz []float64

	// Physical cell-centre coordinates over the full box.
	XC, YC, ZC []float64
}

func NewGrid(p *params.Parameters, rank *parallel.Rank) (*Grid, error) {
	g := &Grid{
		Params: p,
		Rank:   rank,
		Planar: p.Planar,
	}

	dims := rank.Comm.Dims
	g.NCore = [3]int{p.Nx / dims[0], p.Ny / dims[1], p.Nz / dims[2]}
	g.Pads = [3]int{1, 1, 1}
	if g.Planar {
		g.Pads[1] = 0
	}
	for ax := 0; ax < 3; ax++ {
		if g.NCore[ax] < 1 {
			return nil, fmt.Errorf("grid: empty sub-domain along axis %d", ax)
		}
		g.NFull[ax] = g.NCore[ax] + 2*g.Pads[ax]
		g.Core.Lo[ax] = g.Pads[ax]
		g.Core.Hi[ax] = g.Pads[ax] + g.NCore[ax] - 1
		g.Full.Lo[ax] = 0
		g.Full.Hi[ax] = g.NFull[ax] - 1
	}

	g.DXi = 1.0 / float64(p.Nx)
	g.DEt = 1.0 / float64(p.Ny)
	g.DZt = 1.0 / float64(p.Nz)

	g.XC, g.XiX, g.Xix2, g.Xixx = g.setMetrics(0, p.LX, p.BetaX)
	g.YC, g.EtY, g.Ety2, g.Etyy = g.setMetrics(1, p.LY, p.BetaY)
	g.ZC, g.ZtZ, g.Ztz2, g.Ztzz = g.setMetrics(2, p.LZ, p.BetaZ)

	return g, nil
}

// setMetrics evaluates the coordinate map and its metric terms at the
// cell centres of the full box along one axis. With beta = 0 the map
// is linear: x = L*xi, so the first metric is 1/L and the second
// derivative vanishes. With beta > 0 the map is the tangent-hyperbolic
// clustering
//
//	x(xi) = L/2 * (1 - tanh(beta*(1-2*xi))/tanh(beta))
//
// which concentrates points near both walls; the metric terms are its
// analytic derivatives, valid for pad points lying outside [0,1] as
// well.
func (g *Grid) setMetrics(axis int, length, beta float64) (xc, m1, m2, mm []float64) {
	var (
		n    = g.NFull[axis]
		dxi  = []float64{g.DXi, g.DEt, g.DZt}[axis]
		gOff = g.Rank.Coords[axis] * g.NCore[axis]
	)
	xc = make([]float64, n)
	m1 = make([]float64, n)
	m2 = make([]float64, n)
	mm = make([]float64, n)

	for i := 0; i < n; i++ {
		xi := (float64(gOff+i-g.Pads[axis]) + 0.5) * dxi
		if beta == 0 {
			xc[i] = length * xi
			m1[i] = 1.0 / length
			m2[i] = m1[i] * m1[i]
			mm[i] = 0
			continue
		}
		var (
			u    = beta * (1 - 2*xi)
			sech = 1.0 / math.Cosh(u)
			xXi  = length * beta * sech * sech / math.Tanh(beta)
			xXi2 = 4 * length * beta * beta * sech * sech * math.Tanh(u) / math.Tanh(beta)
		)
		xc[i] = 0.5 * length * (1 - math.Tanh(u)/math.Tanh(beta))
		m1[i] = 1.0 / xXi
		m2[i] = m1[i] * m1[i]
		mm[i] = -xXi2 / (xXi * xXi * xXi)
	}
	return
}

// CellVolume returns the physical volume of the cell at full-box index
// (i, j, k), from the Jacobians of the stretching maps.
func (g *Grid) CellVolume(i, j, k int) float64 {
	v := g.DXi / g.XiX[i] * g.DZt / g.ZtZ[k]
	if !g.Planar {
		v *= g.DEt / g.EtY[j]
	}
	return v
}

// PhysicalWall reports whether the given face of this sub-domain lies
// on the domain boundary rather than on an inter-rank interface.
func (g *Grid) PhysicalWall(face int) bool {
	return g.Rank.Neighbors[face] < 0
}
